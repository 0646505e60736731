package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rhythmic Hub Enrollment API",
        "description": "Class enrollment and payment reconciliation backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Bearer token issuance"},
        {"name": "Users", "description": "Registration and role directory"},
        {"name": "Classes", "description": "Class catalog"},
        {"name": "Selections", "description": "Enrollment intents"},
        {"name": "Payments", "description": "Checkout and reconciliation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/jwt": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue a bearer token for the given identity",
                "responses": {
                    "200": {"description": "Token issued"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users (admin)",
                "responses": {
                    "200": {"description": "Users"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Register a user",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "User already exists"}
                }
            }
        },
        "/users/role": {
            "get": {
                "tags": ["Users"],
                "summary": "Resolve the caller's role",
                "responses": {
                    "200": {"description": "Role payload or non-admin sentinel"}
                }
            }
        },
        "/users/roleUpdate": {
            "patch": {
                "tags": ["Users"],
                "summary": "Update a user's role (admin)",
                "responses": {
                    "200": {"description": "Updated user"},
                    "400": {"description": "Unrecognised role value"}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {
                    "200": {"description": "Classes"}
                }
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Submit a class for approval (instructor)",
                "responses": {
                    "201": {"description": "Created pending class"}
                }
            }
        },
        "/classes/{id}/status": {
            "patch": {
                "tags": ["Classes"],
                "summary": "Update class approval status (admin)",
                "responses": {
                    "200": {"description": "Updated class"}
                }
            }
        },
        "/classes/{id}/feedback": {
            "patch": {
                "tags": ["Classes"],
                "summary": "Attach feedback to a class",
                "responses": {
                    "200": {"description": "Updated class"}
                }
            }
        },
        "/selections": {
            "get": {
                "tags": ["Selections"],
                "summary": "List the caller's selections",
                "responses": {
                    "200": {"description": "Selections (empty on identity mismatch)"}
                }
            },
            "post": {
                "tags": ["Selections"],
                "summary": "Select a class for enrollment",
                "responses": {
                    "201": {"description": "Created selection"}
                }
            }
        },
        "/selections/{id}": {
            "delete": {
                "tags": ["Selections"],
                "summary": "Remove a selection",
                "responses": {
                    "200": {"description": "Removal acknowledgement"}
                }
            }
        },
        "/create-payment-intent": {
            "post": {
                "tags": ["Payments"],
                "summary": "Create a payment intent with the gateway",
                "responses": {
                    "200": {"description": "Client confirmation token"},
                    "502": {"description": "Gateway unavailable"}
                }
            }
        },
        "/payment": {
            "post": {
                "tags": ["Payments"],
                "summary": "Reconcile a completed payment into an enrollment",
                "responses": {
                    "201": {"description": "Composite reconciliation result"},
                    "409": {"description": "Duplicate payment, exhausted seats, or dangling class"}
                }
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List the caller's payments",
                "responses": {
                    "200": {"description": "Payments (empty on identity mismatch)"}
                }
            }
        },
        "/payments/export": {
            "get": {
                "tags": ["Payments"],
                "summary": "Export all payments as CSV (admin)",
                "responses": {
                    "200": {"description": "CSV statement"}
                }
            }
        },
        "/payments/{id}/receipt": {
            "get": {
                "tags": ["Payments"],
                "summary": "Download a PDF receipt",
                "responses": {
                    "200": {"description": "PDF receipt"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
