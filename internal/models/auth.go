package models

import "github.com/golang-jwt/jwt/v5"

// TokenRequest carries the identity claims a client asks to have signed.
// Identity itself is established by the platform's external login provider;
// this service only issues the bearer token for the API.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
