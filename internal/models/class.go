package models

import "time"

// ClassStatus represents the approval lifecycle of a submitted class.
type ClassStatus string

const (
	ClassStatusPending  ClassStatus = "pending"
	ClassStatusApproved ClassStatus = "approved"
	ClassStatusDenied   ClassStatus = "denied"
)

// ValidClassStatus reports whether the value is a recognised status.
func ValidClassStatus(s ClassStatus) bool {
	switch s {
	case ClassStatusPending, ClassStatusApproved, ClassStatusDenied:
		return true
	}
	return false
}

// Class represents an offered class with its seat counters. The sum of
// Enrolled and AvailableSeats is conserved across enrollment transitions;
// AvailableSeats never goes below zero.
type Class struct {
	ID              string      `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	InstructorEmail string      `db:"instructor_email" json:"instructor_email"`
	Price           int64       `db:"price" json:"price"`
	Status          ClassStatus `db:"status" json:"status"`
	Enrolled        int         `db:"enrolled" json:"enrolled"`
	AvailableSeats  int         `db:"available_seats" json:"available_seats"`
	Feedback        *string     `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Status          ClassStatus
	InstructorEmail string
	Search          string
	Page            int
	PageSize        int
}
