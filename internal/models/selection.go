package models

import "time"

// Selection is a user's pending, unpaid intent to enroll in a class. It is
// removed either by the owner or atomically during payment reconciliation.
type Selection struct {
	ID        string    `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user_email"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SelectionDetail enriches Selection with class info for listings.
type SelectionDetail struct {
	Selection
	ClassName  string `db:"class_name" json:"class_name"`
	ClassPrice int64  `db:"class_price" json:"class_price"`
}
