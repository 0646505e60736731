package models

import "time"

// Payment is the append-only record of a completed charge. Rows are inserted
// exactly once per reconciliation and never mutated or deleted.
type Payment struct {
	ID             string    `db:"id" json:"id"`
	UserEmail      string    `db:"user_email" json:"user_email"`
	ClassID        string    `db:"class_id" json:"class_id"`
	SelectionID    string    `db:"selection_id" json:"selection_id"`
	Amount         int64     `db:"amount" json:"amount"`
	Currency       string    `db:"currency" json:"currency"`
	IntentID       string    `db:"intent_id" json:"intent_id"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ReconcileResult describes the outcome of the three reconciliation
// mutations so the client can confirm full enrollment.
type ReconcileResult struct {
	Payment          Payment `json:"payment"`
	SelectionRemoved bool    `json:"selection_removed"`
	Class            Class   `json:"class"`
}
