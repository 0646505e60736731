package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNoRowsAffected signals that an update or delete matched no rows.
var ErrNoRowsAffected = errors.New("no rows affected")

// IsUniqueViolation reports whether the error is a postgres unique constraint
// violation, used to map duplicate inserts onto domain conflicts.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
