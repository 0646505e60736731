package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rhythmic-hub/enroll-api/internal/models"
)

// SelectionRepository handles persistence of enrollment intents.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// ListByEmail returns the user's pending selections with class info.
func (r *SelectionRepository) ListByEmail(ctx context.Context, email string) ([]models.SelectionDetail, error) {
	const query = `SELECT s.id, s.user_email, s.class_id, s.created_at,
        c.name AS class_name, c.price AS class_price
        FROM selections s
        LEFT JOIN classes c ON c.id = s.class_id
        WHERE s.user_email = $1
        ORDER BY s.created_at DESC`
	var selections []models.SelectionDetail
	if err := r.db.SelectContext(ctx, &selections, query, email); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return selections, nil
}

// FindByID returns a selection by its ID.
func (r *SelectionRepository) FindByID(ctx context.Context, id string) (*models.Selection, error) {
	const query = `SELECT id, user_email, class_id, created_at FROM selections WHERE id = $1`
	var selection models.Selection
	if err := r.db.GetContext(ctx, &selection, query, id); err != nil {
		return nil, err
	}
	return &selection, nil
}

// Create persists a new selection record.
func (r *SelectionRepository) Create(ctx context.Context, selection *models.Selection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO selections (id, user_email, class_id, created_at)
        VALUES (:id, :user_email, :class_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("create selection: %w", err)
	}
	return nil
}

// DeleteByID removes a selection and reports whether a row existed. Deleting
// an already-deleted id is a no-op, which is what makes reconciliation
// retries safe.
func (r *SelectionRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM selections WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete selection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete selection rows: %w", err)
	}
	return affected > 0, nil
}
