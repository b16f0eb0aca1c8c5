package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgarten/customer-pool/internal/entity"
)

// AssignmentRepository owns the transactional write path for handing a lead
// to a teacher: upsert of the current follow-up plus the denormalized owner
// column, always together.
type AssignmentRepository struct {
	DB *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// AssignOwner assigns a single lead inside its own transaction.
func (r *AssignmentRepository) AssignOwner(ctx context.Context, schema string, leadID, teacherID int64, content string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("assign lead %d: %w", leadID, err)
	}
	defer tx.Rollback()

	if err := assignInTx(ctx, tx, schema, leadID, teacherID, content); err != nil {
		return err
	}
	return tx.Commit()
}

// AssignOwnerBatch assigns every lead in one transaction. Any failure,
// including an unknown lead id, rolls the whole batch back.
func (r *AssignmentRepository) AssignOwnerBatch(ctx context.Context, schema string, leadIDs []int64, teacherID int64, content string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch assign: %w", err)
	}
	defer tx.Rollback()

	for _, leadID := range leadIDs {
		if err := assignInTx(ctx, tx, schema, leadID, teacherID, content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func assignInTx(ctx context.Context, tx *sql.Tx, schema string, leadID, teacherID int64, content string) error {
	var id int64
	err := tx.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT id FROM %s.leads WHERE id = $1 AND deleted_at IS NULL`, schema), leadID).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("lead %d: %w", leadID, entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check lead %d: %w", leadID, err)
	}

	// Reassignment overwrites the current-owner record in place; only the
	// first assignment creates a row. The partial unique index serializes
	// concurrent assigns on the same lead.
	upsert := fmt.Sprintf(`
		INSERT INTO %s.followups (lead_id, created_by, followup_type, result, content, followup_date, is_current, created_at, updated_at)
		VALUES ($1, $2, 'ASSIGN', 'NEW', $3, CURRENT_DATE, TRUE, NOW(), NOW())
		ON CONFLICT (lead_id) WHERE is_current AND deleted_at IS NULL
		DO UPDATE SET created_by = EXCLUDED.created_by,
		              content = EXCLUDED.content,
		              updated_at = NOW()`, schema)
	if _, err := tx.ExecContext(ctx, upsert, leadID, teacherID, content); err != nil {
		return fmt.Errorf("upsert followup for lead %d: %w", leadID, err)
	}

	// Owner column moves in lockstep with the ledger.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s.leads SET assigned_teacher_id = $2, updated_at = NOW() WHERE id = $1`, schema),
		leadID, teacherID); err != nil {
		return fmt.Errorf("update owner of lead %d: %w", leadID, err)
	}
	return nil
}
