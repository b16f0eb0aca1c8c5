package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgarten/customer-pool/internal/entity"
)

// The followups table carries a partial unique index:
//
//	CREATE UNIQUE INDEX uq_followups_current
//	ON followups (lead_id) WHERE is_current AND deleted_at IS NULL
//
// so at most one non-deleted row per lead is the "current state" record.
// Concurrent writers contend on the index instead of racing a read-then-write.
type FollowUpRepository struct {
	DB *sql.DB
}

func NewFollowUpRepository(db *sql.DB) *FollowUpRepository {
	return &FollowUpRepository{DB: db}
}

// Append inserts one ledger row and fills in the generated id. The row
// becomes current only when the lead has no current record yet; otherwise it
// is plain history. An idempotency-key replay returns the existing row.
func (r *FollowUpRepository) Append(ctx context.Context, schema string, fu *entity.FollowUp, idemKey *string) error {
	if idemKey != nil {
		if found, err := r.findByIdempotencyKey(ctx, schema, *idemKey, fu); err != nil || found {
			return err
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.followups (lead_id, created_by, followup_type, result, content, followup_date, is_current, idempotency_key, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6,
		       NOT EXISTS (SELECT 1 FROM %s.followups c WHERE c.lead_id = $1 AND c.is_current AND c.deleted_at IS NULL),
		       $7, NOW(), NOW()
		RETURNING id, is_current, created_at, updated_at`, schema, schema)

	err := r.DB.QueryRowContext(ctx, query,
		fu.LeadID, fu.CreatedBy, fu.Type, fu.Result, fu.Content, fu.FollowUpDate, idemKey,
	).Scan(&fu.ID, &fu.IsCurrent, &fu.CreatedAt, &fu.UpdatedAt)

	// Two first appends can both see an empty ledger; the loser lands as a
	// plain history row.
	if isUniqueViolation(err, "uq_followups_current") {
		retry := fmt.Sprintf(`
			INSERT INTO %s.followups (lead_id, created_by, followup_type, result, content, followup_date, is_current, idempotency_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, NOW(), NOW())
			RETURNING id, is_current, created_at, updated_at`, schema)
		err = r.DB.QueryRowContext(ctx, retry,
			fu.LeadID, fu.CreatedBy, fu.Type, fu.Result, fu.Content, fu.FollowUpDate, idemKey,
		).Scan(&fu.ID, &fu.IsCurrent, &fu.CreatedAt, &fu.UpdatedAt)
	}
	if isUniqueViolation(err, "followups_idempotency_key_key") && idemKey != nil {
		_, err = r.findByIdempotencyKey(ctx, schema, *idemKey, fu)
		return err
	}
	if err != nil {
		return fmt.Errorf("append followup: %w", err)
	}
	return nil
}

func (r *FollowUpRepository) findByIdempotencyKey(ctx context.Context, schema, key string, fu *entity.FollowUp) (bool, error) {
	query := fmt.Sprintf(`
		SELECT id, lead_id, created_by, followup_type, COALESCE(result, 'NEW'), content, followup_date, is_current, created_at, updated_at
		FROM %s.followups WHERE idempotency_key = $1`, schema)
	err := r.DB.QueryRowContext(ctx, query, key).Scan(
		&fu.ID, &fu.LeadID, &fu.CreatedBy, &fu.Type, &fu.Result, &fu.Content,
		&fu.FollowUpDate, &fu.IsCurrent, &fu.CreatedAt, &fu.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return true, nil
}

// ListByLead returns the non-deleted ledger for a lead, newest first,
// bounded by limit.
func (r *FollowUpRepository) ListByLead(ctx context.Context, schema string, leadID int64, limit int) ([]*entity.FollowUp, error) {
	query := fmt.Sprintf(`
		SELECT pf.id, pf.lead_id, pf.created_by, COALESCE(t.name, ''), pf.followup_type,
		       COALESCE(pf.result, 'NEW'), pf.content, pf.followup_date, pf.is_current, pf.created_at, pf.updated_at
		FROM %s.followups pf
		LEFT JOIN %s.teachers t ON t.id = pf.created_by
		WHERE pf.lead_id = $1 AND pf.deleted_at IS NULL
		ORDER BY pf.created_at DESC, pf.id DESC
		LIMIT $2`, schema, schema)

	rows, err := r.DB.QueryContext(ctx, query, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list followups of lead %d: %w", leadID, err)
	}
	defer rows.Close()

	var followUps []*entity.FollowUp
	for rows.Next() {
		fu := &entity.FollowUp{}
		if err := rows.Scan(&fu.ID, &fu.LeadID, &fu.CreatedBy, &fu.CreatorName, &fu.Type,
			&fu.Result, &fu.Content, &fu.FollowUpDate, &fu.IsCurrent, &fu.CreatedAt, &fu.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan followup: %w", err)
		}
		followUps = append(followUps, fu)
	}
	return followUps, rows.Err()
}

// RecordStateChange demotes the current record to history and inserts a new
// current row, so status history stays reconstructable. When the change also
// moves ownership, the denormalized owner column is written in the same
// transaction. A concurrent state change shows up as ErrCurrentConflict.
func (r *FollowUpRepository) RecordStateChange(ctx context.Context, schema string, fu *entity.FollowUp, newOwner *int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record state change: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s.followups SET is_current = FALSE, updated_at = NOW()
		 WHERE lead_id = $1 AND is_current AND deleted_at IS NULL`, schema), fu.LeadID)
	if err != nil {
		return fmt.Errorf("demote current followup: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s.followups (lead_id, created_by, followup_type, result, content, followup_date, is_current, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		RETURNING id, created_at, updated_at`, schema)
	err = tx.QueryRowContext(ctx, insert,
		fu.LeadID, fu.CreatedBy, fu.Type, fu.Result, fu.Content, fu.FollowUpDate,
	).Scan(&fu.ID, &fu.CreatedAt, &fu.UpdatedAt)
	if isUniqueViolation(err, "uq_followups_current") {
		return entity.ErrCurrentConflict
	}
	if err != nil {
		return fmt.Errorf("insert current followup: %w", err)
	}
	fu.IsCurrent = true

	if newOwner != nil {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %s.leads SET assigned_teacher_id = $2, updated_at = NOW() WHERE id = $1`, schema),
			fu.LeadID, *newOwner)
		if err != nil {
			return fmt.Errorf("update lead owner: %w", err)
		}
	}

	return tx.Commit()
}
