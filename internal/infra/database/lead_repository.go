package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kgarten/customer-pool/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// listJoin is the shared join for list/detail/export: the lead row, its
// current follow-up (the status record) and the assigned teacher.
func listJoin(schema string) string {
	return fmt.Sprintf(`
		FROM %s.leads l
		LEFT JOIN %s.followups cf ON cf.lead_id = l.id AND cf.is_current AND cf.deleted_at IS NULL
		LEFT JOIN %s.teachers t ON t.id = l.assigned_teacher_id AND t.deleted_at IS NULL
		WHERE l.deleted_at IS NULL`, schema, schema, schema)
}

const leadColumns = `
	SELECT l.id, l.name, l.phone,
	       COALESCE(l.source_channel, 'OTHER'),
	       COALESCE(cf.result, 'NEW'),
	       COALESCE(l.remark, ''),
	       l.assigned_teacher_id, t.name, cf.updated_at, l.created_at, l.updated_at`

// List returns one page of leads plus the total under the same predicate.
// Ordered by id descending so pagination stays stable while follow-ups
// mutate timestamps underneath it.
func (r *LeadRepository) List(ctx context.Context, schema string, f Filter, restricted bool, staffID int64, page, pageSize int) ([]*entity.Lead, int, error) {
	where, args := buildWhere(schema, f, restricted, staffID)

	var total int
	countQuery := `SELECT COUNT(DISTINCT l.id)` + listJoin(schema) + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	dataQuery := fmt.Sprintf("%s%s%s ORDER BY l.id DESC LIMIT $%d OFFSET $%d",
		leadColumns, listJoin(schema), where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.DB.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListAll returns every lead under the predicate, for the CSV export.
func (r *LeadRepository) ListAll(ctx context.Context, schema string, f Filter, restricted bool, staffID int64) ([]*entity.Lead, error) {
	where, args := buildWhere(schema, f, restricted, staffID)
	query := leadColumns + listJoin(schema) + where + " ORDER BY l.id DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("export leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *LeadRepository) FindByID(ctx context.Context, schema string, id int64) (*entity.Lead, error) {
	query := fmt.Sprintf("%s%s AND l.id = $1", leadColumns, listJoin(schema))
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %d: %w", id, err)
	}
	return lead, nil
}

// Create inserts the lead and fills in the generated id. When an idempotency
// key is supplied, a replay returns the previously created row instead of a
// duplicate; the unique index on idempotency_key is the backstop for races.
func (r *LeadRepository) Create(ctx context.Context, schema string, l *entity.Lead, idemKey *string) error {
	if idemKey != nil {
		if found, err := r.findByIdempotencyKey(ctx, schema, *idemKey, l); err != nil || found {
			return err
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.leads (name, phone, source_channel, remark, assigned_teacher_id, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`, schema)

	err := r.DB.QueryRowContext(ctx, query,
		l.Name, l.Phone, l.Source, l.Remark, l.AssignedTeacherID, idemKey,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if isUniqueViolation(err, "leads_idempotency_key_key") && idemKey != nil {
		_, err = r.findByIdempotencyKey(ctx, schema, *idemKey, l)
		return err
	}
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) findByIdempotencyKey(ctx context.Context, schema, key string, l *entity.Lead) (bool, error) {
	query := fmt.Sprintf(`
		SELECT id, name, phone, source_channel, remark, created_at, updated_at
		FROM %s.leads WHERE idempotency_key = $1`, schema)
	err := r.DB.QueryRowContext(ctx, query, key).Scan(
		&l.ID, &l.Name, &l.Phone, &l.Source, &l.Remark, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return true, nil
}

// UpdateIdentity writes the directly-owned columns. Nil fields keep their
// stored value. Status and owner changes go through the follow-up ledger,
// never through here.
func (r *LeadRepository) UpdateIdentity(ctx context.Context, schema string, id int64, name, phone, remark *string) error {
	query := fmt.Sprintf(`
		UPDATE %s.leads
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    remark = COALESCE($4, remark),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, schema)

	res, err := r.DB.ExecContext(ctx, query, id, name, phone, remark)
	if err != nil {
		return fmt.Errorf("update lead %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// SoftDelete marks the lead and its follow-ups deleted in one transaction.
// Deleting an already-deleted or unknown id is not an error: the caller's
// retries cannot tell "already gone" from "never existed".
func (r *LeadRepository) SoftDelete(ctx context.Context, schema string, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("soft delete lead %d: %w", id, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s.leads SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, schema), id)
	if err != nil {
		return fmt.Errorf("soft delete lead %d: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s.followups SET deleted_at = NOW() WHERE lead_id = $1 AND deleted_at IS NULL`, schema), id)
	if err != nil {
		return fmt.Errorf("soft delete followups of lead %d: %w", id, err)
	}
	return tx.Commit()
}

func (r *LeadRepository) ListChildren(ctx context.Context, schema string, leadID int64) ([]*entity.Child, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.gender, c.birth_date
		FROM %s.children c
		WHERE c.lead_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.id`, schema)

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list children of lead %d: %w", leadID, err)
	}
	defer rows.Close()

	var children []*entity.Child
	for rows.Next() {
		c := &entity.Child{}
		var birth sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Gender, &birth); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		if birth.Valid {
			c.BirthDate = &birth.Time
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

// Stats runs the four scoped counts. convertedSince narrows the conversion
// count to the current calendar month; nil means cumulative-to-date.
func (r *LeadRepository) Stats(ctx context.Context, schema string, restricted bool, staffID int64, monthStart time.Time, convertedSince *time.Time) (*entity.PoolStats, error) {
	scope := ScopePredicate(restricted, staffID, 0)
	base := fmt.Sprintf(`SELECT COUNT(*) FROM %s.leads l WHERE l.deleted_at IS NULL`, schema) + scope.SQL

	stats := &entity.PoolStats{}

	if err := r.DB.QueryRowContext(ctx, base, scope.Args...).Scan(&stats.TotalCustomers); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}

	newQuery := fmt.Sprintf("%s AND l.created_at >= $%d", base, len(scope.Args)+1)
	newArgs := append(append([]interface{}{}, scope.Args...), monthStart)
	if err := r.DB.QueryRowContext(ctx, newQuery, newArgs...).Scan(&stats.NewCustomersThisMonth); err != nil {
		return nil, fmt.Errorf("stats new this month: %w", err)
	}

	// "Unassigned" deliberately means "no follow-up rows in the ledger at
	// all", coupling ledger presence with assignment state.
	unassignedQuery := base + fmt.Sprintf(
		" AND NOT EXISTS (SELECT 1 FROM %s.followups pf WHERE pf.lead_id = l.id AND pf.deleted_at IS NULL)", schema)
	if err := r.DB.QueryRowContext(ctx, unassignedQuery, scope.Args...).Scan(&stats.UnassignedCustomers); err != nil {
		return nil, fmt.Errorf("stats unassigned: %w", err)
	}

	convertedQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s.leads l
		JOIN %s.followups cf ON cf.lead_id = l.id AND cf.is_current AND cf.deleted_at IS NULL
		WHERE l.deleted_at IS NULL AND cf.result = $1`, schema, schema)
	convertedArgs := []interface{}{entity.StatusClosedWon}
	if restricted {
		convertedQuery += fmt.Sprintf(" AND l.assigned_teacher_id = $%d", len(convertedArgs)+1)
		convertedArgs = append(convertedArgs, staffID)
	}
	if convertedSince != nil {
		convertedQuery += fmt.Sprintf(" AND cf.updated_at >= $%d", len(convertedArgs)+1)
		convertedArgs = append(convertedArgs, *convertedSince)
	}
	if err := r.DB.QueryRowContext(ctx, convertedQuery, convertedArgs...).Scan(&stats.ConvertedCustomersThisMonth); err != nil {
		return nil, fmt.Errorf("stats converted: %w", err)
	}

	return stats, nil
}

func buildWhere(schema string, f Filter, restricted bool, staffID int64) (string, []interface{}) {
	var args []interface{}
	where := ""

	sp := ScopePredicate(restricted, staffID, len(args))
	where += sp.SQL
	args = append(args, sp.Args...)

	fp := BuildFilter(schema, f, len(args))
	where += fp.SQL
	args = append(args, fp.Args...)

	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	l := &entity.Lead{}
	var teacherID sql.NullInt64
	var teacherName sql.NullString
	var lastFollowUp sql.NullTime

	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Source, &l.Status, &l.Remark,
		&teacherID, &teacherName, &lastFollowUp, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if teacherID.Valid {
		l.AssignedTeacherID = &teacherID.Int64
	}
	if teacherName.Valid {
		l.TeacherName = &teacherName.String
	}
	if lastFollowUp.Valid {
		l.LastFollowUpAt = &lastFollowUp.Time
	}
	return l, nil
}

func scanLeads(rows *sql.Rows) ([]*entity.Lead, error) {
	var leads []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505" && string(pqErr.Constraint) == constraint
}
