package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kgarten/customer-pool/internal/entity"
)

type TeacherRepository struct {
	DB *sql.DB
}

func NewTeacherRepository(db *sql.DB) *TeacherRepository {
	return &TeacherRepository{DB: db}
}

// FindByID returns the staff member, or entity.ErrNotFound when the id is
// unknown or soft-deleted. Scoping must never reference a deleted teacher.
func (r *TeacherRepository) FindByID(ctx context.Context, schema string, id int64) (*entity.Teacher, error) {
	query := fmt.Sprintf(`
		SELECT id, name, COALESCE(email, '')
		FROM %s.teachers
		WHERE id = $1 AND deleted_at IS NULL`, schema)

	t := &entity.Teacher{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Email)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find teacher %d: %w", id, err)
	}
	return t, nil
}
