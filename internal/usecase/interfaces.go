package usecase

import (
	"context"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/infra/queue"
)

type LeadStore interface {
	List(ctx context.Context, schema string, f database.Filter, restricted bool, staffID int64, page, pageSize int) ([]*entity.Lead, int, error)
	ListAll(ctx context.Context, schema string, f database.Filter, restricted bool, staffID int64) ([]*entity.Lead, error)
	FindByID(ctx context.Context, schema string, id int64) (*entity.Lead, error)
	Create(ctx context.Context, schema string, l *entity.Lead, idemKey *string) error
	UpdateIdentity(ctx context.Context, schema string, id int64, name, phone, remark *string) error
	SoftDelete(ctx context.Context, schema string, id int64) error
	ListChildren(ctx context.Context, schema string, leadID int64) ([]*entity.Child, error)
	Stats(ctx context.Context, schema string, restricted bool, staffID int64, monthStart time.Time, convertedSince *time.Time) (*entity.PoolStats, error)
}

type FollowUpStore interface {
	Append(ctx context.Context, schema string, fu *entity.FollowUp, idemKey *string) error
	ListByLead(ctx context.Context, schema string, leadID int64, limit int) ([]*entity.FollowUp, error)
	RecordStateChange(ctx context.Context, schema string, fu *entity.FollowUp, newOwner *int64) error
}

type TeacherStore interface {
	FindByID(ctx context.Context, schema string, id int64) (*entity.Teacher, error)
}

type AssignmentStore interface {
	AssignOwner(ctx context.Context, schema string, leadID, teacherID int64, content string) error
	AssignOwnerBatch(ctx context.Context, schema string, leadIDs []int64, teacherID int64, content string) error
}

// AssignmentNotifier publishes lead-assigned events for the notification
// worker. Nil-able: callers skip it when messaging is not configured.
type AssignmentNotifier interface {
	PublishAssigned(ctx context.Context, payload queue.AssignedPayload) error
}
