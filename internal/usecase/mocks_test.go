package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/infra/queue"
)

// MockLeadStore
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) List(ctx context.Context, schema string, f database.Filter, restricted bool, staffID int64, page, pageSize int) ([]*entity.Lead, int, error) {
	args := m.Called(ctx, schema, f, restricted, staffID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Lead), args.Int(1), args.Error(2)
}

func (m *MockLeadStore) ListAll(ctx context.Context, schema string, f database.Filter, restricted bool, staffID int64) ([]*entity.Lead, error) {
	args := m.Called(ctx, schema, f, restricted, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadStore) FindByID(ctx context.Context, schema string, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, schema, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadStore) Create(ctx context.Context, schema string, l *entity.Lead, idemKey *string) error {
	args := m.Called(ctx, schema, l, idemKey)
	return args.Error(0)
}

func (m *MockLeadStore) UpdateIdentity(ctx context.Context, schema string, id int64, name, phone, remark *string) error {
	args := m.Called(ctx, schema, id, name, phone, remark)
	return args.Error(0)
}

func (m *MockLeadStore) SoftDelete(ctx context.Context, schema string, id int64) error {
	args := m.Called(ctx, schema, id)
	return args.Error(0)
}

func (m *MockLeadStore) ListChildren(ctx context.Context, schema string, leadID int64) ([]*entity.Child, error) {
	args := m.Called(ctx, schema, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Child), args.Error(1)
}

func (m *MockLeadStore) Stats(ctx context.Context, schema string, restricted bool, staffID int64, monthStart time.Time, convertedSince *time.Time) (*entity.PoolStats, error) {
	args := m.Called(ctx, schema, restricted, staffID, monthStart, convertedSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PoolStats), args.Error(1)
}

// MockFollowUpStore
type MockFollowUpStore struct {
	mock.Mock
}

func (m *MockFollowUpStore) Append(ctx context.Context, schema string, fu *entity.FollowUp, idemKey *string) error {
	args := m.Called(ctx, schema, fu, idemKey)
	return args.Error(0)
}

func (m *MockFollowUpStore) ListByLead(ctx context.Context, schema string, leadID int64, limit int) ([]*entity.FollowUp, error) {
	args := m.Called(ctx, schema, leadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.FollowUp), args.Error(1)
}

func (m *MockFollowUpStore) RecordStateChange(ctx context.Context, schema string, fu *entity.FollowUp, newOwner *int64) error {
	args := m.Called(ctx, schema, fu, newOwner)
	return args.Error(0)
}

// MockTeacherStore
type MockTeacherStore struct {
	mock.Mock
}

func (m *MockTeacherStore) FindByID(ctx context.Context, schema string, id int64) (*entity.Teacher, error) {
	args := m.Called(ctx, schema, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Teacher), args.Error(1)
}

// MockAssignmentStore
type MockAssignmentStore struct {
	mock.Mock
}

func (m *MockAssignmentStore) AssignOwner(ctx context.Context, schema string, leadID, teacherID int64, content string) error {
	args := m.Called(ctx, schema, leadID, teacherID, content)
	return args.Error(0)
}

func (m *MockAssignmentStore) AssignOwnerBatch(ctx context.Context, schema string, leadIDs []int64, teacherID int64, content string) error {
	args := m.Called(ctx, schema, leadIDs, teacherID, content)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishAssigned(ctx context.Context, payload queue.AssignedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
