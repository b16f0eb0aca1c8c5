package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/usecase"
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

func newTestHandler(leads *MockLeadStore, followUps *MockFollowUpStore) *CustomerPoolHandler {
	return NewCustomerPoolHandler(
		usecase.NewListLeadsUseCase(leads),
		usecase.NewLeadDetailUseCase(leads, followUps),
		usecase.NewCreateLeadUseCase(leads, usecase.IngestLenient),
		usecase.NewUpdateLeadUseCase(leads, followUps, nil),
		usecase.NewDeleteLeadUseCase(leads),
		nil,
		usecase.NewFollowUpUseCase(leads, followUps),
		usecase.NewStatsUseCase(leads, usecase.PolicyMonthly),
	)
}

func newTestRouter(leads *MockLeadStore, followUps *MockFollowUpStore) http.Handler {
	r := chi.NewRouter()
	r.Route("/customer-pool", newTestHandler(leads, followUps).Routes)
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleCreate_ReturnsEnvelope(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("Create", mock.Anything, mock.Anything, mock.Anything, (*string)(nil)).Return(nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodPost, "/customer-pool/", strings.NewReader(`{"name":"Ana","phone":"13900000001"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Ana", data["name"])
}

func TestHandleCreate_InvalidJSONIsValidationError(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodPost, "/customer-pool/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
}

func TestHandleDetail_UnknownLeadIs404(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("FindByID", mock.Anything, mock.Anything, int64(999)).Return(nil, entity.ErrNotFound)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestHandleDetail_NonNumericIDIs400(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelete_MissingLeadStillSucceeds(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("FindByID", mock.Anything, mock.Anything, int64(404)).Return(nil, entity.ErrNotFound)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodDelete, "/customer-pool/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestHandleList_WiresQueryFilters(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("List", mock.Anything, mock.Anything,
		database.Filter{Source: "WEBSITE", Keyword: "piano", TeacherID: 7},
		mock.Anything, mock.Anything, 2, 20,
	).Return([]*entity.Lead{}, 0, nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/?source=WEBSITE&keyword=piano&teacherId=7&page=2&pageSize=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	leads.AssertExpectations(t)
}

func TestHandleList_TeacherParamFilters(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("List", mock.Anything, mock.Anything,
		database.Filter{TeacherID: 7},
		mock.Anything, mock.Anything, 1, 10,
	).Return([]*entity.Lead{}, 0, nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/?teacher=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	leads.AssertExpectations(t)
}

func TestHandleList_TeacherIdAliasStillFilters(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("List", mock.Anything, mock.Anything,
		database.Filter{TeacherID: 9},
		mock.Anything, mock.Anything, 1, 10,
	).Return([]*entity.Lead{}, 0, nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/?teacherId=9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	leads.AssertExpectations(t)
}

func TestHandleExport_WritesCSVAttachment(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("ListAll", mock.Anything, mock.Anything, database.Filter{}, mock.Anything, mock.Anything).
		Return([]*entity.Lead{{ID: 1, Name: "Ana", Phone: "13900000001", Source: "WEBSITE", Status: "NEW"}}, nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "customers.csv")
	assert.Contains(t, rec.Body.String(), "Ana")
}

type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *brokenWriter) WriteHeader(int) {}

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestHandleExport_LogsWhenClientConnectionBreaks(t *testing.T) {
	buf := captureLog(t)

	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("ListAll", mock.Anything, mock.Anything, database.Filter{}, mock.Anything, mock.Anything).
		Return([]*entity.Lead{{ID: 1, Name: "Ana"}}, nil)

	h := newTestHandler(leads, followUps)

	req := httptest.NewRequest(http.MethodGet, "/customer-pool/export", nil)
	h.HandleExport(&brokenWriter{}, req)

	assert.Contains(t, buf.String(), "csv export aborted")
	assert.Contains(t, buf.String(), "client went away")
}

func TestHandleAddFollowUp_PassesIdempotencyKeyHeader(t *testing.T) {
	key := "3e0170e7-9f6b-4b35-8f34-0f4b5d9dbb71"
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)
	leads.On("FindByID", mock.Anything, mock.Anything, int64(10)).
		Return(&entity.Lead{ID: 10, Status: entity.StatusNew}, nil)
	followUps.On("Append", mock.Anything, mock.Anything, mock.Anything, &key).Return(nil)

	router := newTestRouter(leads, followUps)

	req := httptest.NewRequest(http.MethodPost, "/customer-pool/10/follow-up", strings.NewReader(`{"content":"called"}`))
	req.Header.Set("Idempotency-Key", key)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	followUps.AssertExpectations(t)
}
