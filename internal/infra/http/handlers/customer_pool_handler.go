package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/infra/http/middleware"
	"github.com/kgarten/customer-pool/internal/usecase"
)

const idempotencyKeyHeader = "Idempotency-Key"

type CustomerPoolHandler struct {
	List      *usecase.ListLeadsUseCase
	Detail    *usecase.LeadDetailUseCase
	Create    *usecase.CreateLeadUseCase
	Update    *usecase.UpdateLeadUseCase
	Delete    *usecase.DeleteLeadUseCase
	Assign    *usecase.AssignLeadUseCase
	FollowUps *usecase.FollowUpUseCase
	Stats     *usecase.StatsUseCase
}

func NewCustomerPoolHandler(
	list *usecase.ListLeadsUseCase,
	detail *usecase.LeadDetailUseCase,
	create *usecase.CreateLeadUseCase,
	update *usecase.UpdateLeadUseCase,
	del *usecase.DeleteLeadUseCase,
	assign *usecase.AssignLeadUseCase,
	followUps *usecase.FollowUpUseCase,
	stats *usecase.StatsUseCase,
) *CustomerPoolHandler {
	return &CustomerPoolHandler{
		List:      list,
		Detail:    detail,
		Create:    create,
		Update:    update,
		Delete:    del,
		Assign:    assign,
		FollowUps: followUps,
		Stats:     stats,
	}
}

func (h *CustomerPoolHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/stats", h.HandleStats)
	r.Get("/export", h.HandleExport)
	r.Post("/assign", h.HandleAssign)
	r.Post("/batch-assign", h.HandleBatchAssign)
	r.Get("/{id}", h.HandleDetail)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/follow-up", h.HandleAddFollowUp)
	r.Get("/{id}/follow-ups", h.HandleFollowUpHistory)
}

func leadID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func filterFromQuery(r *http.Request) database.Filter {
	q := r.URL.Query()
	f := database.Filter{
		Source:  q.Get("source"),
		Status:  q.Get("status"),
		Keyword: q.Get("keyword"),
	}
	// "teacher" is the documented param name; "teacherId" is accepted too.
	teacher := q.Get("teacher")
	if teacher == "" {
		teacher = q.Get("teacherId")
	}
	if teacherID, err := strconv.ParseInt(teacher, 10, 64); err == nil && teacherID > 0 {
		f.TeacherID = teacherID
	}
	return f
}

func (h *CustomerPoolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	in := usecase.ListLeadsInput{Filter: filterFromQuery(r)}
	in.Page, _ = strconv.Atoi(q.Get("page"))
	in.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	out, err := h.List.Execute(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, out, "")
}

func (h *CustomerPoolHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := leadID(r)
	if err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "id must be a positive integer"})
		return
	}

	detail, err := h.Detail.Execute(ctx, middleware.SchemaFrom(ctx), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, detail, "")
}

func (h *CustomerPoolHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "invalid JSON body"})
		return
	}
	in.IdempotencyKey = r.Header.Get(idempotencyKeyHeader)

	lead, err := h.Create.Execute(ctx, middleware.SchemaFrom(ctx), in)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordLeadCreated(lead.Source)
	writeSuccess(w, http.StatusCreated, lead, "customer created")
}

func (h *CustomerPoolHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := leadID(r)
	if err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "id must be a positive integer"})
		return
	}

	var in usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "invalid JSON body"})
		return
	}

	lead, err := h.Update.Execute(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, lead, "customer updated")
}

func (h *CustomerPoolHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := leadID(r)
	if err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "id must be a positive integer"})
		return
	}

	if err := h.Delete.Execute(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "customer deleted")
}

func (h *CustomerPoolHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.AssignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "invalid JSON body"})
		return
	}

	out, err := h.Assign.AssignOne(ctx, middleware.SchemaFrom(ctx), in)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordAssignment("single", 1)
	writeSuccess(w, http.StatusOK, out, "customer assigned")
}

func (h *CustomerPoolHandler) HandleBatchAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in usecase.BatchAssignInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "invalid JSON body"})
		return
	}

	out, err := h.Assign.AssignBatch(ctx, middleware.SchemaFrom(ctx), in)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordAssignment("batch", out.AssignedCount)
	writeSuccess(w, http.StatusOK, out, "customers assigned")
}

func (h *CustomerPoolHandler) HandleAddFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := leadID(r)
	if err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "id must be a positive integer"})
		return
	}

	var in usecase.AddFollowUpInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "invalid JSON body"})
		return
	}
	in.IdempotencyKey = r.Header.Get(idempotencyKeyHeader)

	fu, err := h.FollowUps.Add(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordFollowUp()
	writeSuccess(w, http.StatusCreated, fu, "follow-up recorded")
}

func (h *CustomerPoolHandler) HandleFollowUpHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := leadID(r)
	if err != nil {
		writeError(w, &usecase.DomainError{Code: usecase.CodeValidation, Message: "id must be a positive integer"})
		return
	}

	items, err := h.FollowUps.History(ctx, middleware.SchemaFrom(ctx), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, items, "")
}

func (h *CustomerPoolHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Stats.Execute(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats, "")
}

// HandleExport streams the filtered, scoped lead set as CSV.
func (h *CustomerPoolHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leads, err := h.List.ExportAll(ctx, middleware.SchemaFrom(ctx), middleware.CallerFrom(ctx), filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="customers.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "name", "phone", "source", "status", "teacher", "lastFollowUp", "createdAt", "remark"})
	for _, lead := range leads {
		cw.Write(csvRow(lead))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("csv export aborted: %v", err)
	}
}

func csvRow(lead *entity.Lead) []string {
	teacher := ""
	if lead.TeacherName != nil {
		teacher = *lead.TeacherName
	}
	lastFollowUp := ""
	if lead.LastFollowUpAt != nil {
		lastFollowUp = lead.LastFollowUpAt.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(lead.ID, 10),
		lead.Name,
		lead.Phone,
		lead.Source,
		lead.Status,
		teacher,
		lastFollowUp,
		lead.CreatedAt.Format(time.RFC3339),
		lead.Remark,
	}
}
