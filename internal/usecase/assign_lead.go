package usecase

import (
	"context"
	"log"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/queue"
)

const defaultAssignRemark = "customer assigned"

type AssignInput struct {
	LeadID    int64  `json:"customerId"`
	TeacherID int64  `json:"teacherId"`
	Remark    string `json:"remark"`
}

type AssignOutput struct {
	LeadID      int64     `json:"id"`
	TeacherID   int64     `json:"teacherId"`
	TeacherName string    `json:"teacherName"`
	AssignTime  time.Time `json:"assignTime"`
	Remark      string    `json:"remark"`
}

type BatchAssignInput struct {
	LeadIDs   []int64 `json:"customerIds"`
	TeacherID int64   `json:"teacherId"`
	Remark    string  `json:"remark"`
}

type BatchAssignOutput struct {
	AssignedCount int       `json:"assignedCount"`
	TeacherID     int64     `json:"teacherId"`
	TeacherName   string    `json:"teacherName"`
	AssignTime    time.Time `json:"assignTime"`
	Remark        string    `json:"remark"`
}

type AssignLeadUseCase struct {
	Leads       LeadStore
	Teachers    TeacherStore
	Assignments AssignmentStore
	Notifier    AssignmentNotifier
	Now         func() time.Time
}

func NewAssignLeadUseCase(leads LeadStore, teachers TeacherStore, assignments AssignmentStore, notifier AssignmentNotifier) *AssignLeadUseCase {
	return &AssignLeadUseCase{
		Leads:       leads,
		Teachers:    teachers,
		Assignments: assignments,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

// AssignOne hands a single lead to a teacher. Assigning an already-assigned
// lead moves it to the new teacher; the operation converges on retry.
func (uc *AssignLeadUseCase) AssignOne(ctx context.Context, schema string, in AssignInput) (*AssignOutput, error) {
	var errs []ValidationError
	if in.LeadID <= 0 {
		errs = append(errs, ValidationError{"customerId", "is required"})
	}
	if in.TeacherID <= 0 {
		errs = append(errs, ValidationError{"teacherId", "is required"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := uc.Leads.FindByID(ctx, schema, in.LeadID)
	if err != nil {
		return nil, translate("assign lead", err)
	}
	teacher, err := uc.Teachers.FindByID(ctx, schema, in.TeacherID)
	if err != nil {
		return nil, translate("assign lead teacher", err)
	}

	remark := in.Remark
	if remark == "" {
		remark = defaultAssignRemark
	}

	if err := uc.Assignments.AssignOwner(ctx, schema, in.LeadID, in.TeacherID, remark); err != nil {
		return nil, translate("assign lead", err)
	}

	uc.notify([]int64{in.LeadID}, lead.Name, teacher, remark)

	return &AssignOutput{
		LeadID:      in.LeadID,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		AssignTime:  uc.Now(),
		Remark:      remark,
	}, nil
}

// AssignBatch hands a set of leads to one teacher in a single transaction:
// either every lead is assigned or none is.
func (uc *AssignLeadUseCase) AssignBatch(ctx context.Context, schema string, in BatchAssignInput) (*BatchAssignOutput, error) {
	var errs []ValidationError
	if len(in.LeadIDs) == 0 {
		errs = append(errs, ValidationError{"customerIds", "must not be empty"})
	}
	if len(in.LeadIDs) > maxBatchSize {
		errs = append(errs, ValidationError{"customerIds", "exceeds the batch limit"})
	}
	if in.TeacherID <= 0 {
		errs = append(errs, ValidationError{"teacherId", "is required"})
	}
	for _, id := range in.LeadIDs {
		if id <= 0 {
			errs = append(errs, ValidationError{"customerIds", "contains an invalid id"})
			break
		}
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	teacher, err := uc.Teachers.FindByID(ctx, schema, in.TeacherID)
	if err != nil {
		return nil, translate("batch assign teacher", err)
	}

	remark := in.Remark
	if remark == "" {
		remark = defaultAssignRemark
	}

	if err := uc.Assignments.AssignOwnerBatch(ctx, schema, in.LeadIDs, in.TeacherID, remark); err != nil {
		return nil, translate("batch assign", err)
	}

	uc.notify(in.LeadIDs, "", teacher, remark)

	return &BatchAssignOutput{
		AssignedCount: len(in.LeadIDs),
		TeacherID:     teacher.ID,
		TeacherName:   teacher.Name,
		AssignTime:    uc.Now(),
		Remark:        remark,
	}, nil
}

// notify publishes off the request path. A broker outage must not fail an
// assignment that is already committed.
func (uc *AssignLeadUseCase) notify(leadIDs []int64, leadName string, teacher *entity.Teacher, remark string) {
	if uc.Notifier == nil {
		return
	}
	payload := queue.AssignedPayload{
		LeadIDs:      leadIDs,
		LeadName:     leadName,
		TeacherID:    teacher.ID,
		TeacherName:  teacher.Name,
		TeacherEmail: teacher.Email,
		Remark:       remark,
		AssignedAt:   uc.Now(),
	}
	go func() {
		if err := uc.Notifier.PublishAssigned(context.Background(), payload); err != nil {
			log.Printf("assignment notification failed for teacher %d: %v", teacher.ID, err)
		}
	}()
}
