package usecase

import (
	"context"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
)

type UpdateLeadInput struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Remark    *string `json:"remark"`
	Status    *string `json:"status"`
	TeacherID *int64  `json:"teacherId"`
}

type UpdateLeadUseCase struct {
	Leads     LeadStore
	FollowUps FollowUpStore
	Teachers  TeacherStore
	Now       func() time.Time
}

func NewUpdateLeadUseCase(leads LeadStore, followUps FollowUpStore, teachers TeacherStore) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Leads: leads, FollowUps: followUps, Teachers: teachers, Now: time.Now}
}

// Execute applies a partial update. Identity fields (name, phone, remark) are
// written in place; status and owner changes are recorded as a new current
// follow-up row so the ledger stays the single source of truth for state.
func (uc *UpdateLeadUseCase) Execute(ctx context.Context, schema string, caller Caller, id int64, in UpdateLeadInput) (*entity.Lead, error) {
	var errs []ValidationError
	if in.Status != nil && !entity.ValidStatus(*in.Status) {
		errs = append(errs, ValidationError{"status", "unknown status"})
	}
	if in.Phone != nil && !isValidPhone(*in.Phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	// Existence is checked before the ownership gate so a missing lead is
	// reported as NOT_FOUND, not FORBIDDEN.
	lead, err := uc.Leads.FindByID(ctx, schema, id)
	if err != nil {
		return nil, translate("update lead", err)
	}

	scope := ResolveScope(caller)
	if !scope.CanMutate(lead.AssignedTeacherID) {
		return nil, forbidden("lead is assigned to another teacher")
	}

	if in.TeacherID != nil {
		if _, err := uc.Teachers.FindByID(ctx, schema, *in.TeacherID); err != nil {
			return nil, translate("update lead teacher", err)
		}
	}

	if in.Name != nil || in.Phone != nil || in.Remark != nil {
		if err := uc.Leads.UpdateIdentity(ctx, schema, id, in.Name, in.Phone, in.Remark); err != nil {
			return nil, translate("update lead identity", err)
		}
	}

	if in.Status != nil || in.TeacherID != nil {
		result := lead.Status
		if in.Status != nil {
			result = *in.Status
		}
		createdBy := caller.StaffID
		if in.TeacherID != nil {
			createdBy = *in.TeacherID
		} else if lead.AssignedTeacherID != nil {
			createdBy = *lead.AssignedTeacherID
		}
		fuType := entity.FollowUpOther
		if in.TeacherID != nil {
			fuType = entity.FollowUpAssign
		}
		fu := &entity.FollowUp{
			LeadID:       id,
			CreatedBy:    createdBy,
			Type:         fuType,
			Result:       result,
			Content:      "lead record updated",
			FollowUpDate: uc.Now(),
		}
		if err := uc.FollowUps.RecordStateChange(ctx, schema, fu, in.TeacherID); err != nil {
			return nil, translate("update lead state", err)
		}
	}

	updated, err := uc.Leads.FindByID(ctx, schema, id)
	if err != nil {
		return nil, translate("update lead reload", err)
	}
	return updated, nil
}
