package usecase

import (
	"context"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
)

type AddFollowUpInput struct {
	Content        string `json:"content"`
	Type           string `json:"type"`
	IdempotencyKey string `json:"-"`
}

type FollowUpUseCase struct {
	Leads     LeadStore
	FollowUps FollowUpStore
	Now       func() time.Time
}

func NewFollowUpUseCase(leads LeadStore, followUps FollowUpStore) *FollowUpUseCase {
	return &FollowUpUseCase{Leads: leads, FollowUps: followUps, Now: time.Now}
}

// Add appends a follow-up note to a lead's history. The note carries the
// lead's current status forward, so appending never changes derived state.
func (uc *FollowUpUseCase) Add(ctx context.Context, schema string, caller Caller, leadID int64, in AddFollowUpInput) (*entity.FollowUp, error) {
	var errs []ValidationError
	if in.Content == "" {
		errs = append(errs, ValidationError{"content", "is required"})
	}
	fuType := in.Type
	if fuType == "" {
		fuType = entity.FollowUpCall
	} else if !entity.ValidFollowUpType(fuType) {
		errs = append(errs, ValidationError{"type", "unknown follow-up type"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	idemKey, err := validateIdempotencyKey(in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	lead, err := uc.Leads.FindByID(ctx, schema, leadID)
	if err != nil {
		return nil, translate("add follow-up", err)
	}

	fu := &entity.FollowUp{
		LeadID:       leadID,
		CreatedBy:    caller.StaffID,
		Type:         fuType,
		Result:       lead.Status,
		Content:      in.Content,
		FollowUpDate: uc.Now(),
	}
	if err := uc.FollowUps.Append(ctx, schema, fu, idemKey); err != nil {
		return nil, translate("add follow-up", err)
	}
	return fu, nil
}

// History lists a lead's follow-up records, newest first, bounded.
func (uc *FollowUpUseCase) History(ctx context.Context, schema string, leadID int64) ([]*entity.FollowUp, error) {
	if _, err := uc.Leads.FindByID(ctx, schema, leadID); err != nil {
		return nil, translate("follow-up history", err)
	}
	items, err := uc.FollowUps.ListByLead(ctx, schema, leadID, historyLimit)
	if err != nil {
		return nil, translate("follow-up history", err)
	}
	if items == nil {
		items = []*entity.FollowUp{}
	}
	return items, nil
}
