package usecase

import (
	"context"

	"github.com/kgarten/customer-pool/internal/entity"
)

type LeadDetailUseCase struct {
	Leads     LeadStore
	FollowUps FollowUpStore
}

func NewLeadDetailUseCase(leads LeadStore, followUps FollowUpStore) *LeadDetailUseCase {
	return &LeadDetailUseCase{Leads: leads, FollowUps: followUps}
}

// Execute assembles the detail view: the lead with its derived state, a
// bounded follow-up history (newest first) and any linked children.
func (uc *LeadDetailUseCase) Execute(ctx context.Context, schema string, id int64) (*entity.LeadDetail, error) {
	lead, err := uc.Leads.FindByID(ctx, schema, id)
	if err != nil {
		return nil, translate("lead detail", err)
	}

	history, err := uc.FollowUps.ListByLead(ctx, schema, id, historyLimit)
	if err != nil {
		return nil, translate("lead detail history", err)
	}
	if history == nil {
		history = []*entity.FollowUp{}
	}

	children, err := uc.Leads.ListChildren(ctx, schema, id)
	if err != nil {
		return nil, translate("lead detail children", err)
	}
	if children == nil {
		children = []*entity.Child{}
	}

	return &entity.LeadDetail{Lead: *lead, FollowUps: history, Children: children}, nil
}
