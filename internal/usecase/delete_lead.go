package usecase

import (
	"context"
	"errors"

	"github.com/kgarten/customer-pool/internal/entity"
)

type DeleteLeadUseCase struct {
	Leads LeadStore
}

func NewDeleteLeadUseCase(leads LeadStore) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Leads: leads}
}

// Execute soft-deletes a lead and its follow-up history. Deleting a lead
// that does not exist (or was already deleted) succeeds, so retried deletes
// converge on the same outcome.
func (uc *DeleteLeadUseCase) Execute(ctx context.Context, schema string, caller Caller, id int64) error {
	lead, err := uc.Leads.FindByID(ctx, schema, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil
		}
		return translate("delete lead", err)
	}

	scope := ResolveScope(caller)
	if !scope.CanMutate(lead.AssignedTeacherID) {
		return forbidden("lead is assigned to another teacher")
	}

	if err := uc.Leads.SoftDelete(ctx, schema, id); err != nil {
		return translate("delete lead", err)
	}
	return nil
}
