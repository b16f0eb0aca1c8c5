package usecase

import (
	"context"

	"github.com/kgarten/customer-pool/internal/entity"
	"github.com/kgarten/customer-pool/internal/infra/database"
)

type ListLeadsInput struct {
	Filter   database.Filter
	Page     int
	PageSize int
}

type ListLeadsOutput struct {
	Items    []*entity.Lead `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type ListLeadsUseCase struct {
	Leads LeadStore
}

func NewListLeadsUseCase(leads LeadStore) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, schema string, caller Caller, in ListLeadsInput) (*ListLeadsOutput, error) {
	if err := validateFilterEnums(in.Filter.Source, in.Filter.Status); err != nil {
		return nil, err
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	pageSize := in.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 200 {
		pageSize = 200
	}

	scope := ResolveScope(caller)
	items, total, err := uc.Leads.List(ctx, schema, in.Filter, scope.Restricted, scope.StaffID, page, pageSize)
	if err != nil {
		return nil, translate("list leads", err)
	}
	if items == nil {
		items = []*entity.Lead{}
	}
	return &ListLeadsOutput{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// ExportAll returns the full filtered, scoped lead set for the CSV export.
func (uc *ListLeadsUseCase) ExportAll(ctx context.Context, schema string, caller Caller, f database.Filter) ([]*entity.Lead, error) {
	if err := validateFilterEnums(f.Source, f.Status); err != nil {
		return nil, err
	}
	scope := ResolveScope(caller)
	items, err := uc.Leads.ListAll(ctx, schema, f, scope.Restricted, scope.StaffID)
	if err != nil {
		return nil, translate("export leads", err)
	}
	return items, nil
}
