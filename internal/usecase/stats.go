package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
)

// ConversionPolicy decides which window the converted-customers counter
// covers. Monthly counts wins whose state changed this calendar month;
// cumulative counts every lead currently in CLOSED_WON.
type ConversionPolicy string

const (
	PolicyMonthly    ConversionPolicy = "monthly"
	PolicyCumulative ConversionPolicy = "cumulative"
)

func ParseConversionPolicy(s string) (ConversionPolicy, error) {
	switch ConversionPolicy(strings.ToLower(s)) {
	case PolicyMonthly:
		return PolicyMonthly, nil
	case PolicyCumulative:
		return PolicyCumulative, nil
	}
	return "", fmt.Errorf("unknown conversion policy %q (want monthly or cumulative)", s)
}

type StatsUseCase struct {
	Leads  LeadStore
	Policy ConversionPolicy
	Now    func() time.Time
}

func NewStatsUseCase(leads LeadStore, policy ConversionPolicy) *StatsUseCase {
	return &StatsUseCase{Leads: leads, Policy: policy, Now: time.Now}
}

func (uc *StatsUseCase) Execute(ctx context.Context, schema string, caller Caller) (*entity.PoolStats, error) {
	scope := ResolveScope(caller)

	now := uc.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var convertedSince *time.Time
	if uc.Policy == PolicyMonthly {
		convertedSince = &monthStart
	}

	stats, err := uc.Leads.Stats(ctx, schema, scope.Restricted, scope.StaffID, monthStart, convertedSince)
	if err != nil {
		return nil, translate("pool stats", err)
	}
	return stats, nil
}
