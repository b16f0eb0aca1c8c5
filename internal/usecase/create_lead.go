package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kgarten/customer-pool/internal/entity"
)

// IngestMode decides what happens when a lead arrives without a name or a
// phone. Lenient synthesizes placeholders, trading data quality for capture
// rate on ingestion; strict rejects. The mode is explicit configuration
// (LEAD_INGEST_MODE), never an implicit default.
type IngestMode string

const (
	IngestStrict  IngestMode = "strict"
	IngestLenient IngestMode = "lenient"
)

func ParseIngestMode(s string) (IngestMode, error) {
	switch IngestMode(strings.ToLower(s)) {
	case IngestStrict:
		return IngestStrict, nil
	case IngestLenient:
		return IngestLenient, nil
	}
	return "", fmt.Errorf("unknown ingest mode %q (want strict or lenient)", s)
}

type CreateLeadInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Source         string `json:"source"`
	Remark         string `json:"remark"`
	TeacherID      int64  `json:"teacherId"`
	IdempotencyKey string `json:"-"`
}

type CreateLeadUseCase struct {
	Leads LeadStore
	Mode  IngestMode
	Now   func() time.Time
}

func NewCreateLeadUseCase(leads LeadStore, mode IngestMode) *CreateLeadUseCase {
	return &CreateLeadUseCase{Leads: leads, Mode: mode, Now: time.Now}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, schema string, input CreateLeadInput) (*entity.Lead, error) {
	var errs []ValidationError
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)

	switch uc.Mode {
	case IngestStrict:
		if name == "" {
			errs = append(errs, ValidationError{"name", "is required"})
		}
		if phone == "" {
			errs = append(errs, ValidationError{"phone", "is required"})
		} else if !isValidPhone(phone) {
			errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
		}
	default:
		now := uc.Now()
		if name == "" {
			name = fmt.Sprintf("visitor_%d", now.Unix())
		}
		if phone == "" {
			phone = fmt.Sprintf("1380013%04d", now.Unix()%10000)
		}
	}

	if input.Source != "" && !entity.ValidSource(input.Source) {
		errs = append(errs, ValidationError{"source", "unknown source channel"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	idemKey, err := validateIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = entity.SourceOther
	}

	lead := &entity.Lead{
		Name:   name,
		Phone:  phone,
		Source: source,
		Status: entity.StatusNew,
		Remark: input.Remark,
	}
	if input.TeacherID != 0 {
		lead.AssignedTeacherID = &input.TeacherID
	}

	if err := uc.Leads.Create(ctx, schema, lead, idemKey); err != nil {
		return nil, translate("create lead", err)
	}
	return lead, nil
}
