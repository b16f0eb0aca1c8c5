package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kgarten/customer-pool/internal/entity"
)

// maxBatchSize bounds a batch assignment so one call cannot pin a pooled
// connection and an open transaction for an unbounded loop.
const maxBatchSize = 500

// historyLimit bounds the follow-up history returned on the detail view.
const historyLimit = 50

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	de := invalid("validation failed: %s", strings.Join(parts, ", "))
	de.Fields = errs
	return de
}

var (
	phonePattern    = regexp.MustCompile(`^\d{7,15}$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

func isValidPhone(phone string) bool {
	cleaned := nonDigitPattern.ReplaceAllString(phone, "")
	return phonePattern.MatchString(cleaned)
}

// validateIdempotencyKey checks the optional client key. Keys must be UUIDs
// so the unique column cannot be abused as a free-form secondary index.
func validateIdempotencyKey(key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(key); err != nil {
		return nil, invalid("idempotency key must be a UUID")
	}
	return &key, nil
}

func validateFilterEnums(source, status string) error {
	if source != "" && !entity.ValidSource(source) {
		return invalid("unknown source channel %q", source)
	}
	if status != "" && !entity.ValidStatus(status) {
		return invalid("unknown status %q", status)
	}
	return nil
}
