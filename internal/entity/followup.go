package entity

import (
	"time"
)

// Follow-up interaction types.
const (
	FollowUpCall   = "CALL"
	FollowUpEmail  = "EMAIL"
	FollowUpVisit  = "VISIT"
	FollowUpOther  = "OTHER"
	FollowUpAssign = "ASSIGN"
)

// FollowUp is one interaction or state-change record tied to a lead.
// Exactly one non-deleted row per lead carries IsCurrent; it defines the
// lead's status and last-follow-up time. The rest is history.
type FollowUp struct {
	ID           int64     `json:"id"`
	LeadID       int64     `json:"customerId"`
	CreatedBy    int64     `json:"-"`
	CreatorName  string    `json:"creator"`
	Type         string    `json:"type"`
	Result       string    `json:"result"`
	Content      string    `json:"content"`
	FollowUpDate time.Time `json:"followupDate"`
	IsCurrent    bool      `json:"-"`
	CreatedAt    time.Time `json:"createTime"`
	UpdatedAt    time.Time `json:"-"`
}

func ValidFollowUpType(s string) bool {
	switch s {
	case FollowUpCall, FollowUpEmail, FollowUpVisit, FollowUpOther, FollowUpAssign:
		return true
	}
	return false
}
