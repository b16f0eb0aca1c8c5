package entity

import (
	"time"
)

// Source channels a lead can come in through.
const (
	SourceWebsite  = "WEBSITE"
	SourcePhone    = "PHONE"
	SourceEmail    = "EMAIL"
	SourceReferral = "REFERRAL"
	SourceOther    = "OTHER"
)

// Pipeline statuses. A lead's status is never stored on the lead row; it is
// derived from the current follow-up record (result column).
const (
	StatusNew         = "NEW"
	StatusContacted   = "CONTACTED"
	StatusQualified   = "QUALIFIED"
	StatusProposal    = "PROPOSAL"
	StatusNegotiation = "NEGOTIATION"
	StatusClosedWon   = "CLOSED_WON"
	StatusClosedLost  = "CLOSED_LOST"
)

// Lead is a prospective or enrolled family record in the customer pool.
type Lead struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Source            string     `json:"source"`
	Status            string     `json:"status"`
	Remark            string     `json:"remark"`
	AssignedTeacherID *int64     `json:"teacherId"`
	TeacherName       *string    `json:"teacher"`
	LastFollowUpAt    *time.Time `json:"lastFollowUp"`
	CreatedAt         time.Time  `json:"createTime"`
	UpdatedAt         time.Time  `json:"-"`
}

// Child is a dependent linked to a lead, shown on the detail view only.
type Child struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Gender    int        `json:"gender"`
	BirthDate *time.Time `json:"birthDate"`
}

// LeadDetail is the list row plus follow-up history and linked children.
type LeadDetail struct {
	Lead
	FollowUps []*FollowUp `json:"followUps"`
	Children  []*Child    `json:"children"`
}

// PoolStats are the scoped customer-pool counters.
type PoolStats struct {
	TotalCustomers              int `json:"totalCustomers"`
	NewCustomersThisMonth       int `json:"newCustomersThisMonth"`
	UnassignedCustomers         int `json:"unassignedCustomers"`
	ConvertedCustomersThisMonth int `json:"convertedCustomersThisMonth"`
}

func ValidSource(s string) bool {
	switch s {
	case SourceWebsite, SourcePhone, SourceEmail, SourceReferral, SourceOther:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusProposal,
		StatusNegotiation, StatusClosedWon, StatusClosedLost:
		return true
	}
	return false
}
