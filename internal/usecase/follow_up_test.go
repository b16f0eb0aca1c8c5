package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kgarten/customer-pool/internal/entity"
)

func TestAddFollowUp_CarriesLeadStatusForward(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	leads.On("FindByID", mock.Anything, "tenant_a", int64(10)).
		Return(&entity.Lead{ID: 10, Status: entity.StatusNegotiation}, nil)
	followUps.On("Append", mock.Anything, "tenant_a", mock.MatchedBy(func(fu *entity.FollowUp) bool {
		return fu.LeadID == 10 &&
			fu.Result == entity.StatusNegotiation &&
			fu.Type == entity.FollowUpVisit &&
			fu.CreatedBy == 3
	}), (*string)(nil)).Return(nil)

	uc := NewFollowUpUseCase(leads, followUps)
	uc.Now = fixedNow

	fu, err := uc.Add(context.Background(), "tenant_a", Caller{StaffID: 3, Role: RoleTeacher}, 10, AddFollowUpInput{
		Content: "toured the campus with the family",
		Type:    entity.FollowUpVisit,
	})

	assert.Nil(t, err)
	assert.Equal(t, entity.StatusNegotiation, fu.Result)
	followUps.AssertExpectations(t)
}

func TestAddFollowUp_DefaultsTypeToCall(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	leads.On("FindByID", mock.Anything, "tenant_a", int64(10)).
		Return(&entity.Lead{ID: 10, Status: entity.StatusNew}, nil)
	followUps.On("Append", mock.Anything, "tenant_a", mock.MatchedBy(func(fu *entity.FollowUp) bool {
		return fu.Type == entity.FollowUpCall
	}), (*string)(nil)).Return(nil)

	uc := NewFollowUpUseCase(leads, followUps)
	uc.Now = fixedNow

	_, err := uc.Add(context.Background(), "tenant_a", Caller{StaffID: 3, Role: RoleTeacher}, 10, AddFollowUpInput{
		Content: "left a voicemail",
	})

	assert.Nil(t, err)
	followUps.AssertExpectations(t)
}

func TestAddFollowUp_RequiresContent(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	uc := NewFollowUpUseCase(leads, followUps)
	uc.Now = fixedNow

	_, err := uc.Add(context.Background(), "tenant_a", Caller{StaffID: 3, Role: RoleTeacher}, 10, AddFollowUpInput{})

	var de *DomainError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
	followUps.AssertNotCalled(t, "Append")
}

func TestAddFollowUp_RejectsUnknownType(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	uc := NewFollowUpUseCase(leads, followUps)
	uc.Now = fixedNow

	_, err := uc.Add(context.Background(), "tenant_a", Caller{StaffID: 3, Role: RoleTeacher}, 10, AddFollowUpInput{
		Content: "note",
		Type:    "TELEGRAM",
	})

	var de *DomainError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
}

func TestAddFollowUp_UnknownLeadIsNotFound(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	leads.On("FindByID", mock.Anything, "tenant_a", int64(404)).Return(nil, entity.ErrNotFound)

	uc := NewFollowUpUseCase(leads, followUps)
	uc.Now = fixedNow

	_, err := uc.Add(context.Background(), "tenant_a", Caller{StaffID: 3, Role: RoleTeacher}, 404, AddFollowUpInput{
		Content: "note",
	})

	var de *DomainError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
	followUps.AssertNotCalled(t, "Append")
}

func TestHistory_ReturnsEmptySliceNotNil(t *testing.T) {
	leads := new(MockLeadStore)
	followUps := new(MockFollowUpStore)

	leads.On("FindByID", mock.Anything, "tenant_a", int64(10)).
		Return(&entity.Lead{ID: 10}, nil)
	followUps.On("ListByLead", mock.Anything, "tenant_a", int64(10), historyLimit).
		Return(nil, nil)

	uc := NewFollowUpUseCase(leads, followUps)

	items, err := uc.History(context.Background(), "tenant_a", 10)

	assert.Nil(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
