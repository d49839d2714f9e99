package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidationEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   InvalidationEvent
		wantErr bool
	}{
		{name: "product update", event: InvalidationEvent{Type: EventUpdate, Entity: EntityProduct, Data: EventData{ID: "P1"}}},
		{name: "product review", event: InvalidationEvent{Type: EventReview, Entity: EntityProduct, Data: EventData{ID: "P1"}}},
		{name: "product review by product_id", event: InvalidationEvent{Type: EventReview, Entity: EntityProduct, Data: EventData{ProductID: "P1"}}},
		{name: "product create without id", event: InvalidationEvent{Type: EventCreate, Entity: EntityProduct}},
		{name: "category create without id", event: InvalidationEvent{Type: EventCreate, Entity: EntityCategory}},
		{name: "review", event: InvalidationEvent{Type: EventCreate, Entity: EntityReview, Data: EventData{ProductID: "P1"}}},
		{name: "user by user_id", event: InvalidationEvent{Type: EventDelete, Entity: EntityUser, Data: EventData{UserID: "U1"}}},
		{name: "combo deal", event: InvalidationEvent{Type: EventUpdate, Entity: EntityComboDeal}},

		{name: "unknown entity", event: InvalidationEvent{Type: EventUpdate, Entity: "order", Data: EventData{ID: "O1"}}, wantErr: true},
		{name: "type not valid for entity", event: InvalidationEvent{Type: EventInventoryUpdate, Entity: EntityCategory, Data: EventData{ID: "C1"}}, wantErr: true},
		{name: "product review without id", event: InvalidationEvent{Type: EventReview, Entity: EntityProduct}, wantErr: true},
		{name: "category update without id", event: InvalidationEvent{Type: EventUpdate, Entity: EntityCategory}, wantErr: true},
		{name: "user without id", event: InvalidationEvent{Type: EventUpdate, Entity: EntityUser}, wantErr: true},
		{name: "review without product", event: InvalidationEvent{Type: EventReview, Entity: EntityReview}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var domainErr *DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, ErrInvalidEvent, domainErr.Code)
		})
	}
}

func TestEventData_Identifiers(t *testing.T) {
	assert.Equal(t, "P1", EventData{ID: "P1", ProductID: "P2"}.ProductIdentifier())
	assert.Equal(t, "P2", EventData{ProductID: "P2"}.ProductIdentifier())
	assert.Equal(t, "C1", EventData{CategoryID: "C1"}.CategoryIdentifier())
	assert.Equal(t, "U1", EventData{UserID: "U1"}.UserIdentifier())
}
