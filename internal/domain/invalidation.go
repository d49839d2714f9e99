package domain

import (
	"fmt"
	"time"
)

// EventType is the kind of mutation that happened to an entity.
type EventType string

const (
	EventCreate          EventType = "create"
	EventUpdate          EventType = "update"
	EventDelete          EventType = "delete"
	EventStatusChange    EventType = "status_change"
	EventInventoryUpdate EventType = "inventory_update"
	EventReview          EventType = "review"
)

// EntityType is the kind of entity a mutation touched.
type EntityType string

const (
	EntityProduct   EntityType = "product"
	EntityCategory  EntityType = "category"
	EntityUser      EntityType = "user"
	EntityReview    EntityType = "review"
	EntityComboDeal EntityType = "combo_deal"
)

// EventData carries the identifiers of the mutated entity.
type EventData struct {
	ID         string `json:"id,omitempty"`
	Slug       string `json:"slug,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	ProductID  string `json:"product_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

// InvalidationEvent describes a committed mutation. It is never persisted.
type InvalidationEvent struct {
	ID     string     `json:"id,omitempty"`
	Type   EventType  `json:"type"`
	Entity EntityType `json:"entity"`
	Data   EventData  `json:"data"`
}

var validEventTypes = map[EntityType]map[EventType]bool{
	EntityProduct: {
		EventCreate: true, EventUpdate: true, EventDelete: true,
		EventStatusChange: true, EventInventoryUpdate: true, EventReview: true,
	},
	EntityCategory: {EventCreate: true, EventUpdate: true, EventDelete: true},
	EntityUser:     {EventUpdate: true, EventDelete: true},
	EntityReview:   {EventCreate: true, EventUpdate: true, EventDelete: true, EventReview: true},
	EntityComboDeal: {
		EventCreate: true, EventUpdate: true, EventDelete: true,
		EventStatusChange: true, EventInventoryUpdate: true, EventReview: true,
	},
}

// Validate checks that the entity/type pair is known and that the identifiers
// its invalidation branch needs are present.
func (e InvalidationEvent) Validate() error {
	types, ok := validEventTypes[e.Entity]
	if !ok {
		return NewInvalidEventError(fmt.Sprintf("unknown entity %q", e.Entity))
	}
	if !types[e.Type] {
		return NewInvalidEventError(fmt.Sprintf("event type %q is not valid for entity %q", e.Type, e.Entity))
	}

	switch e.Entity {
	case EntityProduct:
		if e.Type == EventCreate {
			return nil
		}
		if e.Data.ID == "" && e.Data.ProductID == "" {
			return NewInvalidEventError("product events require data.id")
		}
	case EntityCategory:
		if e.Type != EventCreate && e.Data.ID == "" && e.Data.CategoryID == "" {
			return NewInvalidEventError("category events require data.id")
		}
	case EntityUser:
		if e.Data.ID == "" && e.Data.UserID == "" {
			return NewInvalidEventError("user events require data.id")
		}
	case EntityReview:
		if e.Data.ProductID == "" {
			return NewInvalidEventError("review events require data.product_id")
		}
	}
	return nil
}

// ProductIdentifier returns the product identifier carried by the event.
func (d EventData) ProductIdentifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.ProductID
}

// CategoryIdentifier returns the category identifier carried by the event.
func (d EventData) CategoryIdentifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.CategoryID
}

// UserIdentifier returns the user identifier carried by the event.
func (d EventData) UserIdentifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.UserID
}

// BranchResult is the outcome of one invalidation branch.
type BranchResult struct {
	Name        string `json:"name"`
	KeysDeleted int64  `json:"keys_deleted"`
	Error       string `json:"error,omitempty"`
}

// InvalidationReport summarizes what a smart invalidation cleared.
type InvalidationReport struct {
	EventID  string         `json:"event_id"`
	Entity   EntityType     `json:"entity"`
	Type     EventType      `json:"type"`
	Branches []BranchResult `json:"branches"`
	Duration time.Duration  `json:"duration"`
}

// Failed returns the number of branches that reported an error.
func (r InvalidationReport) Failed() int {
	n := 0
	for _, b := range r.Branches {
		if b.Error != "" {
			n++
		}
	}
	return n
}
