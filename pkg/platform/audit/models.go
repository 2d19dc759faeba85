package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mintgate/pkg/domain"
)

// EventCategory classifies notifications by the component that produced them.
// Downstream monitors subscribe by category.
type EventCategory string

const (
	// CategoryPolicy covers per-project policy changes (price, redirect toggle, currency).
	CategoryPolicy EventCategory = "policy"

	// CategoryRegistry covers approved-minter set and assignment changes.
	CategoryRegistry EventCategory = "registry"

	// CategoryLedger covers project lifecycle changes and admitted purchases.
	CategoryLedger EventCategory = "ledger"
)

// Event is an observable side effect of a successful mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string
	ProjectID domain.ProjectID
	Minter    domain.MinterID
	// Actor is the caller that performed the mutation.
	Actor domain.Address
	// Value carries the new state: the new price, the new toggle value, the
	// token id of an admitted purchase.
	Value     string
	RequestID string
}

type AuditEvent string

const (
	// Policy events
	EventPriceUpdated              AuditEvent = "price_updated"
	EventPurchaseToDisabledUpdated AuditEvent = "purchase_to_disabled_updated"
	EventCurrencyUpdated           AuditEvent = "currency_updated"

	// Registry events
	EventMinterApproved AuditEvent = "minter_approved"
	EventMinterRevoked  AuditEvent = "minter_revoked"
	EventMinterAssigned AuditEvent = "minter_assigned"

	// Ledger events
	EventProjectAdded          AuditEvent = "project_added"
	EventProjectActiveUpdated  AuditEvent = "project_active_updated"
	EventProjectPausedUpdated  AuditEvent = "project_paused_updated"
	EventMaxInvocationsUpdated AuditEvent = "max_invocations_updated"
	EventPurchaseAdmitted      AuditEvent = "purchase_admitted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPriceUpdated:              CategoryPolicy,
	EventPurchaseToDisabledUpdated: CategoryPolicy,
	EventCurrencyUpdated:           CategoryPolicy,

	EventMinterApproved: CategoryRegistry,
	EventMinterRevoked:  CategoryRegistry,
	EventMinterAssigned: CategoryRegistry,

	EventProjectAdded:          CategoryLedger,
	EventProjectActiveUpdated:  CategoryLedger,
	EventProjectPausedUpdated:  CategoryLedger,
	EventMaxInvocationsUpdated: CategoryLedger,
	EventPurchaseAdmitted:      CategoryLedger,
}

// Category returns the EventCategory for this event.
// Unknown events default to CategoryLedger.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryLedger
}

// Emitter is implemented by anything services can publish events to.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events for later inspection.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]Event, error)
}

// Sink forwards events to an external system such as a message broker.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
