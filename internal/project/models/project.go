package models

import (
	"strings"
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// DefaultMaxInvocations is the cap every new project starts with. It also bounds
// the token-id space of a project.
const DefaultMaxInvocations uint64 = 1_000_000

// Currency is a project's settlement currency. The zero address marks the chain's
// native currency; any other address is a token contract.
type Currency struct {
	Symbol  string         `json:"symbol"`
	Address domain.Address `json:"address"`
}

// NativeCurrency returns the native-currency sentinel with the given symbol.
func NativeCurrency(symbol string) Currency {
	return Currency{Symbol: symbol, Address: domain.ZeroAddress}
}

// IsNative reports whether c carries the native-currency sentinel address.
func (c Currency) IsNative() bool {
	return c.Address.IsZero()
}

// IsNativeFor reports whether c is the native currency of a deployment whose
// native currency is labelled nativeSymbol. Both the address and the symbol must match.
func (c Currency) IsNativeFor(nativeSymbol string) bool {
	return c.IsNative() && strings.EqualFold(c.Symbol, nativeSymbol)
}

// ValidateFor checks c against the deployment's native symbol. The zero address
// is reserved for the native currency and the native symbol cannot label a token.
func (c Currency) ValidateFor(nativeSymbol string) error {
	native := strings.EqualFold(c.Symbol, nativeSymbol)
	switch {
	case c.IsNative() && !native:
		return dErrors.New(dErrors.CodeInvalidInput, "the zero address is reserved for the native currency "+nativeSymbol)
	case !c.IsNative() && native:
		return dErrors.New(dErrors.CodeInvalidInput, "the native currency "+nativeSymbol+" must use the zero address")
	}
	return nil
}

// Project is the per-project policy record.
//
// Invariants:
//   - CurrentInvocations never decreases and never exceeds MaxInvocations
//   - PricePerUnit is mutated only by the project artist
//   - MaxInvocations never drops below CurrentInvocations
//   - Projects are never deleted; Active=false retires them
type Project struct {
	ID                 domain.ProjectID `json:"id"`
	Name               string           `json:"name"`
	Artist             domain.Address   `json:"artist"`
	PricePerUnit       domain.Amount    `json:"price_per_unit"`
	Currency           Currency         `json:"currency"`
	Active             bool             `json:"active"`
	Paused             bool             `json:"paused"`
	MaxInvocations     uint64           `json:"max_invocations"`
	CurrentInvocations uint64           `json:"current_invocations"`
	PurchaseToDisabled bool             `json:"purchase_to_disabled"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewProject builds a project in its initial state: inactive, paused, free,
// priced in the native currency, capped at DefaultMaxInvocations.
func NewProject(id domain.ProjectID, name string, artist domain.Address, native Currency, now time.Time) (*Project, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project name is required")
	}
	if artist.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project artist is required")
	}
	return &Project{
		ID:             id,
		Name:           name,
		Artist:         artist,
		PricePerUnit:   domain.NewAmount(0),
		Currency:       native,
		Active:         false,
		Paused:         true,
		MaxInvocations: DefaultMaxInvocations,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasCapacity reports whether another invocation fits under the cap.
func (p *Project) HasCapacity() bool {
	return p.CurrentInvocations < p.MaxInvocations
}

// IsArtist reports whether addr owns the project's pricing rights.
func (p *Project) IsArtist(addr domain.Address) bool {
	return !addr.IsZero() && p.Artist == addr
}

// CanSetMaxInvocations checks a cap change. The cap may only shrink and never below
// the invocations already consumed.
func (p *Project) CanSetMaxInvocations(maxInvocations uint64) error {
	if maxInvocations > p.MaxInvocations {
		return dErrors.New(dErrors.CodeInvariantViolation, "max invocations cannot be increased")
	}
	if maxInvocations < p.CurrentInvocations {
		return dErrors.New(dErrors.CodeInvariantViolation, "max invocations cannot be below current invocations")
	}
	return nil
}
