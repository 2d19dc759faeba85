// Package models describes minter variants and the admission request/result.
package models

import (
	"fmt"
	"strings"
	"sync"

	"mintgate/internal/ledger"
	projectmodels "mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// CurrencyKind is the settlement currency a minter accepts.
type CurrencyKind string

const (
	CurrencyNative CurrencyKind = "native"
	CurrencyToken  CurrencyKind = "token"
)

// Minter is a minter identity together with the currency it is specialised to.
// Token minters accept exactly one token contract.
type Minter struct {
	ID    domain.MinterID `json:"id"`
	Kind  CurrencyKind    `json:"kind"`
	Token domain.Address  `json:"token,omitempty"`
}

// NativeMinter returns a minter that only accepts native-currency projects.
func NativeMinter(id domain.MinterID) Minter {
	return Minter{ID: id, Kind: CurrencyNative}
}

// TokenMinter returns a minter that only accepts projects priced in token.
func TokenMinter(id domain.MinterID, token domain.Address) Minter {
	return Minter{ID: id, Kind: CurrencyToken, Token: token}
}

// Accepts reports whether a project settled in c can be purchased through m.
// A zero-address currency is native only when it carries nativeSymbol.
func (m Minter) Accepts(c projectmodels.Currency, nativeSymbol string) bool {
	switch m.Kind {
	case CurrencyNative:
		return c.IsNativeFor(nativeSymbol)
	case CurrencyToken:
		return !c.IsNative() && c.Address == m.Token
	default:
		return false
	}
}

// Catalogue maps minter ids to their currency kind. Unknown minters are native.
type Catalogue struct {
	mu      sync.RWMutex
	minters map[domain.MinterID]Minter
}

func NewCatalogue(minters ...Minter) *Catalogue {
	c := &Catalogue{minters: make(map[domain.MinterID]Minter, len(minters))}
	for _, m := range minters {
		c.minters[m.ID] = m
	}
	return c
}

// ParseTokenMinters builds a catalogue from minter-address to token-address pairs.
func ParseTokenMinters(pairs map[string]string) (*Catalogue, error) {
	c := NewCatalogue()
	for rawMinter, rawToken := range pairs {
		id, err := domain.ParseMinterID(rawMinter)
		if err != nil {
			return nil, fmt.Errorf("token minter %q: %w", rawMinter, err)
		}
		token, err := domain.ParseAddress(rawToken)
		if err != nil {
			return nil, fmt.Errorf("token for minter %q: %w", rawMinter, err)
		}
		if token.IsZero() {
			return nil, fmt.Errorf("token for minter %q cannot be the zero address", rawMinter)
		}
		c.Register(TokenMinter(id, token))
	}
	return c, nil
}

func (c *Catalogue) Register(m Minter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minters[m.ID] = m
}

// Resolve returns the variant registered for id, defaulting to native.
func (c *Catalogue) Resolve(id domain.MinterID) Minter {
	if c == nil {
		return NativeMinter(id)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.minters[id]; ok {
		return m
	}
	return NativeMinter(id)
}

// Admission is one purchase attempt. Recipient equals Caller for a plain purchase.
type Admission struct {
	Minter    domain.MinterID
	ProjectID domain.ProjectID
	Caller    domain.Address
	Recipient domain.Address
	Payment   domain.Amount
}

// Result describes an admitted purchase. Excess is the overpayment, left to the
// ledger to refund or keep.
type Result struct {
	Receipt   *ledger.Receipt `json:"receipt"`
	Minter    domain.MinterID `json:"minter"`
	Caller    domain.Address  `json:"caller"`
	Recipient domain.Address  `json:"recipient"`
	Artist    domain.Address  `json:"artist"`
	Price     domain.Amount   `json:"price"`
	Payment   domain.Amount   `json:"payment"`
	Excess    domain.Amount   `json:"excess"`
}

// PurchaseRequest is the body of POST .../purchase.
type PurchaseRequest struct {
	Payment string `json:"payment"`

	payment domain.Amount
}

func (r *PurchaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	a, err := domain.ParseAmount(r.Payment)
	if err != nil {
		return err
	}
	r.payment = a
	return nil
}

func (r *PurchaseRequest) Amount() domain.Amount {
	return r.payment
}

// PurchaseToRequest is the body of POST .../purchase-to.
type PurchaseToRequest struct {
	Recipient string `json:"recipient"`
	Payment   string `json:"payment"`

	recipient domain.Address
	payment   domain.Amount
}

func (r *PurchaseToRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	recipient, err := domain.ParseAddress(strings.TrimSpace(r.Recipient))
	if err != nil {
		return err
	}
	if recipient.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient cannot be the zero address")
	}
	a, err := domain.ParseAmount(r.Payment)
	if err != nil {
		return err
	}
	r.recipient = recipient
	r.payment = a
	return nil
}

func (r *PurchaseToRequest) RecipientAddress() domain.Address {
	return r.recipient
}

func (r *PurchaseToRequest) Amount() domain.Amount {
	return r.payment
}
