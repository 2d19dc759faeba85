package models

import (
	"strings"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

type UpdatePriceRequest struct {
	PricePerUnit string `json:"price_per_unit"`

	price domain.Amount
}

func (r *UpdatePriceRequest) Validate() error {
	price, err := domain.ParseAmount(r.PricePerUnit)
	if err != nil {
		return err
	}
	r.price = price
	return nil
}

// Price is available after Validate succeeds.
func (r *UpdatePriceRequest) Price() domain.Amount {
	return r.price
}

type UpdateCurrencyRequest struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address"`

	currency Currency
}

func (r *UpdateCurrencyRequest) Validate() error {
	symbol := strings.TrimSpace(r.Symbol)
	if symbol == "" {
		return dErrors.New(dErrors.CodeValidation, "currency symbol is required")
	}
	if len(symbol) > 16 {
		return dErrors.New(dErrors.CodeValidation, "currency symbol must be at most 16 characters")
	}
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return err
	}
	r.currency = Currency{Symbol: symbol, Address: addr}
	return nil
}

func (r *UpdateCurrencyRequest) Currency() Currency {
	return r.currency
}

type CreateProjectRequest struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`

	artist domain.Address
}

func (r *CreateProjectRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 128 characters")
	}
	artist, err := domain.ParseAddress(r.Artist)
	if err != nil {
		return err
	}
	if artist.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "artist cannot be the zero address")
	}
	r.artist = artist
	return nil
}

func (r *CreateProjectRequest) ArtistAddress() domain.Address {
	return r.artist
}

type UpdateMaxInvocationsRequest struct {
	MaxInvocations *uint64 `json:"max_invocations"`
}

func (r *UpdateMaxInvocationsRequest) Validate() error {
	if r.MaxInvocations == nil {
		return dErrors.New(dErrors.CodeValidation, "max_invocations is required")
	}
	return nil
}
