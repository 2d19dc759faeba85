package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	dErrors "mintgate/pkg/domain-errors"
)

// Amount is a non-negative integer quantity in the smallest currency unit.
// The zero value is zero. Amounts are immutable once constructed.
type Amount struct {
	v *big.Int
}

// maxAmount is 2^256-1, the largest on-chain quantity. Prices are stored as
// NUMERIC(78, 0), which holds every value up to it.
var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// NewAmount builds an Amount from a uint64.
func NewAmount(v uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(v)}
}

// ParseAmount parses a base-10 non-negative integer no larger than 2^256-1.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount is required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount must be a base-10 integer")
	}
	if v.Sign() < 0 {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be negative")
	}
	if v.Cmp(maxAmount) > 0 {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount exceeds 2^256-1")
	}
	return Amount{v: v}, nil
}

// MustParseAmount is ParseAmount for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.int().Cmp(b.int())
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Cmp(b) < 0
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.int().Sign() == 0
}

// Excess returns a - b, or zero when b >= a.
func (a Amount) Excess(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return Amount{}
	}
	return Amount{v: new(big.Int).Sub(a.int(), b.int())}
}

func (a Amount) String() string {
	return a.int().String()
}

// MarshalJSON encodes the amount as a decimal string so large values survive
// JavaScript clients.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the amount as a NUMERIC literal.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan reads a NUMERIC column.
func (a *Amount) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("scan amount: negative value %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return fmt.Errorf("scan amount: %w", err)
	}
	*a = parsed
	return nil
}
