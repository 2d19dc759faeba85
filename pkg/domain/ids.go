// Package domain holds the primitive value types shared by every module.
// Values are validated once at the trust boundary and then passed around typed.
package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	dErrors "mintgate/pkg/domain-errors"
)

// ProjectID identifies a project on the ledger.
type ProjectID uint64

func (p ProjectID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// ParseProjectID parses a base-10 project id.
func ParseProjectID(s string) (ProjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "project id is required")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "project id must be a non-negative integer")
	}
	return ProjectID(v), nil
}

const addressHexLen = 40

// Address is a 20-byte account or contract address in lowercase 0x-prefixed hex.
// Callers, artists, recipients and minters are all addresses.
type Address string

// ZeroAddress is the all-zero address. It is used as the native-currency sentinel
// and never identifies a caller.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalises a hex address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	if len(s) != addressHexLen+2 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex characters")
	}
	body := strings.ToLower(s[2:])
	if _, err := hex.DecodeString(body); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex characters")
	}
	return Address("0x" + body), nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether a is empty or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

// MinterID identifies a minter instance. It is the minter's contract/service address,
// kept as a distinct type so minters are never confused with callers.
type MinterID Address

// ParseMinterID validates a minter address.
func ParseMinterID(s string) (MinterID, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	if a.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "minter address cannot be zero")
	}
	return MinterID(a), nil
}

func (m MinterID) String() string {
	return string(m)
}

// IsNil reports whether the id is unset.
func (m MinterID) IsNil() bool {
	return m == ""
}
