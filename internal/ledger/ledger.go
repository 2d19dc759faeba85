// Package ledger is the token-ledger collaborator. Port is the contract the
// admission engine relies on; Core is the in-process reference ledger backed by
// the project store.
package ledger

import (
	"context"
	"math"
	"time"

	"mintgate/pkg/domain"
)

// TokenIDStride separates the token-id ranges of consecutive projects.
const TokenIDStride uint64 = 1_000_000

// MaxProjectID is the largest project id whose whole token-id range fits in a uint64.
const MaxProjectID = domain.ProjectID((math.MaxUint64 - (TokenIDStride - 1)) / TokenIDStride)

// Port is what the admission engine needs from the ledger.
type Port interface {
	ProjectArtist(ctx context.Context, id domain.ProjectID) (domain.Address, error)
	ProjectActive(ctx context.Context, id domain.ProjectID) (bool, error)
	// IncrementInvocations consumes one slot atomically and returns its zero-based
	// index. It fails with capacity_exceeded when the project is at its cap.
	IncrementInvocations(ctx context.Context, id domain.ProjectID) (uint64, error)
	// MintTo performs the mint effect for a consumed slot.
	MintTo(ctx context.Context, to domain.Address, id domain.ProjectID, invocation uint64) (*Receipt, error)
}

// Receipt describes a minted token.
type Receipt struct {
	TokenID    uint64           `json:"token_id"`
	ProjectID  domain.ProjectID `json:"project_id"`
	Invocation uint64           `json:"invocation"`
	Owner      domain.Address   `json:"owner"`
	MintedAt   time.Time        `json:"minted_at"`
}

// TokenID derives the token id of the given invocation of a project.
func TokenID(id domain.ProjectID, invocation uint64) uint64 {
	return uint64(id)*TokenIDStride + invocation
}
