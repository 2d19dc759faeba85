package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped) and
// services translate them into coded domain errors:
//   - ErrNotFound: the project, minter or assignment does not exist
//   - ErrConflict: a create collided with an existing record
//   - ErrInvalidState: the record is in the wrong state for a conditional update
//     (for example an invocation increment at the cap)
//   - ErrUnavailable: the backing store cannot be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
