package testutil

import (
	"net/http"

	"mintgate/pkg/domain"
	"mintgate/pkg/requestcontext"
)

// WithCaller adds a caller address to the request context.
// This simulates what the auth middleware does for authenticated requests.
// An address that does not parse is not added.
func WithCaller(req *http.Request, caller string) *http.Request {
	if addr, err := domain.ParseAddress(caller); err == nil {
		return req.WithContext(requestcontext.WithCaller(req.Context(), addr))
	}
	return req
}
