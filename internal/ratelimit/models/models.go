package models

import "time"

// Result is the outcome of one sliding-window check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RetryAfter is the whole number of seconds until the window admits again,
// never less than one.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// CallerKey namespaces a bucket per caller and scope.
func CallerKey(scope, caller string) string {
	return "ratelimit:" + scope + ":" + caller
}
