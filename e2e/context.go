package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mintgate/internal/app"
	"mintgate/internal/platform/config"
	"mintgate/pkg/domain"
)

// Named actors. Scenarios refer to them by alias; minter aliases start with "minter".
var actors = map[string]domain.Address{
	"super-admin":  "0x00000000000000000000000000000000000000ad",
	"artist":       "0x00000000000000000000000000000000000000a1",
	"other-artist": "0x00000000000000000000000000000000000000a2",
	"collector":    "0x00000000000000000000000000000000000000c1",
	"friend":       "0x00000000000000000000000000000000000000c2",
	"minter-a":     "0x00000000000000000000000000000000000000b1",
	"minter-b":     "0x00000000000000000000000000000000000000b2",
	"minter-c":     "0x00000000000000000000000000000000000000b3",
}

// TestContext holds one scenario's service and the last response seen.
type TestContext struct {
	app      *app.App
	server   *httptest.Server
	tokens   map[string]string
	projects map[string]uint64

	lastStatus int
	lastBody   []byte
}

// NewTestContext boots an in-memory service for a scenario.
func NewTestContext() (*TestContext, error) {
	cfg := config.Default()
	cfg.Auth.SuperAdmin = actors["super-admin"].String()
	cfg.Ledger.AuditBuffer = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(context.Background(), &cfg, logger, app.WithPrometheusRegistry(prometheus.NewRegistry()))
	if err != nil {
		return nil, err
	}

	tc := &TestContext{
		app:      a,
		server:   httptest.NewServer(a.Handler),
		tokens:   map[string]string{},
		projects: map[string]uint64{},
	}
	for alias, addr := range actors {
		token, err := a.Tokens.GenerateCallerToken(addr, time.Hour)
		if err != nil {
			tc.Close()
			return nil, err
		}
		tc.tokens[alias] = token
	}
	return tc, nil
}

func (tc *TestContext) Close() {
	tc.server.Close()
	_ = tc.app.Close(context.Background())
}

// Address resolves an actor alias.
func (tc *TestContext) Address(alias string) (string, error) {
	addr, ok := actors[alias]
	if !ok {
		return "", fmt.Errorf("unknown actor %q", alias)
	}
	return addr.String(), nil
}

func (tc *TestContext) SetProjectID(name string, id uint64) {
	tc.projects[name] = id
}

func (tc *TestContext) ProjectID(name string) (uint64, error) {
	id, ok := tc.projects[name]
	if !ok {
		return 0, fmt.Errorf("unknown project %q", name)
	}
	return id, nil
}

// Request sends body as JSON on behalf of the actor alias; an empty alias is anonymous.
func (tc *TestContext) Request(method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, ok := tc.tokens[as]
		if !ok {
			return fmt.Errorf("unknown actor %q", as)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// MustSucceed sends the request and fails unless a 2xx status is returned.
func (tc *TestContext) MustSucceed(method, path, as string, body any) error {
	if err := tc.Request(method, path, as, body); err != nil {
		return err
	}
	if tc.lastStatus < 200 || tc.lastStatus > 299 {
		return fmt.Errorf("%s %s as %s: status %d: %s", method, path, as, tc.lastStatus, strings.TrimSpace(string(tc.lastBody)))
	}
	return nil
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) LastBody() []byte {
	return tc.lastBody
}

// ResponseField reads a dotted path such as "receipt.token_id" from the last JSON body.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var current any
	if err := json.Unmarshal(tc.lastBody, &current); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return current, nil
}
