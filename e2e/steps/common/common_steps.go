package common

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Address(alias string) (string, error)
	SetProjectID(name string, id uint64)
	ProjectID(name string) (uint64, error)
	Request(method, path, as string, body any) error
	MustSucceed(method, path, as string, body any) error
	LastStatus() int
	LastBody() []byte
	ResponseField(field string) (any, error)
}

// RegisterSteps registers project setup and response assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Project lifecycle
	ctx.Step(`^"([^"]*)" creates project "([^"]*)" for "([^"]*)"$`, steps.createProject)
	ctx.Step(`^project "([^"]*)" is open for sale with (\d+) editions$`, steps.openForSale)
	ctx.Step(`^"([^"]*)" pauses project "([^"]*)"$`, steps.togglePaused)
	ctx.Step(`^project "([^"]*)" should have (\d+) invocations$`, steps.projectInvocations)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatus)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCode)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) createProject(ctx context.Context, admin, name, artist string) error {
	artistAddr, err := s.tc.Address(artist)
	if err != nil {
		return err
	}
	if err := s.tc.MustSucceed(http.MethodPost, "/projects", admin, map[string]any{
		"name":   name,
		"artist": artistAddr,
	}); err != nil {
		return err
	}
	id, err := s.tc.ResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetProjectID(name, uint64(id.(float64)))
	return nil
}

// openForSale activates, caps and unpauses a project as its super-admin and artist.
func (s *commonSteps) openForSale(ctx context.Context, name string, editions int) error {
	id, err := s.tc.ProjectID(name)
	if err != nil {
		return err
	}
	base := fmt.Sprintf("/projects/%d", id)
	if err := s.tc.MustSucceed(http.MethodPost, base+"/active", "super-admin", nil); err != nil {
		return err
	}
	if err := s.tc.MustSucceed(http.MethodPut, base+"/max-invocations", "artist", map[string]any{
		"max_invocations": editions,
	}); err != nil {
		return err
	}
	return s.tc.MustSucceed(http.MethodPost, base+"/paused", "artist", nil)
}

func (s *commonSteps) togglePaused(ctx context.Context, as, name string) error {
	id, err := s.tc.ProjectID(name)
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPost, fmt.Sprintf("/projects/%d/paused", id), as, nil)
}

func (s *commonSteps) projectInvocations(ctx context.Context, name string, want int) error {
	id, err := s.tc.ProjectID(name)
	if err != nil {
		return err
	}
	if err := s.tc.MustSucceed(http.MethodGet, fmt.Sprintf("/projects/%d", id), "", nil); err != nil {
		return err
	}
	got, err := s.tc.ResponseField("current_invocations")
	if err != nil {
		return err
	}
	if int(got.(float64)) != want {
		return fmt.Errorf("expected %d invocations, got %v", want, got)
	}
	return nil
}

func (s *commonSteps) responseStatus(ctx context.Context, want int) error {
	if s.tc.LastStatus() != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, s.tc.LastStatus(), s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) errorCode(ctx context.Context, want string) error {
	var body map[string]any
	if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
		return fmt.Errorf("decode error response: %w", err)
	}
	if body["error"] != want {
		return fmt.Errorf("expected error %q, got %v", want, body["error"])
	}
	return nil
}

func (s *commonSteps) responseField(ctx context.Context, field, want string) error {
	got, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != want {
		return fmt.Errorf("expected %s to be %q, got %v", field, want, got)
	}
	return nil
}
