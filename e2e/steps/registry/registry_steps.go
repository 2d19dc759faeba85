package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Address(alias string) (string, error)
	ProjectID(name string) (uint64, error)
	Request(method, path, as string, body any) error
	ResponseField(field string) (any, error)
}

// RegisterSteps registers approved-minter and assignment steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^"([^"]*)" approves minter "([^"]*)"$`, steps.approve)
	ctx.Step(`^"([^"]*)" revokes minter "([^"]*)"$`, steps.revoke)
	ctx.Step(`^"([^"]*)" assigns minter "([^"]*)" to project "([^"]*)"$`, steps.assign)
	ctx.Step(`^the assigned minter of project "([^"]*)" should be "([^"]*)"$`, steps.assignedMinter)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) approve(ctx context.Context, as, minter string) error {
	addr, err := s.tc.Address(minter)
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPost, "/registry/minters", as, map[string]string{"minter": addr})
}

func (s *registrySteps) revoke(ctx context.Context, as, minter string) error {
	addr, err := s.tc.Address(minter)
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodDelete, "/registry/minters/"+addr, as, nil)
}

func (s *registrySteps) assign(ctx context.Context, as, minter, project string) error {
	addr, err := s.tc.Address(minter)
	if err != nil {
		return err
	}
	id, err := s.tc.ProjectID(project)
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPut, fmt.Sprintf("/registry/projects/%d/minter", id), as,
		map[string]string{"minter": addr})
}

func (s *registrySteps) assignedMinter(ctx context.Context, project, minter string) error {
	addr, err := s.tc.Address(minter)
	if err != nil {
		return err
	}
	id, err := s.tc.ProjectID(project)
	if err != nil {
		return err
	}
	if err := s.tc.Request(http.MethodGet, fmt.Sprintf("/registry/projects/%d/minter", id), "", nil); err != nil {
		return err
	}
	got, err := s.tc.ResponseField("minter")
	if err != nil {
		return err
	}
	if got != addr {
		return fmt.Errorf("expected minter %s, got %v", addr, got)
	}
	return nil
}
