package purchase

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
}

// RegisterSteps registers price and purchase steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &purchaseSteps{tc: tc}

	ctx.Step(`^"([^"]*)" sets the price of project "([^"]*)" on "([^"]*)" to "([^"]*)"$`, steps.setPrice)
	ctx.Step(`^"([^"]*)" disables purchases for others on project "([^"]*)" via "([^"]*)"$`, steps.togglePurchaseTo)
	ctx.Step(`^"([^"]*)" purchases from project "([^"]*)" via "([^"]*)" paying "([^"]*)"$`, steps.purchase)
	ctx.Step(`^"([^"]*)" purchases from project "([^"]*)" via "([^"]*)" for "([^"]*)" paying "([^"]*)"$`, steps.purchaseTo)
	ctx.Step(`^"([^"]*)" purchases (\d+) times from project "([^"]*)" via "([^"]*)" paying "([^"]*)"$`, steps.purchaseMany)
}

type purchaseSteps struct {
	tc TestContext
}

func (s *purchaseSteps) path(project, minter, action string) (string, error) {
	addr, err := s.tc.Address(minter)
	if err != nil {
		return "", err
	}
	id, err := s.tc.ProjectID(project)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/minters/%s/projects/%d/%s", addr, id, action), nil
}

func (s *purchaseSteps) setPrice(ctx context.Context, as, project, minter, price string) error {
	path, err := s.path(project, minter, "price")
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPut, path, as, map[string]string{"price_per_unit": price})
}

func (s *purchaseSteps) togglePurchaseTo(ctx context.Context, as, project, minter string) error {
	path, err := s.path(project, minter, "purchase-to-disabled")
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPost, path, as, nil)
}

func (s *purchaseSteps) purchase(ctx context.Context, as, project, minter, payment string) error {
	path, err := s.path(project, minter, "purchase")
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPost, path, as, map[string]string{"payment": payment})
}

func (s *purchaseSteps) purchaseTo(ctx context.Context, as, project, minter, recipient, payment string) error {
	path, err := s.path(project, minter, "purchase-to")
	if err != nil {
		return err
	}
	to, err := s.tc.Address(recipient)
	if err != nil {
		return err
	}
	return s.tc.Request(http.MethodPost, path, as, map[string]string{"recipient": to, "payment": payment})
}

// purchaseMany leaves the last response in place for the following assertions.
func (s *purchaseSteps) purchaseMany(ctx context.Context, as string, times int, project, minter, payment string) error {
	for range times {
		if err := s.purchase(ctx, as, project, minter, payment); err != nil {
			return err
		}
	}
	return nil
}
