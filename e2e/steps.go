package e2e

import (
	"github.com/cucumber/godog"

	"mintgate/e2e/steps/common"
	"mintgate/e2e/steps/purchase"
	"mintgate/e2e/steps/registry"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Projects, generic assertions
	common.RegisterSteps(ctx, tc)

	// Approved minters and assignments
	registry.RegisterSteps(ctx, tc)

	// Prices and purchases
	purchase.RegisterSteps(ctx, tc)
}
