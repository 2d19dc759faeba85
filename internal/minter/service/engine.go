// Package service implements the purchase admission engine. An admission runs a
// fixed sequence of checks and reports the first one that fails:
//
//  1. the requesting minter is the project's assigned minter
//  2. the project's currency is the one the minter is specialised to
//  3. the project is active and not paused
//  4. the project has an invocation left
//  5. the payment covers the price (overpayment is accepted)
//  6. minting to someone other than the caller is allowed for the project
//
// The checks, the invocation increment and the mint run under the project's lock,
// so two admissions for one project never interleave.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mintgate/internal/ledger"
	"mintgate/internal/minter/metrics"
	"mintgate/internal/minter/models"
	projectmodels "mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/keylock"
	"mintgate/pkg/requestcontext"
)

// Registry answers which minter is assigned to a project.
type Registry interface {
	GetAssignedMinter(ctx context.Context, id domain.ProjectID) (domain.MinterID, bool, error)
}

// Policy reads the project's policy record.
type Policy interface {
	GetProject(ctx context.Context, id domain.ProjectID) (*projectmodels.Project, error)
}

// Ledger is the token ledger the engine admits into. IncrementInvocations must be
// conditional on the cap so it stays safe across processes sharing a store.
type Ledger interface {
	ProjectArtist(ctx context.Context, id domain.ProjectID) (domain.Address, error)
	ProjectActive(ctx context.Context, id domain.ProjectID) (bool, error)
	IncrementInvocations(ctx context.Context, id domain.ProjectID) (uint64, error)
	MintTo(ctx context.Context, to domain.Address, id domain.ProjectID, invocation uint64) (*ledger.Receipt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Engine struct {
	registry       Registry
	policy         Policy
	ledger         Ledger
	catalogue      *models.Catalogue
	locks          *keylock.Map[domain.ProjectID]
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	nativeSymbol   string
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Engine) {
		e.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithProjectLocks must receive the same map as the registry and policy services.
func WithProjectLocks(locks *keylock.Map[domain.ProjectID]) Option {
	return func(e *Engine) {
		e.locks = locks
	}
}

// WithCatalogue sets the currency kind of each minter. Minters missing from the
// catalogue accept native currency only.
func WithCatalogue(c *models.Catalogue) Option {
	return func(e *Engine) {
		e.catalogue = c
	}
}

// WithNativeSymbol sets the symbol a zero-address currency must carry to count as native.
func WithNativeSymbol(symbol string) Option {
	return func(e *Engine) {
		if symbol != "" {
			e.nativeSymbol = symbol
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func NewEngine(registry Registry, policy Policy, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		registry:     registry,
		policy:       policy,
		ledger:       ledger,
		nativeSymbol: "ETH",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locks == nil {
		e.locks = keylock.New[domain.ProjectID]()
	}
	if e.catalogue == nil {
		e.catalogue = models.NewCatalogue()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("mintgate/minter")
	}
	return e
}

// Purchase mints one token of project id to the caller through minter.
func (e *Engine) Purchase(ctx context.Context, minter domain.MinterID, id domain.ProjectID, caller domain.Address, payment domain.Amount) (*models.Result, error) {
	return e.Admit(ctx, models.Admission{
		Minter:    minter,
		ProjectID: id,
		Caller:    caller,
		Recipient: caller,
		Payment:   payment,
	})
}

// PurchaseTo mints one token of project id to recipient. A recipient equal to the
// caller is a plain purchase and ignores the project's purchase-to flag.
func (e *Engine) PurchaseTo(ctx context.Context, minter domain.MinterID, id domain.ProjectID, caller, recipient domain.Address, payment domain.Amount) (*models.Result, error) {
	return e.Admit(ctx, models.Admission{
		Minter:    minter,
		ProjectID: id,
		Caller:    caller,
		Recipient: recipient,
		Payment:   payment,
	})
}

// Admit decides a purchase and, when every check passes, consumes an invocation
// and mints. A rejection leaves all state unchanged.
func (e *Engine) Admit(ctx context.Context, req models.Admission) (result *models.Result, err error) {
	started := time.Now()
	ctx, span := e.tracer.Start(ctx, "minter.Admit", trace.WithAttributes(
		attribute.Int64("project_id", int64(req.ProjectID)),
		attribute.String("minter", req.Minter.String()),
		attribute.Bool("redirected", req.Recipient != req.Caller),
	))
	defer func() {
		outcome := metrics.OutcomeAdmitted
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		e.metrics.ObserveAdmission(outcome, started)
	}()

	if req.Caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "caller is required")
	}
	if req.Recipient.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient cannot be the zero address")
	}

	unlock := e.locks.Lock(req.ProjectID)
	defer unlock()

	project, err := e.check(ctx, req)
	if err != nil {
		e.logRejection(ctx, req, err)
		return nil, err
	}

	artist, err := e.ledger.ProjectArtist(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	invocation, err := e.ledger.IncrementInvocations(ctx, req.ProjectID)
	if err != nil {
		e.logRejection(ctx, req, err)
		return nil, err
	}
	receipt, err := e.ledger.MintTo(ctx, req.Recipient, req.ProjectID, invocation)
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "mint failed after invocation was consumed",
				"project_id", req.ProjectID,
				"invocation", invocation,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, err
	}

	result = &models.Result{
		Receipt:   receipt,
		Minter:    req.Minter,
		Caller:    req.Caller,
		Recipient: req.Recipient,
		Artist:    artist,
		Price:     project.PricePerUnit,
		Payment:   req.Payment,
		Excess:    req.Payment.Excess(project.PricePerUnit),
	}
	if req.Recipient != req.Caller {
		e.metrics.IncrementRedirected()
	}
	span.SetAttributes(attribute.String("token_id", strconv.FormatUint(receipt.TokenID, 10)))
	e.logAudit(ctx, req, receipt)
	return result, nil
}

// check runs the ordered admission checks and returns the project snapshot they
// were evaluated against. The caller holds the project lock.
func (e *Engine) check(ctx context.Context, req models.Admission) (*projectmodels.Project, error) {
	assigned, ok, err := e.registry.GetAssignedMinter(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeNoMinterAssigned, "project has no assigned minter")
	}
	if assigned != req.Minter {
		return nil, dErrors.New(dErrors.CodeWrongMinter, "only the assigned minter may admit purchases")
	}

	project, err := e.policy.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !e.catalogue.Resolve(req.Minter).Accepts(project.Currency, e.nativeSymbol) {
		return nil, dErrors.New(dErrors.CodeUnsupportedCurrency, "project currency is not accepted by this minter")
	}

	active, err := e.ledger.ProjectActive(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !active || project.Paused {
		return nil, dErrors.New(dErrors.CodeProjectNotOpen, "project is not active or purchases are paused")
	}

	if !project.HasCapacity() {
		return nil, dErrors.New(dErrors.CodeSoldOut, "project has reached max invocations")
	}

	if req.Payment.LessThan(project.PricePerUnit) {
		return nil, dErrors.New(dErrors.CodeInsufficientPayment, "must send minimum value to mint")
	}

	if req.Recipient != req.Caller && project.PurchaseToDisabled {
		return nil, dErrors.New(dErrors.CodeRedirectNotAllowed, "purchase-to is disabled for this project")
	}
	return project, nil
}

func (e *Engine) logRejection(ctx context.Context, req models.Admission, err error) {
	if e.logger == nil {
		return
	}
	e.logger.InfoContext(ctx, "purchase rejected",
		"project_id", req.ProjectID,
		"minter", req.Minter.String(),
		"caller", req.Caller.String(),
		"code", string(dErrors.CodeOf(err)),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (e *Engine) logAudit(ctx context.Context, req models.Admission, receipt *ledger.Receipt) {
	event := audit.EventPurchaseAdmitted
	requestID := requestcontext.RequestID(ctx)
	tokenID := strconv.FormatUint(receipt.TokenID, 10)
	if e.logger != nil {
		e.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"project_id", req.ProjectID,
			"minter", req.Minter.String(),
			"actor", req.Caller.String(),
			"recipient", req.Recipient.String(),
			"token_id", tokenID,
			"request_id", requestID,
		)
	}
	if e.auditPublisher == nil {
		return
	}
	if err := e.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		ProjectID: req.ProjectID,
		Minter:    req.Minter,
		Actor:     req.Caller,
		Value:     tokenID,
	}); err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "failed to publish notification",
			"event", string(event),
			"project_id", req.ProjectID,
			"error", err,
			"request_id", requestID,
		)
	}
}
