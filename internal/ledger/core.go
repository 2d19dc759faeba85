package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/keylock"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// Store is the subset of the project store the ledger writes through.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	NextID(ctx context.Context, start domain.ProjectID) (domain.ProjectID, error)
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	Execute(ctx context.Context, id domain.ProjectID, validate func(*models.Project) error, mutate func(*models.Project)) (*models.Project, error)
	IncrementInvocations(ctx context.Context, id domain.ProjectID) (uint64, error)
}

// Authority gates the administrative operations.
type Authority interface {
	RequireSuperAdmin(addr domain.Address) error
	RequireArtist(ctx context.Context, id domain.ProjectID, addr domain.Address) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

var _ Port = (*Core)(nil)

// Core is the reference ledger.
type Core struct {
	projects       Store
	authority      Authority
	locks          *keylock.Map[domain.ProjectID]
	native         models.Currency
	startingID     domain.ProjectID
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *Metrics

	// createMu serialises id allocation for AddProject.
	createMu sync.Mutex
}

type Option func(*Core)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *Core) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Core) {
		c.metrics = m
	}
}

func WithProjectLocks(locks *keylock.Map[domain.ProjectID]) Option {
	return func(c *Core) {
		c.locks = locks
	}
}

// WithNativeCurrency sets the currency new projects start in.
func WithNativeCurrency(symbol string) Option {
	return func(c *Core) {
		c.native = models.NativeCurrency(symbol)
	}
}

// WithStartingProjectID sets the id of the first project.
func WithStartingProjectID(id domain.ProjectID) Option {
	return func(c *Core) {
		c.startingID = id
	}
}

func NewCore(projects Store, authority Authority, opts ...Option) *Core {
	c := &Core{
		projects:  projects,
		authority: authority,
		native:    models.NativeCurrency("ETH"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.locks == nil {
		c.locks = keylock.New[domain.ProjectID]()
	}
	return c
}

func (c *Core) ProjectArtist(ctx context.Context, id domain.ProjectID) (domain.Address, error) {
	p, err := c.load(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Artist, nil
}

func (c *Core) ProjectActive(ctx context.Context, id domain.ProjectID) (bool, error) {
	p, err := c.load(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Active, nil
}

// IncrementInvocations relies on the store's conditional increment, so it is safe
// without the project lock. Callers that decide on capacity first hold the lock.
func (c *Core) IncrementInvocations(ctx context.Context, id domain.ProjectID) (uint64, error) {
	index, err := c.projects.IncrementInvocations(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			c.metrics.incCapacityHits()
			return 0, dErrors.New(dErrors.CodeCapacityExceeded, "must not exceed max invocations")
		}
		return 0, wrapStoreErr(err, "failed to increment invocations")
	}
	return index, nil
}

// MintTo records the mint of a consumed slot and returns its receipt.
func (c *Core) MintTo(ctx context.Context, to domain.Address, id domain.ProjectID, invocation uint64) (*Receipt, error) {
	if to.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot mint to the zero address")
	}
	receipt := &Receipt{
		TokenID:    TokenID(id, invocation),
		ProjectID:  id,
		Invocation: invocation,
		Owner:      to,
		MintedAt:   requestcontext.Now(ctx),
	}
	c.metrics.incTokensMinted()
	if c.logger != nil {
		c.logger.InfoContext(ctx, "token minted",
			"project_id", id,
			"token_id", receipt.TokenID,
			"owner", to.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return receipt, nil
}

// AddProject creates a project owned by artist. Super-admin only.
func (c *Core) AddProject(ctx context.Context, caller domain.Address, name string, artist domain.Address) (*models.Project, error) {
	if err := c.authority.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}

	c.createMu.Lock()
	defer c.createMu.Unlock()

	id, err := c.projects.NextID(ctx, c.startingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate project id")
	}
	if id > MaxProjectID {
		return nil, dErrors.New(dErrors.CodeCapacityExceeded, "project id space is exhausted")
	}
	p, err := models.NewProject(id, name, artist, c.native, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := c.projects.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "project id already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
	}

	c.metrics.incProjectsCreated()
	c.logAudit(ctx, audit.EventProjectAdded, id, caller, artist.String())
	return p, nil
}

// ToggleProjectIsActive flips the active flag. Super-admin only.
func (c *Core) ToggleProjectIsActive(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Project, error) {
	if err := c.authority.RequireSuperAdmin(caller); err != nil {
		return nil, err
	}
	return c.mutate(ctx, id, caller, audit.EventProjectActiveUpdated, nil,
		func(p *models.Project) string {
			p.Active = !p.Active
			return strconv.FormatBool(p.Active)
		})
}

// ToggleProjectIsPaused flips the paused flag. Artist only.
func (c *Core) ToggleProjectIsPaused(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Project, error) {
	if err := c.authority.RequireArtist(ctx, id, caller); err != nil {
		return nil, err
	}
	return c.mutate(ctx, id, caller, audit.EventProjectPausedUpdated, nil,
		func(p *models.Project) string {
			p.Paused = !p.Paused
			return strconv.FormatBool(p.Paused)
		})
}

// UpdateProjectMaxInvocations lowers the cap. Artist only; the cap can never rise
// and never drop below the invocations already consumed.
func (c *Core) UpdateProjectMaxInvocations(ctx context.Context, caller domain.Address, id domain.ProjectID, maxInvocations uint64) (*models.Project, error) {
	if err := c.authority.RequireArtist(ctx, id, caller); err != nil {
		return nil, err
	}
	return c.mutate(ctx, id, caller, audit.EventMaxInvocationsUpdated,
		func(p *models.Project) error {
			if err := p.CanSetMaxInvocations(maxInvocations); err != nil {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return nil
		},
		func(p *models.Project) string {
			p.MaxInvocations = maxInvocations
			return strconv.FormatUint(maxInvocations, 10)
		})
}

func (c *Core) mutate(ctx context.Context, id domain.ProjectID, caller domain.Address, event audit.AuditEvent,
	validate func(*models.Project) error, apply func(*models.Project) string) (*models.Project, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	now := requestcontext.Now(ctx)
	var value string
	p, err := c.projects.Execute(ctx, id, validate, func(p *models.Project) {
		value = apply(p)
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to update project")
	}
	c.logAudit(ctx, event, id, caller, value)
	return p, nil
}

func (c *Core) load(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	p, err := c.projects.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load project")
	}
	return p, nil
}

func (c *Core) logAudit(ctx context.Context, event audit.AuditEvent, id domain.ProjectID, actor domain.Address, value string) {
	requestID := requestcontext.RequestID(ctx)
	if c.logger != nil {
		c.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"project_id", id,
			"actor", actor.String(),
			"value", value,
			"request_id", requestID,
		)
	}
	if c.auditPublisher == nil {
		return
	}
	if err := c.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		ProjectID: id,
		Actor:     actor,
		Value:     value,
	}); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "failed to publish notification",
			"event", string(event),
			"project_id", id,
			"error", err,
			"request_id", requestID,
		)
	}
}

func wrapStoreErr(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
