// Package service implements the project policy store: per-project price,
// redirect toggle and currency, each guarded by its own authority scope.
package service

import (
	"context"
	"errors"
	"log/slog"

	"mintgate/internal/project/metrics"
	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/keylock"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// Store persists project policy records.
type Store interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Execute(ctx context.Context, id domain.ProjectID, validate func(*models.Project) error, mutate func(*models.Project)) (*models.Project, error)
}

// Authority resolves the two role scopes.
type Authority interface {
	IsSuperAdmin(addr domain.Address) bool
	IsArtist(ctx context.Context, id domain.ProjectID, addr domain.Address) (bool, error)
	RequireArtistOrSuperAdmin(ctx context.Context, id domain.ProjectID, addr domain.Address) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns project policy mutations.
type Service struct {
	projects       Store
	authority      Authority
	locks          *keylock.Map[domain.ProjectID]
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	nativeSymbol   string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithProjectLocks shares the per-project lock map with the admission engine so
// policy changes and admissions for one project never interleave.
func WithProjectLocks(locks *keylock.Map[domain.ProjectID]) Option {
	return func(s *Service) {
		s.locks = locks
	}
}

// WithNativeSymbol sets the label of the native currency. Only it may use the
// zero address.
func WithNativeSymbol(symbol string) Option {
	return func(s *Service) {
		if symbol != "" {
			s.nativeSymbol = symbol
		}
	}
}

func New(projects Store, authority Authority, opts ...Option) *Service {
	s := &Service{projects: projects, authority: authority, nativeSymbol: "ETH"}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = keylock.New[domain.ProjectID]()
	}
	return s
}

// GetProject returns the full policy record.
func (s *Service) GetProject(ctx context.Context, id domain.ProjectID) (*models.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, wrapProjectErr(err, "failed to load project")
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// UpdatePricePerUnit sets the project's price. Only the project artist may call it;
// the super-admin is rejected like any other non-artist. Any non-negative value is accepted.
func (s *Service) UpdatePricePerUnit(ctx context.Context, caller domain.Address, id domain.ProjectID, price domain.Amount) (*models.Project, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.requireArtist(ctx, id, caller); err != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p, err := s.projects.Execute(ctx, id, nil, func(p *models.Project) {
		p.PricePerUnit = price
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, wrapProjectErr(err, "failed to update price")
	}

	s.metrics.IncrementPriceUpdates()
	s.logAudit(ctx, audit.EventPriceUpdated, id, caller, price.String())
	return p, nil
}

// TogglePurchaseToDisabled flips the redirect toggle. The authority scope is the
// super-admin, not the artist.
func (s *Service) TogglePurchaseToDisabled(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Project, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if !s.authority.IsSuperAdmin(caller) {
		s.metrics.IncrementRejected(string(dErrors.CodeNotSuperAdmin))
		return nil, dErrors.New(dErrors.CodeNotSuperAdmin, "only the super-admin may toggle purchase-to")
	}

	now := requestcontext.Now(ctx)
	p, err := s.projects.Execute(ctx, id, nil, func(p *models.Project) {
		p.PurchaseToDisabled = !p.PurchaseToDisabled
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, wrapProjectErr(err, "failed to toggle purchase-to")
	}

	s.metrics.IncrementPolicyUpdate("purchase_to_disabled")
	s.logAudit(ctx, audit.EventPurchaseToDisabledUpdated, id, caller, boolString(p.PurchaseToDisabled))
	return p, nil
}

// UpdateCurrency switches the settlement currency. Ledger-level authority applies:
// the project artist or the super-admin.
func (s *Service) UpdateCurrency(ctx context.Context, caller domain.Address, id domain.ProjectID, currency models.Currency) (*models.Project, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.authority.RequireArtistOrSuperAdmin(ctx, id, caller); err != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		return nil, err
	}
	if err := currency.ValidateFor(s.nativeSymbol); err != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p, err := s.projects.Execute(ctx, id, nil, func(p *models.Project) {
		p.Currency = currency
		p.UpdatedAt = now
	})
	if err != nil {
		return nil, wrapProjectErr(err, "failed to update currency")
	}

	s.metrics.IncrementPolicyUpdate("currency")
	s.logAudit(ctx, audit.EventCurrencyUpdated, id, caller, currency.Symbol+":"+currency.Address.String())
	return p, nil
}

func (s *Service) requireArtist(ctx context.Context, id domain.ProjectID, caller domain.Address) error {
	ok, err := s.authority.IsArtist(ctx, id, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotArtist, "only the project artist may perform this action")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, id domain.ProjectID, actor domain.Address, value string) {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"project_id", id,
			"actor", actor.String(),
			"value", value,
			"request_id", requestID,
		)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		ProjectID: id,
		Actor:     actor,
		Value:     value,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish notification",
			"event", string(event),
			"project_id", id,
			"error", err,
			"request_id", requestID,
		)
	}
}

func wrapProjectErr(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
