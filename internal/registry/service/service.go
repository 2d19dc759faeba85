// Package service implements the minter registry: the approved-minter set and the
// one-minter-per-project assignment map. Every mutation is super-admin only.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	projectmodels "mintgate/internal/project/models"
	"mintgate/internal/registry/metrics"
	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/keylock"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// Store persists the approved set and assignments. SetAssignment and
// RemoveApproved must check membership and the reverse index atomically.
type Store interface {
	AddApproved(ctx context.Context, m domain.MinterID, at time.Time) error
	RemoveApproved(ctx context.Context, m domain.MinterID) error
	IsApproved(ctx context.Context, m domain.MinterID) (bool, error)
	ListApproved(ctx context.Context) ([]models.ApprovedMinter, error)
	SetAssignment(ctx context.Context, a models.Assignment) (domain.MinterID, error)
	GetAssignment(ctx context.Context, id domain.ProjectID) (*models.Assignment, error)
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
}

type Authority interface {
	IsSuperAdmin(addr domain.Address) bool
}

// ProjectLookup confirms a project exists before it is assigned.
type ProjectLookup interface {
	FindByID(ctx context.Context, id domain.ProjectID) (*projectmodels.Project, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	opAdd    = "add_approved_minter"
	opRemove = "remove_approved_minter"
	opAssign = "set_minter_for_project"
)

type Service struct {
	store          Store
	authority      Authority
	projects       ProjectLookup
	locks          *keylock.Map[domain.ProjectID]
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

// WithProjectLocks shares the per-project lock map with the admission engine so an
// assignment never changes halfway through an admission for the same project.
func WithProjectLocks(locks *keylock.Map[domain.ProjectID]) Option {
	return func(s *Service) {
		s.locks = locks
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, authority Authority, projects ProjectLookup, opts ...Option) *Service {
	s := &Service{
		store:     store,
		authority: authority,
		projects:  projects,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = keylock.New[domain.ProjectID]()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("mintgate/registry")
	}
	return s
}

// AddApprovedMinter inserts minter into the approved set.
func (s *Service) AddApprovedMinter(ctx context.Context, caller domain.Address, minter domain.MinterID) (err error) {
	ctx, span := s.tracer.Start(ctx, "registry.AddApprovedMinter",
		trace.WithAttributes(attribute.String("minter", minter.String())))
	defer func() { endSpan(span, err) }()

	if err := s.requireSuperAdmin(opAdd, caller); err != nil {
		return err
	}
	if err := s.store.AddApproved(ctx, minter, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementRejected(opAdd, string(dErrors.CodeAlreadyApproved))
			return dErrors.New(dErrors.CodeAlreadyApproved, "minter is already approved")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve minter")
	}

	s.metrics.IncrementMutation(opAdd)
	s.refreshApprovedCount(ctx)
	s.logAudit(ctx, audit.EventMinterApproved, 0, minter, caller, "")
	return nil
}

// RemoveApprovedMinter drops minter from the approved set. A minter still assigned
// to any project cannot be removed; reassign those projects first.
func (s *Service) RemoveApprovedMinter(ctx context.Context, caller domain.Address, minter domain.MinterID) (err error) {
	ctx, span := s.tracer.Start(ctx, "registry.RemoveApprovedMinter",
		trace.WithAttributes(attribute.String("minter", minter.String())))
	defer func() { endSpan(span, err) }()

	if err := s.requireSuperAdmin(opRemove, caller); err != nil {
		return err
	}
	if err := s.store.RemoveApproved(ctx, minter); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.IncrementRejected(opRemove, string(dErrors.CodeMinterNotApproved))
			return dErrors.New(dErrors.CodeMinterNotApproved, "minter is not approved")
		case errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.IncrementRejected(opRemove, string(dErrors.CodeStillAssigned))
			return dErrors.New(dErrors.CodeStillAssigned, "minter is still assigned to a project")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove minter")
	}

	s.metrics.IncrementMutation(opRemove)
	s.refreshApprovedCount(ctx)
	s.logAudit(ctx, audit.EventMinterRevoked, 0, minter, caller, "")
	return nil
}

// SetMinterForProject assigns minter to project id, silently superseding any prior
// assignment. Purchases through the previous minter fail from the moment this returns.
func (s *Service) SetMinterForProject(ctx context.Context, caller domain.Address, id domain.ProjectID, minter domain.MinterID) (a *models.Assignment, err error) {
	ctx, span := s.tracer.Start(ctx, "registry.SetMinterForProject",
		trace.WithAttributes(
			attribute.Int64("project_id", int64(id)),
			attribute.String("minter", minter.String()),
		))
	defer func() { endSpan(span, err) }()

	if err := s.requireSuperAdmin(opAssign, caller); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.projects.FindByID(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementRejected(opAssign, string(dErrors.CodeNotFound))
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}

	assignment := models.Assignment{ProjectID: id, Minter: minter, AssignedAt: requestcontext.Now(ctx)}
	previous, err := s.store.SetAssignment(ctx, assignment)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementRejected(opAssign, string(dErrors.CodeMinterNotApproved))
			return nil, dErrors.New(dErrors.CodeMinterNotApproved, "only approved minters may be assigned")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign minter")
	}

	s.metrics.IncrementMutation(opAssign)
	s.logAudit(ctx, audit.EventMinterAssigned, id, minter, caller, previous.String())
	return &assignment, nil
}

// GetAssignedMinter returns the minter assigned to id. ok is false when the project
// has no assignment.
func (s *Service) GetAssignedMinter(ctx context.Context, id domain.ProjectID) (minter domain.MinterID, ok bool, err error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", false, nil
		}
		return "", false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assignment")
	}
	return a.Minter, true, nil
}

// IsApprovedMinter reports approved-set membership.
func (s *Service) IsApprovedMinter(ctx context.Context, minter domain.MinterID) (bool, error) {
	ok, err := s.store.IsApproved(ctx, minter)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check minter")
	}
	return ok, nil
}

func (s *Service) ListApprovedMinters(ctx context.Context) ([]models.ApprovedMinter, error) {
	approved, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list approved minters")
	}
	return approved, nil
}

func (s *Service) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	assignments, err := s.store.ListAssignments(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}
	return assignments, nil
}

func (s *Service) requireSuperAdmin(op string, caller domain.Address) error {
	if s.authority.IsSuperAdmin(caller) {
		return nil
	}
	s.metrics.IncrementRejected(op, string(dErrors.CodeNotSuperAdmin))
	return dErrors.New(dErrors.CodeNotSuperAdmin, "only the super-admin may change the minter registry")
}

func (s *Service) refreshApprovedCount(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	approved, err := s.store.ListApproved(ctx)
	if err != nil {
		return
	}
	s.metrics.SetApprovedCount(len(approved))
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, id domain.ProjectID, minter domain.MinterID, actor domain.Address, value string) {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"project_id", id,
			"minter", minter.String(),
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
		Minter:    minter,
		Actor:     actor,
		Value:     value,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish notification",
			"event", string(event),
			"minter", minter.String(),
			"error", err,
			"request_id", requestID,
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.code", string(dErrors.CodeOf(err))))
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
