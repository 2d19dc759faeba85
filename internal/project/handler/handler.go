package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/platform/middleware/auth"
	request "mintgate/pkg/platform/middleware/request"
	"mintgate/pkg/requestcontext"
)

// Ledger performs the project lifecycle operations.
type Ledger interface {
	AddProject(ctx context.Context, caller domain.Address, name string, artist domain.Address) (*models.Project, error)
	ToggleProjectIsActive(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Project, error)
	ToggleProjectIsPaused(ctx context.Context, caller domain.Address, id domain.ProjectID) (*models.Project, error)
	UpdateProjectMaxInvocations(ctx context.Context, caller domain.Address, id domain.ProjectID, maxInvocations uint64) (*models.Project, error)
}

// Policy reads projects and changes their currency.
type Policy interface {
	GetProject(ctx context.Context, id domain.ProjectID) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateCurrency(ctx context.Context, caller domain.Address, id domain.ProjectID, currency models.Currency) (*models.Project, error)
}

type Handler struct {
	ledger    Ledger
	policy    Policy
	logger    *slog.Logger
	validator auth.CallerValidator
}

func New(ledger Ledger, policy Policy, logger *slog.Logger, validator auth.CallerValidator) *Handler {
	return &Handler{ledger: ledger, policy: policy, logger: logger, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	requireCaller := auth.RequireCaller(h.validator, h.logger)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{projectID}", h.handleGet)

		r.With(requireCaller).Post("/", h.handleCreate)
		r.With(requireCaller).Post("/{projectID}/active", h.handleToggleActive)
		r.With(requireCaller).Post("/{projectID}/paused", h.handleTogglePaused)
		r.With(requireCaller).Put("/{projectID}/max-invocations", h.handleUpdateMaxInvocations)
		r.With(requireCaller).Put("/{projectID}/currency", h.handleUpdateCurrency)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateProjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.ledger.AddProject(ctx, requestcontext.Caller(ctx), req.Name, req.ArtistAddress())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to add project")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.policy.ListProjects(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list projects")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.policy.GetProject(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load project")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.ledger.ToggleProjectIsActive, "failed to toggle active")
}

func (h *Handler) handleTogglePaused(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.ledger.ToggleProjectIsPaused, "failed to toggle paused")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, domain.Address, domain.ProjectID) (*models.Project, error), msg string) {
	ctx := r.Context()
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := fn(ctx, requestcontext.Caller(ctx), id)
	if err != nil {
		h.writeServiceError(ctx, w, err, msg)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateMaxInvocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateMaxInvocationsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.ledger.UpdateProjectMaxInvocations(ctx, requestcontext.Caller(ctx), id, *req.MaxInvocations)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update max invocations")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateCurrencyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.policy.UpdateCurrency(ctx, requestcontext.Caller(ctx), id, req.Currency())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update currency")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
