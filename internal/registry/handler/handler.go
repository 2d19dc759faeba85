package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/platform/middleware/auth"
	request "mintgate/pkg/platform/middleware/request"
	"mintgate/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	AddApprovedMinter(ctx context.Context, caller domain.Address, minter domain.MinterID) error
	RemoveApprovedMinter(ctx context.Context, caller domain.Address, minter domain.MinterID) error
	SetMinterForProject(ctx context.Context, caller domain.Address, id domain.ProjectID, minter domain.MinterID) (*models.Assignment, error)
	GetAssignedMinter(ctx context.Context, id domain.ProjectID) (domain.MinterID, bool, error)
	ListApprovedMinters(ctx context.Context) ([]models.ApprovedMinter, error)
	ListAssignments(ctx context.Context) ([]models.Assignment, error)
}

type Handler struct {
	service   Service
	logger    *slog.Logger
	validator auth.CallerValidator
}

func New(service Service, logger *slog.Logger, validator auth.CallerValidator) *Handler {
	return &Handler{service: service, logger: logger, validator: validator}
}

// Register mounts the registry routes. Reads are public; mutations need a caller.
func (h *Handler) Register(r chi.Router) {
	requireCaller := auth.RequireCaller(h.validator, h.logger)

	r.Route("/registry", func(r chi.Router) {
		r.Get("/minters", h.handleListApproved)
		r.Get("/assignments", h.handleListAssignments)
		r.Get("/projects/{projectID}/minter", h.handleGetAssigned)

		r.With(requireCaller).Post("/minters", h.handleAddApproved)
		r.With(requireCaller).Delete("/minters/{minter}", h.handleRemoveApproved)
		r.With(requireCaller).Put("/projects/{projectID}/minter", h.handleSetMinter)
	})
}

func (h *Handler) handleAddApproved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ApproveMinterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AddApprovedMinter(ctx, requestcontext.Caller(ctx), req.MinterID()); err != nil {
		h.writeServiceError(ctx, w, err, "failed to approve minter")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"minter": req.MinterID().String()})
}

func (h *Handler) handleRemoveApproved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	minter, err := domain.ParseMinterID(chi.URLParam(r, "minter"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemoveApprovedMinter(ctx, requestcontext.Caller(ctx), minter); err != nil {
		h.writeServiceError(ctx, w, err, "failed to remove minter")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetMinter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AssignMinterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	assignment, err := h.service.SetMinterForProject(ctx, requestcontext.Caller(ctx), id, req.MinterID())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to assign minter")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assignment)
}

func (h *Handler) handleGetAssigned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	minter, assigned, err := h.service.GetAssignedMinter(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load assignment")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AssignedMinterResponse{
		ProjectID: id,
		Minter:    minter,
		Assigned:  assigned,
	})
}

func (h *Handler) handleListApproved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	approved, err := h.service.ListApprovedMinters(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list approved minters")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"minters": approved})
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignments, err := h.service.ListAssignments(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list assignments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

// writeServiceError logs internal failures and writes the error envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
