package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mintgate/internal/minter/models"
	projectmodels "mintgate/internal/project/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/platform/middleware/auth"
	request "mintgate/pkg/platform/middleware/request"
	"mintgate/pkg/requestcontext"
)

// Engine admits purchases.
type Engine interface {
	Purchase(ctx context.Context, minter domain.MinterID, id domain.ProjectID, caller domain.Address, payment domain.Amount) (*models.Result, error)
	PurchaseTo(ctx context.Context, minter domain.MinterID, id domain.ProjectID, caller, recipient domain.Address, payment domain.Amount) (*models.Result, error)
}

// Policy holds the per-project settings a minter exposes.
type Policy interface {
	UpdatePricePerUnit(ctx context.Context, caller domain.Address, id domain.ProjectID, price domain.Amount) (*projectmodels.Project, error)
	TogglePurchaseToDisabled(ctx context.Context, caller domain.Address, id domain.ProjectID) (*projectmodels.Project, error)
}

type Handler struct {
	engine    Engine
	policy    Policy
	logger    *slog.Logger
	validator auth.CallerValidator
	// purchaseLimits run after authentication on the purchase routes only.
	purchaseLimits []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithPurchaseLimit adds a per-caller throttle in front of the purchase routes.
func WithPurchaseLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.purchaseLimits = append(h.purchaseLimits, mw)
	}
}

func New(engine Engine, policy Policy, logger *slog.Logger, validator auth.CallerValidator, opts ...Option) *Handler {
	h := &Handler{engine: engine, policy: policy, logger: logger, validator: validator}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the minter routes. Every route acts on behalf of a caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/minters/{minter}/projects/{projectID}", func(r chi.Router) {
		r.Use(auth.RequireCaller(h.validator, h.logger))
		r.Put("/price", h.handleUpdatePrice)
		r.Post("/purchase-to-disabled", h.handleTogglePurchaseTo)
		r.With(h.purchaseLimits...).Post("/purchase", h.handlePurchase)
		r.With(h.purchaseLimits...).Post("/purchase-to", h.handlePurchaseTo)
	})
}

// target parses the minter and project path parameters.
func target(r *http.Request) (domain.MinterID, domain.ProjectID, error) {
	minter, err := domain.ParseMinterID(chi.URLParam(r, "minter"))
	if err != nil {
		return "", 0, err
	}
	id, err := domain.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		return "", 0, err
	}
	return minter, id, nil
}

func (h *Handler) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	_, id, err := target(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[projectmodels.UpdatePriceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.policy.UpdatePricePerUnit(ctx, requestcontext.Caller(ctx), id, req.Price())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update price")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleTogglePurchaseTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, id, err := target(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.policy.TogglePurchaseToDisabled(ctx, requestcontext.Caller(ctx), id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to toggle purchase-to")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"project_id":           p.ID,
		"purchase_to_disabled": p.PurchaseToDisabled,
	})
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	minter, id, err := target(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.PurchaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.engine.Purchase(ctx, minter, id, requestcontext.Caller(ctx), req.Amount())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to admit purchase")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handlePurchaseTo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	minter, id, err := target(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.PurchaseToRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.engine.PurchaseTo(ctx, minter, id, requestcontext.Caller(ctx), req.RecipientAddress(), req.Amount())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to admit purchase")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
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
