package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "herdbook/internal/errors"
	"herdbook/internal/middleware"
	"herdbook/internal/services"
	"herdbook/pkg/contracts"
)

// CountdownHandler serves sale countdown classification
type CountdownHandler struct {
	service      CountdownService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewCountdownHandler creates a countdown handler
func NewCountdownHandler(service CountdownService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *CountdownHandler {
	return &CountdownHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "countdown_handler")),
	}
}

// Routes returns the countdown routes
func (h *CountdownHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Classify)
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/batch", h.Batch)
	return r
}

// Classify handles GET /api/countdown?target=YYYY-MM-DD
func (h *CountdownHandler) Classify(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("target", "target query parameter is required"))
		return
	}

	status, err := h.service.Classify(r.Context(), target)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	render.JSON(w, r, status)
}

// Batch handles POST /api/countdown/batch
func (h *CountdownHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req contracts.CountdownBatchRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Batch(r.Context(), req.Items)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}

	render.JSON(w, r, resp)
}

func (h *CountdownHandler) mapError(err error) error {
	if errors.Is(err, services.ErrInvalidTarget) {
		return apierrors.ErrValidation("target", err.Error())
	}
	return err
}
