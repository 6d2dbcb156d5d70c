package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "herdbook/internal/errors"
	"herdbook/internal/exporter"
	"herdbook/internal/middleware"
	"herdbook/internal/services"
	"herdbook/pkg/contracts"
)

// DeliverFile selects server side storage instead of a download
const DeliverFile = "file"

// ExportHandler handles POST /api/export
type ExportHandler struct {
	service      ExportService
	validator    *middleware.Validator
	fileSink     exporter.ArtifactSink
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewExportHandler creates an export handler. fileSink may be nil, which
// disables ?deliver=file.
func NewExportHandler(service ExportService, validator *middleware.Validator, fileSink exporter.ArtifactSink, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		fileSink:     fileSink,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "export_handler")),
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "application/json"))
	r.Post("/", h.Export)
	return r
}

// Export renders the posted records and streams them back as a download.
// An empty record list answers 204 No Content.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req contracts.ExportRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	in := services.ExportInput{
		Filename: req.Filename,
		Format:   req.Format,
		Columns:  exporter.Columns(req.Columns),
		Records:  req.Records,
	}

	if r.URL.Query().Get("deliver") == DeliverFile {
		h.store(w, r, in)
		return
	}

	result, err := h.service.Export(r.Context(), in, exporter.NewHTTPSink(w))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	if !result.Written {
		w.WriteHeader(http.StatusNoContent)
	}
}

// store writes the artifact to the exports directory and returns a receipt
func (h *ExportHandler) store(w http.ResponseWriter, r *http.Request, in services.ExportInput) {
	if h.fileSink == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("deliver", "server side storage is disabled"))
		return
	}

	result, err := h.service.Export(r.Context(), in, h.fileSink)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	if !result.Written {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.logger.InfoContext(r.Context(), "export stored",
		slog.String("name", result.Name),
		slog.String("user_id", middleware.GetUserID(r.Context())))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, contracts.ExportReceipt{
		Name:   result.Name,
		Format: string(result.Format),
		Rows:   result.Rows,
		Bytes:  result.Bytes,
	})
}

func (h *ExportHandler) mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidFormat):
		return apierrors.ErrValidation("format", err.Error())
	case errors.Is(err, services.ErrTooManyRecords):
		return apierrors.ErrValidation("records", err.Error())
	default:
		return apierrors.ExportError(err)
	}
}
