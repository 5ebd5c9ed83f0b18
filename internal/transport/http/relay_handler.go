package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "nsecli/internal/errors"
	custommw "nsecli/internal/middleware"
	"nsecli/internal/services"
)

// maxUploadBytes caps inbound CSV payloads, raw body and multipart
// alike. Oversized payloads are rejected, never truncated.
const maxUploadBytes = 10 << 20

// RelayHandler handles the CSV relay endpoints. Every response uses
// the relay envelope: success flag plus message, hosted url, or data
// rows.
type RelayHandler struct {
	service      RelayServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRelayHandler creates a new relay handler
func NewRelayHandler(service RelayServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RelayHandler {
	return &RelayHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "relay_handler")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes registers the relay routes at the server root.
func (h *RelayHandler) RegisterRoutes(r chi.Router) {
	r.Post("/update-data", h.UpdateData)
	r.Post("/update-data-file", h.UpdateDataFile)
	r.Get("/get-data", h.GetData)
}

// UpdateData handles POST /update-data. The body is the raw CSV text.
func (h *RelayHandler) UpdateData(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.logger.WarnContext(r.Context(), "csv payload too large",
				slog.Int64("limit_bytes", maxErr.Limit),
				slog.String("request_id", reqID),
			)
			h.relayError(w, r, http.StatusRequestEntityTooLarge, "CSV payload exceeds the upload size limit")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to read request body",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.relayError(w, r, http.StatusBadRequest, "Could not read request body")
		return
	}

	h.forward(w, r, body)
}

// UpdateDataFile handles POST /update-data-file. The CSV arrives as
// the multipart form field "file".
func (h *RelayHandler) UpdateDataFile(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.WarnContext(r.Context(), "invalid multipart form",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.relayError(w, r, http.StatusBadRequest, "Request is not a valid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.relayError(w, r, http.StatusBadRequest, "CSV file is required in form field 'file'")
		return
	}
	defer file.Close()

	// Read one byte past the cap so an oversized file is detected
	// instead of silently cut off at the limit.
	body, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read uploaded file",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.relayError(w, r, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	if len(body) > maxUploadBytes {
		h.logger.WarnContext(r.Context(), "csv file too large",
			slog.String("filename", header.Filename),
			slog.String("request_id", reqID),
		)
		h.relayError(w, r, http.StatusRequestEntityTooLarge, "CSV file exceeds the upload size limit")
		return
	}

	h.logger.InfoContext(r.Context(), "received csv file upload",
		slog.String("filename", header.Filename),
		slog.Int("size_bytes", len(body)),
		slog.String("request_id", reqID),
	)

	h.forward(w, r, body)
}

// forward pushes validated CSV bytes through the relay service and
// writes the envelope response.
func (h *RelayHandler) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	reqID := custommw.GetReqID(r.Context())

	url, err := h.service.UpdateData(r.Context(), body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "csv relay failed",
			slog.String("error", err.Error()),
			slog.Int("size_bytes", len(body)),
			slog.String("request_id", reqID),
		)

		switch {
		case errors.Is(err, services.ErrEmptyPayload):
			h.relayError(w, r, http.StatusBadRequest, "CSV payload is empty")
		case errors.Is(err, services.ErrInvalidCSV):
			h.relayError(w, r, http.StatusBadRequest, "Payload is not valid CSV")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			h.relayError(w, r, http.StatusBadGateway, "Hosting service is unavailable")
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"message": "Data updated successfully",
		"url":     url,
	})
}

// GetData handles GET /get-data.
func (h *RelayHandler) GetData(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetReqID(r.Context())

	rows, err := h.service.GetData(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "hosted data fetch failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrUpstreamUnavailable) {
			h.relayError(w, r, http.StatusBadGateway, "Hosting service is unavailable")
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if rows == nil {
		rows = []map[string]interface{}{}
	}
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"data":    rows,
	})
}

// relayError writes a failure envelope with the given status.
func (h *RelayHandler) relayError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
