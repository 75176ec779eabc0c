package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/fumble-tracker/internal/application/services"
	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// ReportHandler handles HTTP requests for fumbled gains reports
type ReportHandler struct {
	service *services.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the report routes on a chi router
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/report", h.GetReport)
	r.Get("/solana", h.GetReport)
}

// GetReport handles GET /report?address=
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := strings.TrimSpace(r.URL.Query().Get("address"))

	if address == "" {
		h.respondError(w, http.StatusBadRequest, "Wallet address required")
		return
	}

	records, err := h.service.Generate(ctx, address)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidAddress) {
			h.respondError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}

		h.logger.Error("Failed to generate report",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch wallet data",
			"details": err.Error(),
		})
		return
	}

	if records == nil {
		records = []entities.ValuationRecord{}
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *ReportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ReportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
