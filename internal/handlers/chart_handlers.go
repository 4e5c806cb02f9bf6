package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"volcano-platform/internal/models"
	"volcano-platform/internal/services"
	"volcano-platform/pkg/logging"
	"volcano-platform/pkg/metrics"
)

// ChartHandler handles the chart API endpoints
type ChartHandler struct {
	chartService *services.ChartService
	logger       *logging.StructuredLogger
	metrics      *metrics.Collector
}

// NewChartHandler creates a new chart handler
func NewChartHandler(
	chartService *services.ChartService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ChartHandler {
	return &ChartHandler{
		chartService: chartService,
		logger:       logger,
		metrics:      metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// VolcanoListResponse is the name dropdown payload
type VolcanoListResponse struct {
	Volcanoes []string `json:"volcanoes"`
	Total     int      `json:"total"`
}

// EruptionDatesResponse is the date dropdown payload; "all" is always the
// first option.
type EruptionDatesResponse struct {
	Volcano string   `json:"volcano"`
	Dates   []string `json:"dates"`
}

// GetCharts handles GET /api/charts
//
// Query parameters mirror the UI inputs: volcano (or "start" for no
// selection), date (a "<year>-..." selector or "all"), period, and
// overlay. Bad period or overlay values degrade to defaults; missing or
// unmatched data produces empty series, never an error status.
func (h *ChartHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/charts").Observe(duration.Seconds())
	}()

	query := r.URL.Query()

	volcano := query.Get("volcano")
	if volcano == "" {
		volcano = services.VolcanoNone
	}

	dateSelector := query.Get("date")
	if dateSelector == "" {
		dateSelector = "all"
	}

	period := models.ParsePeriod(query.Get("period"))

	overlay := true
	if v, err := strconv.ParseBool(query.Get("overlay")); err == nil {
		overlay = v
	}

	data := h.chartService.BuildCharts(ctx, volcano, dateSelector, period, overlay)

	h.metrics.RecordAPIRequest("/api/charts", "GET", "200")
	h.sendJSON(w, data, http.StatusOK)
}

// ListVolcanoes handles GET /api/volcanoes
func (h *ChartHandler) ListVolcanoes(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/volcanoes").Observe(duration.Seconds())
	}()

	names := h.chartService.ListVolcanoes()

	response := VolcanoListResponse{
		Volcanoes: names,
		Total:     len(names),
	}

	h.metrics.RecordAPIRequest("/api/volcanoes", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetEruptionDates handles GET /api/volcanoes/{name}/eruptions
//
// An unknown volcano yields just the "all" option, not a 404: the UI
// keeps its dropdown usable either way.
func (h *ChartHandler) GetEruptionDates(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/volcanoes/eruptions").Observe(duration.Seconds())
	}()

	name := mux.Vars(r)["name"]

	dates := append([]string{"all"}, h.chartService.EruptionDates(name)...)

	response := EruptionDatesResponse{
		Volcano: name,
		Dates:   dates,
	}

	h.metrics.RecordAPIRequest("/api/volcanoes/eruptions", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ChartHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *ChartHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *ChartHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all chart API routes
func (h *ChartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/charts", h.GetCharts).Methods("GET")
	router.HandleFunc("/api/volcanoes", h.ListVolcanoes).Methods("GET")
	router.HandleFunc("/api/volcanoes/{name}/eruptions", h.GetEruptionDates).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
