package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/query"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// Handlers groups the command and query handlers served over HTTP
type Handlers struct {
	// Command handlers
	Convert         *command.ConvertProductTypeHandler
	CreateProduct   *command.CreateProductHandler
	DeleteProduct   *command.DeleteProductHandler
	UpdateStock     *command.UpdateStockHandler
	LinkPlatform    *command.LinkPlatformProductHandler
	CreateBundle    *command.CreateBundleHandler
	AddComponents   *command.AddBundleComponentsHandler
	RemoveComponent *command.RemoveBundleComponentHandler
	Recompute       *command.RecomputeHandler
	MergeProducts   *command.MergeProductsHandler
	UnmergeChannel  *command.UnmergeChannelHandler

	// Query handlers
	GetProduct  *query.GetProductHandler
	Conversions *query.GetAvailableConversionsHandler
}

// CatalogHandler handles HTTP requests for the catalog using CQRS pattern
type CatalogHandler struct {
	h Handlers

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
}

// NewCatalogHandler creates a catalog handler and registers its metrics on reg
func NewCatalogHandler(handlers Handlers, reg prometheus.Registerer) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_service_requests_total",
			Help: "Total number of requests to catalog service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_service_request_duration_seconds",
			Help:    "Duration of catalog service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "catalog_service_request_duration_summary",
			Help: "Summary of request durations with percentiles (client-side quantiles)",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	reg.MustRegister(requestCounter, requestLatency, requestSummary)

	return &CatalogHandler{
		h:              handlers,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		requestSummary: requestSummary,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *CatalogHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

func (h *CatalogHandler) route(router *mux.Router, method, path string, fn http.HandlerFunc) {
	router.HandleFunc(path, h.metricsMiddleware(path, fn)).Methods(method)
}

func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	// Products
	h.route(router, http.MethodPost, "/api/products", h.CreateProduct)
	h.route(router, http.MethodGet, "/api/products/{id}", h.GetProduct)
	h.route(router, http.MethodDelete, "/api/products/{id}", h.DeleteProduct)
	h.route(router, http.MethodGet, "/api/products/{id}/conversions", h.GetAvailableConversions)
	h.route(router, http.MethodPost, "/api/products/{id}/convert", h.ConvertProductType)
	h.route(router, http.MethodPatch, "/api/products/{id}/stock", h.UpdateStock)
	h.route(router, http.MethodPost, "/api/products/{id}/platform-links", h.LinkPlatformProduct)

	// Bundles
	h.route(router, http.MethodPost, "/api/bundles", h.CreateBundle)
	h.route(router, http.MethodPost, "/api/bundles/{id}/components", h.AddBundleComponents)
	h.route(router, http.MethodDelete, "/api/bundles/{id}/components/{component_id}", h.RemoveBundleComponent)
	h.route(router, http.MethodPost, "/api/bundles/{id}/recompute", h.Recompute)

	// Merges
	h.route(router, http.MethodPost, "/api/merges", h.MergeProducts)
	h.route(router, http.MethodDelete, "/api/merges/{id}/links/{link_id}", h.UnmergeChannel)
	h.route(router, http.MethodPost, "/api/merges/{id}/recompute", h.Recompute)
}

type componentRequest struct {
	ProductID      uint `json:"product_id"`
	QuantityNeeded int  `json:"quantity_needed"`
}

func toComponentInputs(in []componentRequest) []domain.ComponentInput {
	out := make([]domain.ComponentInput, len(in))
	for i, c := range in {
		out[i] = domain.ComponentInput{ProductID: c.ProductID, QuantityNeeded: c.QuantityNeeded}
	}
	return out
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		SKU          string `json:"sku"`
		Category     string `json:"category"`
		ReorderPoint int    `json:"reorder_point"`
		SupplierID   *uint  `json:"supplier_id"`
		InitialStock int    `json:"initial_stock"`
	}
	if !decode(w, r, &req) {
		return
	}

	product, err := h.h.CreateProduct.Handle(r.Context(), command.CreateProductCommand{
		Name:         req.Name,
		SKU:          req.SKU,
		Category:     req.Category,
		ReorderPoint: req.ReorderPoint,
		SupplierID:   req.SupplierID,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.h.GetProduct.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: details})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.h.DeleteProduct.Handle(r.Context(), command.DeleteProductCommand{ProductID: id}); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// GetAvailableConversions handles GET /api/products/{id}/conversions
func (h *CatalogHandler) GetAvailableConversions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.h.Conversions.Handle(r.Context(), query.GetAvailableConversionsQuery{ProductID: id})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: out})
}

// ConvertProductType handles POST /api/products/{id}/convert
func (h *CatalogHandler) ConvertProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.h.Convert.Handle(r.Context(), command.ConvertProductTypeCommand{
		ProductID:      id,
		TargetCategory: req.Category,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product type converted successfully",
		Data:    result,
	})
}

// UpdateStock handles PATCH /api/products/{id}/stock
func (h *CatalogHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Total     *int `json:"total"`
		Available *int `json:"available"`
		InOrder   *int `json:"in_order"`
		Awaiting  *int `json:"awaiting"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.h.UpdateStock.Handle(r.Context(), command.UpdateStockCommand{
		ProductID: id,
		Total:     req.Total,
		Available: req.Available,
		InOrder:   req.InOrder,
		Awaiting:  req.Awaiting,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock updated successfully",
		Data:    result,
	})
}

// LinkPlatformProduct handles POST /api/products/{id}/platform-links
func (h *CatalogHandler) LinkPlatformProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Platform    string `json:"platform"`
		PlatformSKU string `json:"platform_sku"`
		Inactive    bool   `json:"inactive"`
	}
	if !decode(w, r, &req) {
		return
	}

	link, err := h.h.LinkPlatform.Handle(r.Context(), command.LinkPlatformProductCommand{
		ProductID:   id,
		Platform:    req.Platform,
		PlatformSKU: req.PlatformSKU,
		Inactive:    req.Inactive,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Channel listing created successfully",
		Data:    link,
	})
}

// CreateBundle handles POST /api/bundles
func (h *CatalogHandler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string             `json:"name"`
		SKU        string             `json:"sku"`
		Components []componentRequest `json:"components"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.h.CreateBundle.Handle(r.Context(), command.CreateBundleCommand{
		Name:       req.Name,
		SKU:        req.SKU,
		Components: toComponentInputs(req.Components),
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Bundle created successfully",
		Data:    result,
	})
}

// AddBundleComponents handles POST /api/bundles/{id}/components
func (h *CatalogHandler) AddBundleComponents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Components []componentRequest `json:"components"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.h.AddComponents.Handle(r.Context(), command.AddBundleComponentsCommand{
		BundleID:   id,
		Components: toComponentInputs(req.Components),
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Components added successfully",
		Data:    result,
	})
}

// RemoveBundleComponent handles DELETE /api/bundles/{id}/components/{component_id}
func (h *CatalogHandler) RemoveBundleComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	componentID, ok := pathID(w, r, "component_id")
	if !ok {
		return
	}

	result, err := h.h.RemoveComponent.Handle(r.Context(), command.RemoveBundleComponentCommand{
		BundleID:    id,
		ComponentID: componentID,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Component removed successfully",
		Data:    result,
	})
}

// Recompute handles POST /api/bundles/{id}/recompute and /api/merges/{id}/recompute
func (h *CatalogHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.h.Recompute.Handle(r.Context(), command.RecomputeCommand{ProductID: id})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// MergeProducts handles POST /api/merges
func (h *CatalogHandler) MergeProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []uint `json:"product_ids"`
		Name       string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	result, err := h.h.MergeProducts.Handle(r.Context(), command.MergeProductsCommand{
		ProductIDs: req.ProductIDs,
		Name:       req.Name,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Products merged successfully",
		Data:    result,
	})
}

// UnmergeChannel handles DELETE /api/merges/{id}/links/{link_id}
func (h *CatalogHandler) UnmergeChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	linkID, ok := pathID(w, r, "link_id")
	if !ok {
		return
	}

	result, err := h.h.UnmergeChannel.Handle(r.Context(), command.UnmergeChannelCommand{
		MergedID:          id,
		PlatformProductID: linkID,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Channel unmerged successfully",
		Data:    result,
	})
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterHealthCheck registers the health check endpoint. db may be nil when
// the service runs without a database.
func RegisterHealthCheck(router *mux.Router, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, Response{
					Success: false,
					Error:   "Database unavailable",
				})
				return
			}
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Catalog service is healthy",
		})
	}).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		respondError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondDomainError maps the catalog error taxonomy onto HTTP statuses
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case domain.IsProductNotFound(err):
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case domain.IsRuleViolation(err):
		respondJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
			Errors:  domain.Reasons(err),
		})
	default:
		logger.Error(ctx).Err(err).Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}
