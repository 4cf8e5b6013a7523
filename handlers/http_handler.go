package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/giygas/pharmacy-api/validation"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store         interfaces.PharmacyStore
	validator     interfaces.InputValidator
	healthChecker interfaces.HealthChecker
	startTime     time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.PharmacyStore, validator interfaces.InputValidator, healthChecker interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		store:         store,
		validator:     validator,
		healthChecker: healthChecker,
		startTime:     time.Now(),
	}
}

// RegisterMedicine adds stock, merging into an existing record of the same name
func (h *HTTPHandlerImpl) RegisterMedicine(w http.ResponseWriter, r *http.Request) {
	var req MedicineRequest
	if status, err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, status, err.Error())
		return
	}

	m := inventory.Medicine{
		Name:       validation.Normalize(req.Name),
		Quantity:   req.Quantity,
		Price:      req.Price,
		ExpiryDate: validation.Normalize(req.ExpiryDate),
		Shelf:      validation.Normalize(req.Shelf),
	}
	if err := h.validator.ValidateMedicine(m); err != nil {
		logging.Warn("Rejected medicine registration", "name", req.Name, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.store.RegisterMedicine(m)
	if err != nil {
		logging.Warn("Rejected medicine registration", "name", m.Name, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusCreated, stored)
}

// ListStock returns every record in ascending name order
func (h *HTTPHandlerImpl) ListStock(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.store.ListStock())
}

// FindMedicine looks up one record by exact name
func (h *HTTPHandlerImpl) FindMedicine(w http.ResponseWriter, r *http.Request) {
	name := validation.Normalize(nameParam(r))
	if err := h.validator.ValidateName(name); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, ok := h.store.FindMedicine(name)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Medicine not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, m)
}

// UpdateMedicine overwrites a single field of an existing record
func (h *HTTPHandlerImpl) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	name := validation.Normalize(nameParam(r))
	if err := h.validator.ValidateName(name); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateRequest
	if status, err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, status, err.Error())
		return
	}

	raw, err := rawValue(req.Value)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	field, value, err := h.validator.ParseUpdate(req.Field, raw)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.store.UpdateMedicine(name, field, value)
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Medicine not found")
	case err != nil:
		RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		RespondWithJSON(w, http.StatusOK, m)
	}
}

// PlaceOrder queues a customer order. The medicine does not need to exist.
func (h *HTTPHandlerImpl) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if status, err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, status, err.Error())
		return
	}

	name := validation.Normalize(req.Name)
	if err := h.validator.ValidateOrder(name, req.Quantity, req.Price); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusCreated, h.store.PlaceOrder(name, req.Quantity, req.Price))
}

// ListOrders returns the pending orders oldest first
func (h *HTTPHandlerImpl) ListOrders(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.store.PendingOrders())
}

// ProcessOrder processes the head of the queue. A rejected order or an empty
// queue is a normal outcome, not an HTTP error.
func (h *HTTPHandlerImpl) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.store.ProcessNextOrder())
}

// Save forces the inventory to be written to storage
func (h *HTTPHandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Save(); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to save inventory")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"status": "saved",
		"stats":  h.store.Stats(),
	})
}

// HealthCheck returns service health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()
	uptime := time.Since(h.startTime)

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Data:          data,
	})
}
