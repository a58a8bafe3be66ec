package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"dlex-orders/internal/apperr"
	"dlex-orders/internal/config"
	"dlex-orders/internal/diagnostics"
	"dlex-orders/internal/model"
	"dlex-orders/internal/service"
)

// Endpoint names, also used as metric labels.
const (
	EndpointGetOrder  = "getorder"
	EndpointAddOrder  = "addorder"
	EndpointOperation = "operation"
	EndpointDelete    = "delete"
)

type OrderHandler struct {
	service  *service.OrderService
	messages config.Messages
	metrics  *diagnostics.Metrics
	logger   *log.Logger
}

func NewOrderHandler(service *service.OrderService, messages config.Messages, metrics *diagnostics.Metrics, logger *log.Logger) *OrderHandler {
	return &OrderHandler{service: service, messages: messages, metrics: metrics, logger: logger}
}

// GetOrder lists every order. An empty list is still a success, with its own message.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.fail(w, r, EndpointGetOrder, start, h.messages.ListFailed, err)
		return
	}

	env := model.NewEnvelope(model.ResultOK, h.messages.ListOK)
	if len(orders) == 0 {
		env.Message = h.messages.ListEmpty
	}
	// data is always present on success, even when empty.
	h.respond(w, EndpointGetOrder, start, listEnvelope{Envelope: env, Data: orders})
}

func (h *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	var req model.Order
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, EndpointAddOrder, start, h.messages.AddFailed, err)
		return
	}

	row, err := h.service.AddOrder(r.Context(), req)
	if err != nil {
		h.fail(w, r, EndpointAddOrder, start, h.messages.AddFailed, err)
		return
	}

	h.logger.Printf("msg=order_added request_id=%s order_name=%q datetime=%q", RequestID(r.Context()), row.OrderName, row.Datetime)
	h.respond(w, EndpointAddOrder, start, model.NewEnvelope(model.ResultOK, h.messages.AddOK))
}

func (h *OrderHandler) Operation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	var req []model.OperationOrder
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, EndpointOperation, start, h.messages.OperationFailed, err)
		return
	}

	if err := h.service.Operation(r.Context(), req); err != nil {
		h.fail(w, r, EndpointOperation, start, h.messages.OperationFailed, err)
		return
	}

	h.respond(w, EndpointOperation, start, model.NewEnvelope(model.ResultOK, h.messages.OperationOK))
}

// DeleteOrders removes every order.
func (h *OrderHandler) DeleteOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	deleted, err := h.service.DeleteOrders(r.Context())
	if err != nil {
		h.fail(w, r, EndpointDelete, start, h.messages.DeleteFailed, err)
		return
	}

	h.logger.Printf("msg=orders_deleted request_id=%s count=%d", RequestID(r.Context()), deleted)
	h.respond(w, EndpointDelete, start, model.NewEnvelope(model.ResultOK, h.messages.DeleteOK))
}

// listEnvelope forces "data" into the getorder body even when it is empty.
type listEnvelope struct {
	model.Envelope
	Data []model.OrderRow `json:"data"`
}

func (h *OrderHandler) respond(w http.ResponseWriter, endpoint string, start time.Time, payload any) {
	h.metrics.ObserveRequest(endpoint, strconv.Itoa(model.ResultOK), time.Since(start))
	writeJSON(w, http.StatusOK, payload)
}

// fail reports an application failure the dlex way: HTTP 200 with result -1
// and the endpoint's configured message.
func (h *OrderHandler) fail(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, message string, err error) {
	requestID := RequestID(r.Context())

	switch {
	case errors.Is(err, apperr.ErrDeadlock):
		h.metrics.IncDeadlock()
		h.logger.Printf("msg=deadlock_detected request_id=%s endpoint=%s err=%q", requestID, endpoint, err)
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound):
		h.logger.Printf("msg=request_rejected request_id=%s endpoint=%s err=%q", requestID, endpoint, err)
	default:
		h.logger.Printf("msg=request_failed request_id=%s endpoint=%s err=%q", requestID, endpoint, err)
	}

	h.metrics.ObserveRequest(endpoint, strconv.Itoa(model.ResultError), time.Since(start))
	writeJSON(w, http.StatusOK, model.NewEnvelope(model.ResultError, message))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, apperr.ErrValidation)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
