package handler

import (
	"errors"
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/telemetry"
)

// OrderHandler handles order creation, listing and dispatch.
type OrderHandler struct {
	orders  domain.OrderService
	metrics *telemetry.BusinessMetrics
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders domain.OrderService, metrics *telemetry.BusinessMetrics) *OrderHandler {
	return &OrderHandler{orders: orders, metrics: metrics}
}

type createOrderRequest struct {
	AddressID string `json:"address_id"`
}

type orderConfirmationPayload struct {
	OrderID   string `json:"order_id"`
	OrderDate string `json:"order_date"`
}

// Create handles POST /order/create
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	addressID, err := parseBodyUUID(req.AddressID, "address_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	confirmation, err := h.orders.Create(r.Context(), addressID)
	if err != nil {
		var conflict *domain.StockConflictError
		if errors.As(err, &conflict) {
			h.metrics.RecordStockConflict()
		}
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordOrderCreated(confirmation.LineCount)
	respondJSON(w, http.StatusCreated, orderConfirmationPayload{
		OrderID:   uuidString(confirmation.OrderID),
		OrderDate: timeString(confirmation.OrderDate),
	})
}

type orderPayload struct {
	OrderID   string `json:"order_id"`
	AddressID string `json:"address_id"`
	OrderDate string `json:"order_date"`
}

// List handles GET /order
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	payload := make([]orderPayload, 0, len(orders))
	for _, o := range orders {
		payload = append(payload, orderPayload{
			OrderID:   uuidString(o.ID),
			AddressID: uuidString(o.AddressID),
			OrderDate: timeString(o.CreatedAt),
		})
	}

	respondJSON(w, http.StatusOK, payload)
}

type orderLinePayload struct {
	ItemID     string `json:"item_id"`
	Quantity   int32  `json:"quantity"`
	Dispatched bool   `json:"dispatched"`
}

type orderDetailPayload struct {
	OrderID   string             `json:"order_id"`
	AddressID string             `json:"address_id"`
	OrderDate string             `json:"order_date"`
	Lines     []orderLinePayload `json:"lines"`
}

// Get handles GET /order/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	detail, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	lines := make([]orderLinePayload, 0, len(detail.Lines))
	for _, l := range detail.Lines {
		lines = append(lines, orderLinePayload{
			ItemID:     uuidString(l.ItemID),
			Quantity:   l.Quantity,
			Dispatched: l.Dispatched,
		})
	}

	respondJSON(w, http.StatusOK, orderDetailPayload{
		OrderID:   uuidString(detail.Order.ID),
		AddressID: uuidString(detail.Order.AddressID),
		OrderDate: timeString(detail.Order.CreatedAt),
		Lines:     lines,
	})
}

type dispatchRequest struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id"`
}

// Dispatch handles POST /order/dispatch. The item's owner marks a sold
// line as dispatched; the flag flips exactly once.
func (h *OrderHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := parseBodyUUID(req.OrderID, "order_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	itemID, err := parseBodyUUID(req.ItemID, "item_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.orders.MarkDispatched(r.Context(), orderID, itemID); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordDispatch()
	respondMessage(w, http.StatusOK, "Order line dispatched")
}
