package handler

import (
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/telemetry"
)

// CartHandler handles cart mutation and checkout validation.
type CartHandler struct {
	cart     domain.CartService
	checkout domain.CheckoutService
	metrics  *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart domain.CartService, checkout domain.CheckoutService, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout, metrics: metrics}
}

type cartLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartLines(lines))
}

// Add handles POST /cart/item
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	itemID, err := parseBodyUUID(req.ItemID, "item_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if _, err := h.cart.AddItem(r.Context(), itemID, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordCartAdd()
	respondMessage(w, http.StatusOK, "Item added to cart")
}

// Update handles POST /cart/update
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	itemID, err := parseBodyUUID(req.ItemID, "item_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if _, err := h.cart.SetQuantity(r.Context(), itemID, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordCartUpdate()
	respondMessage(w, http.StatusOK, "Cart updated")
}

// Check handles GET /cart/subcheckout. Lines that no longer satisfy
// stock are purged and reported as a conflict; an untouched cart is
// ready for checkout.
func (h *CartHandler) Check(w http.ResponseWriter, r *http.Request) {
	removed, err := h.checkout.Validate(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordCheckoutValidation(len(removed) > 0)

	if len(removed) > 0 {
		respondJSON(w, http.StatusConflict, cartLines(removed))
		return
	}

	respondMessage(w, http.StatusOK, "Items in stock, proceed to checkout")
}
