package handler

import (
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
)

// AddressHandler handles delivery address management.
type AddressHandler struct {
	addresses domain.AddressService
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addresses domain.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type addressPayload struct {
	AddressID  string `json:"address_id"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func addressToPayload(a domain.Address) addressPayload {
	return addressPayload{
		AddressID:  uuidString(a.ID),
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// Create handles POST /address
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	address, err := h.addresses.CreateAddress(r.Context(), domain.AddressParams{
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, addressToPayload(*address))
}

// List handles GET /address
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.ListAddresses(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	payload := make([]addressPayload, 0, len(addresses))
	for _, a := range addresses {
		payload = append(payload, addressToPayload(a))
	}

	respondJSON(w, http.StatusOK, payload)
}
