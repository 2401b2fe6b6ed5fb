package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/middleware"
)

// cartPayload carries cart lines in conflict and cart responses.
type cartPayload struct {
	Items []cartLinePayload `json:"items"`
}

type cartLinePayload struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

func cartLines(lines []domain.CartLine) cartPayload {
	items := make([]cartLinePayload, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartLinePayload{
			ItemID:   uuidString(l.ItemID),
			Quantity: l.Quantity,
		})
	}
	return cartPayload{Items: items}
}

// ErrorResponse writes a domain error as JSON and logs server errors.
// A StockConflictError responds 409 with the conflicting cart lines so
// the client can show the user what blocked checkout.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *domain.StockConflictError
	if errors.As(err, &conflict) {
		respondJSON(w, http.StatusConflict, cartLines(conflict.Lines))
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"error", err.Error(),
			"code", code,
			"op", domain.ErrorOp(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(detailResponse{Detail: domain.ErrorMessage(err)})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	return middleware.ErrorCodeToHTTPStatus(code)
}
