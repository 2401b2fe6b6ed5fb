package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/telemetry"
)

// maxMediaUpload bounds the multipart form memory for media uploads.
const maxMediaUpload = 10 << 20

// ItemHandler handles item listings, ratings, stock and media.
type ItemHandler struct {
	items   domain.ItemService
	stock   domain.StockService
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(items domain.ItemService, stock domain.StockService, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemHandler{items: items, stock: stock, metrics: metrics, logger: logger}
}

type itemRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	PriceCents int32  `json:"price_cents"`
}

type itemPayload struct {
	ItemID     string   `json:"item_id"`
	UserID     string   `json:"user_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	PriceCents int32    `json:"price_cents"`
	Rating     *float64 `json:"rating"`
}

// itemDetailResponse is the one envelope that carries a field beside
// detail: sameuser tells the client whether the viewer owns the item.
type itemDetailResponse struct {
	Detail   itemPayload `json:"detail"`
	SameUser bool        `json:"sameuser"`
}

// Create handles POST /item/create
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	item, err := h.items.Create(r.Context(), domain.ItemParams{
		Title:      req.Title,
		Content:    req.Content,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordItemCreated()
	respondJSON(w, http.StatusCreated, itemPayload{
		ItemID:     uuidString(item.ID),
		UserID:     uuidString(item.UserID),
		Title:      item.Title,
		Content:    item.Content,
		PriceCents: item.PriceCents,
	})
}

// Get handles GET /item/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	detail, err := h.items.Get(r.Context(), itemID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordItemView()
	writeJSON(w, http.StatusOK, itemDetailResponse{
		Detail: itemPayload{
			ItemID:     uuidString(detail.Item.ID),
			UserID:     uuidString(detail.Item.UserID),
			Title:      detail.Item.Title,
			Content:    detail.Item.Content,
			PriceCents: detail.Item.PriceCents,
			Rating:     detail.Rating,
		},
		SameUser: detail.SameUser,
	})
}

// Update handles PUT /item/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.items.Update(r.Context(), itemID, domain.ItemParams{
		Title:      req.Title,
		Content:    req.Content,
		PriceCents: req.PriceCents,
	}); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Item updated")
}

// Delete handles DELETE /item/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.items.Delete(r.Context(), itemID); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Item deleted")
}

type rateRequest struct {
	ItemID  string `json:"item_id"`
	Rating  int32  `json:"rating"`
	Content string `json:"content"`
}

// Rate handles POST /item/rate
func (h *ItemHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	itemID, err := parseBodyUUID(req.ItemID, "item_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.items.Rate(r.Context(), domain.RateParams{
		ItemID:  itemID,
		Rating:  req.Rating,
		Content: req.Content,
	}); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordRating()
	respondMessage(w, http.StatusCreated, "Rating recorded")
}

type stockRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

type stockPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
	Tracked  bool   `json:"tracked"`
}

// EditStock handles POST /item/stock
func (h *ItemHandler) EditStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	itemID, err := parseBodyUUID(req.ItemID, "item_id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.stock.SetQuantity(r.Context(), itemID, req.Quantity); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	h.metrics.RecordStockAdjustment()
	respondMessage(w, http.StatusOK, "Stock updated")
}

// GetStock handles GET /item/{id}/stock
func (h *ItemHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	quantity, tracked, err := h.stock.GetQuantity(r.Context(), itemID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, stockPayload{
		ItemID:   uuidString(itemID),
		Quantity: quantity,
		Tracked:  tracked,
	})
}

type suggestionPayload struct {
	ItemID string `json:"item_id"`
	Title  string `json:"title"`
}

// SearchSuggestions handles GET /item/search_suggestions?q=...&limit=...
func (h *ItemHandler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			ErrorResponse(w, r, domain.Invalid("item.suggestions", "Invalid limit"))
			return
		}
		limit = n
	}

	suggestions, err := h.items.SearchSuggestions(r.Context(), query, limit)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	payload := make([]suggestionPayload, 0, len(suggestions))
	for _, s := range suggestions {
		payload = append(payload, suggestionPayload{
			ItemID: uuidString(s.ItemID),
			Title:  s.Title,
		})
	}

	respondJSON(w, http.StatusOK, payload)
}

type mediaPayload struct {
	MediaID     string `json:"media_id"`
	ItemID      string `json:"item_id"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// UploadMedia handles POST /item/{id}/media (multipart, field "file")
func (h *ItemHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxMediaUpload); err != nil {
		ErrorResponse(w, r, domain.Invalid("item.media", "Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ErrorResponse(w, r, domain.Invalid("item.media", "Missing file"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	media, err := h.items.AttachMedia(r.Context(), itemID, header.Filename, contentType, file)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, mediaPayload{
		MediaID:     uuidString(media.ID),
		ItemID:      uuidString(media.ItemID),
		ContentType: media.ContentType,
		URL:         media.URL,
	})
}

// GetMediaURL handles GET /media/{id}
func (h *ItemHandler) GetMediaURL(w http.ResponseWriter, r *http.Request) {
	mediaID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	url, err := h.items.MediaURL(r.Context(), mediaID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
