// Package handler implements the JSON HTTP surface. Success and error
// bodies share one envelope: a top-level "detail" field carrying either
// a message string or a payload object.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

// detailResponse is the standard response envelope.
type detailResponse struct {
	Detail any `json:"detail"`
}

// writeJSON writes v as-is, for the few responses that carry fields
// beside the detail envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondJSON writes v wrapped in the detail envelope.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(detailResponse{Detail: v})
}

// respondMessage writes a plain message in the detail envelope.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, message)
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("handler.decode", "Invalid request body")
	}
	return nil
}

// parseBodyUUID parses a UUID string from a request body field.
func parseBodyUUID(s, name string) (pgtype.UUID, error) {
	id, err := repository.ParseUUID(s)
	if err != nil {
		return pgtype.UUID{}, domain.Invalid("handler.body", "Invalid "+name)
	}
	return id, nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (pgtype.UUID, error) {
	id, err := repository.ParseUUID(r.PathValue(name))
	if err != nil {
		return pgtype.UUID{}, domain.Invalid("handler.path", "Invalid "+name)
	}
	return id, nil
}

// uuidString renders a pgtype.UUID for the wire.
func uuidString(id pgtype.UUID) string {
	return repository.ToUUID(id).String()
}

// timeString renders a timestamp for the wire.
func timeString(ts pgtype.Timestamptz) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.UTC().Format(time.RFC3339)
}
