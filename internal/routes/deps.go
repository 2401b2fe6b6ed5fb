// Package routes binds the HTTP surface: route registration and the
// dependency structs main hands to it.
package routes

import (
	"github.com/sellorama/sellorama/internal/handler"
	"github.com/sellorama/sellorama/internal/router"
)

// Deps contains the handlers behind the API routes.
type Deps struct {
	UserHandler    *handler.UserHandler
	AddressHandler *handler.AddressHandler
	ItemHandler    *handler.ItemHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler

	// StrictLimiter is the per-IP rate limit tier applied to the
	// credential endpoints.
	StrictLimiter router.Middleware
}
