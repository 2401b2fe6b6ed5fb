package routes

import (
	"github.com/sellorama/sellorama/internal/middleware"
	"github.com/sellorama/sellorama/internal/router"
)

// Register registers all API routes. Credential endpoints get the
// strict rate limit tier; everything touching a user's own data goes
// through RequireUser.
func Register(r *router.Router, deps Deps) {
	// Credential endpoints (strict rate limit, no session required)
	auth := r
	if deps.StrictLimiter != nil {
		auth = r.Group(deps.StrictLimiter)
	}
	auth.Post("/user/signup", deps.UserHandler.Signup)
	auth.Post("/user/login", deps.UserHandler.Login)

	// Public reads
	r.Get("/user/{id}", deps.UserHandler.Get)
	r.Get("/item/{id}", deps.ItemHandler.Get)
	r.Get("/item/{id}/stock", deps.ItemHandler.GetStock)
	r.Get("/item/search_suggestions", deps.ItemHandler.SearchSuggestions)
	r.Get("/media/{id}", deps.ItemHandler.GetMediaURL)

	// Session-gated routes
	session := r.Group(middleware.RequireUser)
	session.Post("/user/logout", deps.UserHandler.Logout)

	session.Post("/address", deps.AddressHandler.Create)
	session.Get("/address", deps.AddressHandler.List)

	session.Post("/item/create", deps.ItemHandler.Create)
	session.Put("/item/{id}", deps.ItemHandler.Update)
	session.Delete("/item/{id}", deps.ItemHandler.Delete)
	session.Post("/item/rate", deps.ItemHandler.Rate)
	session.Post("/item/stock", deps.ItemHandler.EditStock)
	session.Post("/item/{id}/media", deps.ItemHandler.UploadMedia)

	session.Get("/cart", deps.CartHandler.View)
	session.Post("/cart/item", deps.CartHandler.Add)
	session.Post("/cart/update", deps.CartHandler.Update)
	session.Get("/cart/subcheckout", deps.CartHandler.Check)

	session.Post("/order/create", deps.OrderHandler.Create)
	session.Get("/order", deps.OrderHandler.List)
	session.Get("/order/{id}", deps.OrderHandler.Get)
	session.Post("/order/dispatch", deps.OrderHandler.Dispatch)
}
