package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raseedhq/raseed/internal/http/assistant"
	"github.com/raseedhq/raseed/internal/http/auth"
	"github.com/raseedhq/raseed/internal/http/receipt"
)

// New wires the backend's routes. Paths are flat, matching what the
// clients already call; everything except the sign-in exchange sits
// behind bearer auth.
func New(
	requireAuth func(http.Handler) http.Handler,
	authV1 *auth.Handler,
	receiptsV1 *receipt.Handler,
	assistantV1 *assistant.Handler,
	frontendURL string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Post("/auth/google", authV1.SignIn)

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/auth/me", authV1.Me)
		receiptsV1.Routes(r)
		assistantV1.Routes(r)
	})

	return router
}
