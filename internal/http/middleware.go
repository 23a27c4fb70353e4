package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raseedhq/raseed/internal/identity"
	"github.com/raseedhq/raseed/internal/token"
)

// RequireAuth enforces the Authorization: Bearer contract and parks
// the verified identity on the request context. Failure bodies use the
// same error envelope as the handlers.
func RequireAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Authorization header missing")
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "Invalid token")
				return
			}

			id, err := issuer.Verify(raw)
			if err != nil {
				message := "Invalid token"
				if errors.Is(err, token.ErrExpired) {
					message = "Token expired"
				}

				unauthorized(w, message)

				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "error", Message: message}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
