package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raseedhq/raseed/internal/identity"
	"github.com/raseedhq/raseed/internal/token"
)

// Handler exchanges Google credentials for access tokens and reports
// who a token belongs to.
type Handler struct {
	verifier identity.Verifier
	issuer   *token.Issuer
}

func NewHandler(verifier identity.Verifier, issuer *token.Issuer) *Handler {
	return &Handler{verifier: verifier, issuer: issuer}
}

type signInRequest struct {
	Credential string `json:"credential"`
}

type userResponse struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

type signInResponse struct {
	Status string       `json:"status"`
	Token  string       `json:"token"`
	User   userResponse `json:"user"`
}

// SignIn verifies a Google credential and answers with a fresh access
// token and the profile it belongs to.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Credential) == "" {
		respondError(w, http.StatusBadRequest, "credential is required")
		return
	}

	id, err := h.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		slog.Warn("rejected sign-in credential", "error", err)
		respondError(w, http.StatusUnauthorized, "Invalid Google credential")

		return
	}

	accessToken, err := h.issuer.Issue(id)
	if err != nil {
		slog.Error("failed to issue token", "sub", id.Sub, "error", err)
		respondError(w, http.StatusInternalServerError, "could not issue token")

		return
	}

	respondJSON(w, http.StatusOK, signInResponse{
		Status: "success",
		Token:  accessToken,
		User:   toUserResponse(id),
	})
}

type meResponse struct {
	Status string       `json:"status"`
	User   userResponse `json:"user"`
}

// Me returns the identity behind the presented token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	respondJSON(w, http.StatusOK, meResponse{Status: "success", User: toUserResponse(id)})
}

func toUserResponse(id identity.Identity) userResponse {
	return userResponse{
		Sub:     id.Sub,
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Status: "error", Message: message})
}
