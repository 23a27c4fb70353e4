package assistant

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raseedhq/raseed/internal/identity"
	"github.com/raseedhq/raseed/internal/llm"
	"github.com/raseedhq/raseed/internal/receipt"
)

// Handler answers assistant prompts over the caller's stored receipts.
// Model-side failures come back as 200s with the failure folded into
// the reply text; clients render replies verbatim either way.
type Handler struct {
	svc       *receipt.Service
	assistant llm.Assistant
}

func NewHandler(svc *receipt.Service, assistant llm.Assistant) *Handler {
	return &Handler{svc: svc, assistant: assistant}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/llm-receipt", h.ask)
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	receipts, err := h.svc.List(r.Context(), id.Sub)
	if err != nil {
		slog.Error("failed to load receipts for assistant", "sub", id.Sub, "error", err)
		respondJSON(w, http.StatusOK, askResponse{Reply: "Error: could not load your receipts"})

		return
	}

	reply, err := h.assistant.Reply(r.Context(), req.Prompt, receipts)
	if err != nil {
		slog.Error("assistant reply failed", "sub", id.Sub, "error", err)
		respondJSON(w, http.StatusOK, askResponse{Reply: fmt.Sprintf("Error: %v", err)})

		return
	}

	respondJSON(w, http.StatusOK, askResponse{Reply: reply})
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
