package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/raseedhq/raseed/internal/identity"
	"github.com/raseedhq/raseed/internal/llm"
	"github.com/raseedhq/raseed/internal/receipt"
)

const maxUploadBytes = 10 << 20

// Handler serves the receipt lifecycle: extract, save, list and link
// to wallet.
type Handler struct {
	svc       *receipt.Service
	extractor llm.Extractor
}

func NewHandler(svc *receipt.Service, extractor llm.Extractor) *Handler {
	return &Handler{svc: svc, extractor: extractor}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/extract-receipt", h.extract)
	r.Post("/save-receipt", h.save)
	r.Get("/receipts", h.list)
	r.Post("/save-to-wallet/{id}", h.saveToWallet)
}

type extractResponse struct {
	Status string                `json:"status"`
	Data   receipt.RawExtraction `json:"data"`
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	raw, err := h.extractor.Extract(r.Context(), header.Filename, image)
	if err != nil {
		slog.Error("extraction failed", "file", header.Filename, "error", err)
		respondError(w, http.StatusInternalServerError, "could not extract receipt")

		return
	}

	respondJSON(w, http.StatusOK, extractResponse{Status: "success", Data: raw})
}

type saveResponse struct {
	Status    string `json:"status"`
	ReceiptID string `json:"receipt_id"`
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	var payload receipt.SavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receiptID, err := h.svc.Save(r.Context(), id.Sub, payload)
	if err != nil {
		slog.Error("failed to save receipt", "sub", id.Sub, "error", err)
		respondError(w, http.StatusInternalServerError, "could not save receipt")

		return
	}

	respondJSON(w, http.StatusOK, saveResponse{Status: "success", ReceiptID: receiptID})
}

type listResponse struct {
	Status string            `json:"status"`
	Data   []receipt.Receipt `json:"data"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	receipts, err := h.svc.List(r.Context(), id.Sub)
	if err != nil {
		slog.Error("failed to list receipts", "sub", id.Sub, "error", err)
		respondError(w, http.StatusInternalServerError, "could not list receipts")

		return
	}

	if receipts == nil {
		receipts = []receipt.Receipt{}
	}

	respondJSON(w, http.StatusOK, listResponse{Status: "success", Data: receipts})
}

type walletResponse struct {
	Status  string `json:"status"`
	SaveURL string `json:"saveUrl"`
}

func (h *Handler) saveToWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}

	receiptID := chi.URLParam(r, "id")

	rec, err := h.svc.LinkToWallet(r.Context(), id.Sub, receiptID)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Receipt not found")
			return
		}

		slog.Error("failed to link receipt to wallet", "receipt", receiptID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not save to wallet")

		return
	}

	respondJSON(w, http.StatusOK, walletResponse{Status: "success", SaveURL: saveURL(rec)})
}

// saveURL fabricates the add-to-wallet link. The production service
// signs a Google Wallet object JWT here; the dev backend only needs a
// plausible URL per link request.
func saveURL(rec *receipt.Receipt) string {
	return "https://pay.google.com/gp/v/save/" + rec.ID + "-" + uuid.NewString()
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
