package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finze-app/finze-backend/internal/api/dto"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// ReceiptsHandler handles the OCR capture path's CRUD.
type ReceiptsHandler struct {
	repo storage.Repository
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(repo storage.Repository) *ReceiptsHandler {
	return &ReceiptsHandler{repo: repo}
}

// Create handles POST /api/receipts.
//
// The OCR pipeline is lenient by design: an empty merchant name or an
// unparseable total is stored as-is, and normalization downstream applies
// fallbacks. A scan that produced anything at all should show up in the feed.
func (h *ReceiptsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	now := time.Now().UTC()
	receipt := &storage.ScannedReceipt{
		ID:            uuid.NewString(),
		MerchantName:  req.MerchantName,
		TotalAmount:   req.TotalAmount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		RawText:       req.RawText,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.repo.SaveScannedReceipt(receipt); err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusCreated, receipt)
}

// List handles GET /api/receipts.
func (h *ReceiptsHandler) List(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.repo.ListScannedReceipts()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if receipts == nil {
		receipts = []*storage.ScannedReceipt{}
	}
	WriteJSON(w, http.StatusOK, receipts)
}

// Delete handles DELETE /api/receipts/{id}.
func (h *ReceiptsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("receipt ID is required"))
		return
	}

	existing, err := h.repo.GetScannedReceipt(id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if existing == nil {
		WriteError(w, http.StatusNotFound, dto.NotFoundError("receipt"))
		return
	}

	if err := h.repo.DeleteScannedReceipt(id); err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
