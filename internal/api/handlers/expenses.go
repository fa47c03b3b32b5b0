package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finze-app/finze-backend/internal/api/dto"
	"github.com/finze-app/finze-backend/internal/domain/transaction"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// ExpensesHandler handles the manual capture path's CRUD.
type ExpensesHandler struct {
	repo storage.Repository
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(repo storage.Repository) *ExpensesHandler {
	return &ExpensesHandler{repo: repo}
}

// Create handles POST /api/expenses.
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, dto.ValidationError("title is required"))
		return
	}
	if req.Amount < 0 {
		WriteError(w, http.StatusBadRequest, dto.ValidationError("amount must be non-negative"))
		return
	}

	now := time.Now().UTC()
	date := now
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, dto.ValidationError("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	txType := req.Type
	if txType != string(transaction.TypeIncome) {
		txType = string(transaction.TypeExpense)
	}

	expense := &storage.ManualExpense{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Amount:        req.Amount,
		Category:      req.Category,
		Type:          txType,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.repo.SaveManualExpense(expense); err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	WriteJSON(w, http.StatusCreated, expense)
}

// List handles GET /api/expenses.
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.repo.ListManualExpenses()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if expenses == nil {
		expenses = []*storage.ManualExpense{}
	}
	WriteJSON(w, http.StatusOK, expenses)
}

// Delete handles DELETE /api/expenses/{id}.
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, dto.BadRequestError("expense ID is required"))
		return
	}

	existing, err := h.repo.GetManualExpense(id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}
	if existing == nil {
		WriteError(w, http.StatusNotFound, dto.NotFoundError("expense"))
		return
	}

	if err := h.repo.DeleteManualExpense(id); err != nil {
		WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
