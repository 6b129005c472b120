// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"phstore/internal/identity"
	"phstore/internal/platform/apperr"
	"phstore/internal/platform/httpx"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func requireAdmin(r *http.Request) error {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		return apperr.New(apperr.KindForbidden, "admin role required")
	}
	return nil
}

func (h *Handler) HandleAdjustStock(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid product id"))
		return
	}

	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		req.Reason = "stock adjustment"
	}

	adjustment, err := h.ledger.AdjustStock(r.Context(), productID, req.Quantity, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, adjustment)
}

func (h *Handler) HandleProductHistory(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid product id"))
		return
	}

	history, err := h.ledger.History(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) HandleFullHistory(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	history, err := h.ledger.FullHistory(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, history)
}
