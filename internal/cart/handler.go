// internal/cart/handler.go
package cart

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
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func principalOr401(w http.ResponseWriter, r *http.Request) (identity.Principal, bool) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}
	return principal, ok
}

// HandleOpenCart returns the caller's open cart, creating one if needed.
func (h *Handler) HandleOpenCart(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetOrCreateOpenCart(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, cart)
}

// HandleActiveCart returns the open cart with its product lines.
func (h *Handler) HandleActiveCart(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	view, err := h.service.ActiveCartView(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, view)
}

// HandleSetLineItem sets the quantity of one product in a cart.
func (h *Handler) HandleSetLineItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	cartID, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid cart id"))
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int       `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cart, err := h.service.SetLineItemQuantity(r.Context(), principal.UserID, cartID, req.ProductID, req.Quantity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, cart)
}

// HandleRemoveLineItem deletes one product line from a cart.
func (h *Handler) HandleRemoveLineItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	cartID, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid cart id"))
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProductID == uuid.Nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "product_id is required"))
		return
	}

	if err := h.service.RemoveLineItem(r.Context(), principal.UserID, cartID, req.ProductID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"message": "product removed from cart"})
}
