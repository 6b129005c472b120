// internal/shipping/handler.go
package shipping

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

// HandleCreateShipment creates the shipment and order for an invoice.
func (h *Handler) HandleCreateShipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		InvoiceID uuid.UUID `json:"invoice_id"`
		Address   Address   `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.InvoiceID == uuid.Nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invoice_id is required"))
		return
	}

	shipment, order, err := h.service.CreateShipment(r.Context(), principal.UserID, req.InvoiceID, req.Address)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"shipment": shipment,
		"order":    order,
	})
}

// HandleUpdateStatus sets a shipment's delivery state. Admin only.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	shipmentID, err := uuid.Parse(chi.URLParam(r, "shipmentID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid shipment id"))
		return
	}

	var req struct {
		NewStatus ShipmentStatus `json:"new_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateShipmentStatus(r.Context(), principal.Role, shipmentID, req.NewStatus); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// HandleShipmentStatus returns the tracking view for one order.
func (h *Handler) HandleShipmentStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid order id"))
		return
	}

	view, err := h.service.GetShipmentStatus(r.Context(), principal.UserID, principal.Role, orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, view)
}

// HandleListShipments returns all shipments. Admin only.
func (h *Handler) HandleListShipments(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		httpx.RespondError(w, apperr.New(apperr.KindForbidden, "admin role required"))
		return
	}

	shipments, err := h.service.ListShipments(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{"shipments": shipments})
}
