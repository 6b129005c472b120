// internal/invoicing/handler.go
package invoicing

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

// HandleCreateInvoice issues the invoice for a payment. When only the
// notification fails the invoice is still returned; the client sees the
// partial-success condition in the response body.
func (h *Handler) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID uuid.UUID `json:"payment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PaymentID == uuid.Nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "payment_id is required"))
		return
	}

	invoice, err := h.service.CreateInvoice(r.Context(), req.PaymentID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotifyFailed && invoice != nil {
			httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
				"invoice":      invoice,
				"notify_error": apperr.MessageOf(err),
			})
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, invoice)
}

// HandleLatestInvoice returns the caller's newest invoice.
func (h *Handler) HandleLatestInvoice(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	invoice, err := h.service.GetLatestInvoice(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, invoice)
}

// HandleListInvoices returns all invoices.
func (h *Handler) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, invoices)
}

// HandleInvoiceDetails returns the lines of one invoice with product names.
func (h *Handler) HandleInvoiceDetails(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := uuid.Parse(chi.URLParam(r, "invoiceID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid invoice id"))
		return
	}

	details, err := h.service.InvoiceDetails(r.Context(), invoiceID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, details)
}
