// internal/checkout/handler.go
package checkout

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"phstore/internal/identity"
	"phstore/internal/platform/apperr"
	"phstore/internal/platform/httpx"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)
	holderRe     = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// HandleCheckout processes the caller's open cart into a payment.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		Method Method `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment, err := h.service.Checkout(r.Context(), principal.UserID, req.Method)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, payment)
}

// HandleListPayments returns all payments. Admin only.
func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		httpx.RespondError(w, apperr.New(apperr.KindForbidden, "admin role required"))
		return
	}

	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, payments)
}

// HandleAttachCard validates and stores card details for a payment.
// Plaintext card material is hashed by the service and never persisted.
func (h *Handler) HandleAttachCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID  uuid.UUID `json:"payment_id"`
		CardNumber string    `json:"card_number"`
		HolderName string    `json:"holder_name"`
		CVV        string    `json:"cvv"`
		Expiry     string    `json:"expiry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case !cardNumberRe.MatchString(req.CardNumber):
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "card number must be exactly 16 digits"))
		return
	case !holderRe.MatchString(req.HolderName):
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "holder name must contain only letters"))
		return
	case !cvvRe.MatchString(req.CVV):
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "cvv must be 3 or 4 digits"))
		return
	case !expiryRe.MatchString(req.Expiry):
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "expiry must be MM/YYYY"))
		return
	}

	detail, err := h.service.AttachCardDetail(r.Context(), req.PaymentID, req.CardNumber, req.HolderName, req.CVV, req.Expiry)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, detail)
}

// HandleAttachPaypal stores PayPal details for a payment.
func (h *Handler) HandleAttachPaypal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID      uuid.UUID `json:"payment_id"`
		Email          string    `json:"email"`
		ConfirmationID string    `json:"confirmation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := h.service.AttachPaypalDetail(r.Context(), req.PaymentID, req.Email, req.ConfirmationID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, detail)
}

// HandleAttachTransfer stores bank transfer details for a payment.
func (h *Handler) HandleAttachTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID     uuid.UUID `json:"payment_id"`
		HolderName    string    `json:"holder_name"`
		BankName      string    `json:"bank_name"`
		AccountNumber string    `json:"account_number"`
		ReceiptRef    string    `json:"receipt_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := h.service.AttachTransferDetail(r.Context(), req.PaymentID, req.HolderName, req.BankName, req.AccountNumber, req.ReceiptRef)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, detail)
}

// HandleGetDetail returns the method detail record for a payment.
func (h *Handler) HandleGetDetail(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "paymentID"))
	if err != nil {
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "invalid payment id"))
		return
	}

	switch chi.URLParam(r, "method") {
	case "card":
		detail, err := h.service.GetCardDetail(r.Context(), paymentID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.RespondJSON(w, http.StatusOK, detail)
	case "paypal":
		detail, err := h.service.GetPaypalDetail(r.Context(), paymentID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.RespondJSON(w, http.StatusOK, detail)
	case "transfer":
		detail, err := h.service.GetTransferDetail(r.Context(), paymentID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.RespondJSON(w, http.StatusOK, detail)
	default:
		httpx.RespondError(w, apperr.New(apperr.KindInvalidArgument, "unknown payment method"))
	}
}
