// internal/identity/handler.go
package identity

import (
	"encoding/json"
	"net/http"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/httpx"
)

type Handler struct {
	service Service
	tokens  *TokenManager
}

func NewHandler(service Service, tokens *TokenManager) *Handler {
	return &Handler{service: service, tokens: tokens}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		DocumentNumber string `json:"document_number"`
		Password       string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.DocumentNumber, req.Password, RoleCustomer)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		httpx.RespondError(w, apperr.Internal(err))
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		httpx.RespondError(w, apperr.Internal(err))
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.service.GetUser(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, user)
}
