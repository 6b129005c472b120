// internal/catalog/handler.go
package catalog

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

func requireAdmin(r *http.Request) error {
	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok || !principal.IsAdmin() {
		return apperr.New(apperr.KindForbidden, "admin role required")
	}
	return nil
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindInvalidArgument, "invalid %s", param)
	}
	return id, nil
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "productID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateProduct(r.Context(), &p)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	id, err := parseID(r, "productID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var p Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.service.UpdateProduct(r.Context(), &p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	id, err := parseID(r, "productID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	products, err := h.service.LowStockProducts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(products),
		"products": products,
	})
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	id, err := parseID(r, "categoryID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateCategory(r.Context(), id, req.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	id, err := parseID(r, "categoryID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
