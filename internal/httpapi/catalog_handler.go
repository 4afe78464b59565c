package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/catalog"
	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

type CatalogHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewCatalogHandler(svc *catalog.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, logger: logger}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	first := queryInt(r, "first", 20)
	after := r.URL.Query().Get("after")

	page, err := h.catalog.Products(r.Context(), first, after)
	if err != nil {
		h.logger.Error("products fetch failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) ProductByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if handle == "" {
		respondError(w, http.StatusBadRequest, "Product handle is required")
		return
	}

	product, err := h.catalog.ProductByHandle(r.Context(), handle)
	if err != nil {
		h.logger.Error("product fetch failed", zap.String("handle", handle), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *CatalogHandler) Collections(w http.ResponseWriter, r *http.Request) {
	first := queryInt(r, "first", 10)

	collections, err := h.catalog.Collections(r.Context(), first)
	if err != nil {
		h.logger.Error("collections fetch failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to fetch collections")
		return
	}
	if collections == nil {
		collections = []shopify.Collection{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(w, http.StatusOK, map[string]any{"products": []shopify.Product{}})
		return
	}
	first := queryInt(r, "first", 10)

	products, err := h.catalog.Search(r.Context(), query, first)
	if err != nil {
		h.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to search products")
		return
	}
	if products == nil {
		products = []shopify.Product{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}
