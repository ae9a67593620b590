package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pelloch/marketplace/internal/entity"
	"github.com/pelloch/marketplace/internal/repository"
	"github.com/pelloch/marketplace/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	catalogSvc *service.CatalogService
	orderSvc   *service.OrderService
	merchants  repository.MerchantRepository
}

func NewHandler(catalogSvc *service.CatalogService, orderSvc *service.OrderService, merchants repository.MerchantRepository) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		orderSvc:   orderSvc,
		merchants:  merchants,
	}
}

// Routes returns the full route tree with authentication resolution applied.
// Product and listing reads are public; everything else needs a token.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /product/", h.handleListProducts)
	mux.HandleFunc("POST /product/", requireAuth(h.handleCreateProduct))
	mux.HandleFunc("GET /product/{id}", h.handleGetProduct)
	mux.HandleFunc("PUT /product/{id}", requireAuth(h.handleUpdateProduct))
	mux.HandleFunc("DELETE /product/{id}", requireAuth(h.handleDeleteProduct))

	mux.HandleFunc("GET /listing/", h.handleListListings)
	mux.HandleFunc("POST /listing/", requireAuth(h.handleCreateListing))
	mux.HandleFunc("GET /listing/{id}", h.handleGetListing)
	mux.HandleFunc("PUT /listing/{id}", requireAuth(h.handleUpdateListing))
	mux.HandleFunc("PUT /listing/{id}/attach-product", requireAuth(h.handleAttachProduct))

	mux.HandleFunc("GET /orders/", requireAuth(h.handleListOrders))
	mux.HandleFunc("POST /orders/", requireAuth(h.handleCreateOrder))

	return withMerchant(h.merchants, mux)
}

// --- products ---

type productRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	product, err := h.catalogSvc.CreateProduct(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := h.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	product, err := h.catalogSvc.UpdateProduct(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalogSvc.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- listings ---

// listingRequest carries the writable listing fields. Product is captured
// only to reject it: the product reference changes through the attach
// operation alone.
type listingRequest struct {
	Product     json.RawMessage  `json:"product"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    int              `json:"quantity"`
}

func (req *listingRequest) toListing() (*entity.Listing, error) {
	// A literal null is tolerated so clients can echo a GET body back.
	if len(req.Product) > 0 && string(req.Product) != "null" {
		return nil, entity.Validationf("product cannot be set on this path, use the attach-product operation")
	}
	if req.Price == nil {
		return nil, entity.Validationf("listing price is mandatory")
	}
	return &entity.Listing{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    req.Quantity,
	}, nil
}

func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.catalogSvc.ListListings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *Handler) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	listing, err := req.toListing()
	if err != nil {
		writeError(w, err)
		return
	}
	listing, err = h.catalogSvc.CreateListing(r.Context(), listing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	listing, err := h.catalogSvc.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	listing, err := req.toListing()
	if err != nil {
		writeError(w, err)
		return
	}
	listing.ID = id
	listing, err = h.catalogSvc.UpdateListing(r.Context(), listing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

type attachProductRequest struct {
	Product int64 `json:"product"`
}

func (h *Handler) handleAttachProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req attachProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	listing, err := h.catalogSvc.AttachProduct(r.Context(), id, req.Product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// --- orders ---

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderSvc.ListForMerchant(r.Context(), merchantFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req entity.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entity.Validationf("invalid request body"))
		return
	}
	order, err := h.orderSvc.Place(r.Context(), merchantFrom(r), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// --- helpers ---

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, entity.Validationf("invalid %s", name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto status codes. Insufficient
// stock gets its own expectation-failed status so clients can tell it apart
// from plain validation errors.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, entity.ErrInsufficientStock):
		status = http.StatusExpectationFailed
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrProductAttached):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "err", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
