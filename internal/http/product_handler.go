package http

import (
	"net/http"

	"github.com/phamminhquan/stock-ledger/internal/service"
	"github.com/phamminhquan/stock-ledger/pkg/validator"
)

type productHandler struct {
	productSvc service.ProductService
	validate   validator.Validator
}

func newProductHandler(productSvc service.ProductService, validate validator.Validator) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		validate:   validate,
	}
}

type productRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
	Stock int    `json:"stock" validate:"gte=0"`
}

func (h *productHandler) listProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListAll(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	product, err := h.productSvc.Get(r.Context(), id)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, product)
}

func (h *productHandler) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	product, err := h.productSvc.Create(r.Context(), service.CreateProductParams{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusCreated, product)
}

func (h *productHandler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	product, err := h.productSvc.Update(r.Context(), id, service.UpdateProductParams{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, product)
}

func (h *productHandler) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.productSvc.Delete(r.Context(), id); err != nil {
		return err
	}

	return respondNoContent(w)
}

func (h *productHandler) searchProducts(w http.ResponseWriter, r *http.Request) error {
	var name string
	if err := bindQuery(r, "name", true, &name); err != nil {
		return err
	}

	products, err := h.productSvc.SearchByName(r.Context(), name)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) productsByPriceRange(w http.ResponseWriter, r *http.Request) error {
	var minPrice, maxPrice int64
	if err := bindQuery(r, "minPrice", true, &minPrice); err != nil {
		return err
	}
	if err := bindQuery(r, "maxPrice", true, &maxPrice); err != nil {
		return err
	}

	products, err := h.productSvc.ByPriceRange(r.Context(), minPrice, maxPrice)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) inStockProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.InStock(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) lowStockProducts(w http.ResponseWriter, r *http.Request) error {
	threshold := 10
	if err := bindQuery(r, "threshold", false, &threshold); err != nil {
		return err
	}

	products, err := h.productSvc.LowStock(r.Context(), threshold)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) outOfStockProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.OutOfStock(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, products)
}

func (h *productHandler) inStockCount(w http.ResponseWriter, r *http.Request) error {
	count, err := h.productSvc.InStockCount(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *productHandler) productAvailable(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	var quantity int
	if err := bindQuery(r, "quantity", true, &quantity); err != nil {
		return err
	}

	available, err := h.productSvc.IsAvailable(r.Context(), id, quantity)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]bool{"available": available})
}
