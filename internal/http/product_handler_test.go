package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamminhquan/stock-ledger/internal/apperr"
	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/service"
)

func TestListProductsRoute(t *testing.T) {
	productSvc := &stubProductService{
		listAll: func(context.Context) ([]model.Product, error) {
			return []model.Product{sampleProduct("Widget", 10, 5)}, nil
		},
	}
	r := newTestRouter(t, productSvc, &stubTransactionService{})

	rec := doRequest(r, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestCreateProductRoute(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		var got service.CreateProductParams
		productSvc := &stubProductService{
			create: func(_ context.Context, params service.CreateProductParams) (model.Product, error) {
				got = params
				return sampleProduct(params.Name, params.Price, params.Stock), nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodPost, "/api/products", `{"name":"Widget","price":10,"stock":5}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, service.CreateProductParams{Name: "Widget", Price: 10, Stock: 5}, got)
	})

	t.Run("missing name", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodPost, "/api/products", `{"price":10,"stock":5}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"field":"name"`)
	})

	t.Run("negative price", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodPost, "/api/products", `{"name":"Widget","price":-1,"stock":5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate name", func(t *testing.T) {
		productSvc := &stubProductService{
			create: func(context.Context, service.CreateProductParams) (model.Product, error) {
				return model.Product{}, apperr.ProductNameTakenErr
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodPost, "/api/products", `{"name":"Widget","price":10,"stock":5}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), apperr.ProductNameTakenCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodPost, "/api/products", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetProductRoute(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		product := sampleProduct("Widget", 10, 5)
		productSvc := &stubProductService{
			get: func(_ context.Context, id uuid.UUID) (model.Product, error) {
				require.Equal(t, product.ID, id)
				return product, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/"+product.ID.String(), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		productSvc := &stubProductService{
			get: func(context.Context, uuid.UUID) (model.Product, error) {
				return model.Product{}, apperr.ProductNotFoundErr
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/"+uuid.NewString(), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), apperr.ProductNotFoundCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteProductRoute(t *testing.T) {
	productSvc := &stubProductService{
		delete: func(context.Context, uuid.UUID) error { return nil },
	}
	r := newTestRouter(t, productSvc, &stubTransactionService{})

	rec := doRequest(r, http.MethodDelete, "/api/products/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSearchProductsRoute(t *testing.T) {
	t.Run("passes the query through", func(t *testing.T) {
		productSvc := &stubProductService{
			searchByName: func(_ context.Context, name string) ([]model.Product, error) {
				require.Equal(t, "widget", name)
				return nil, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/search?name=widget", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("name is required", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/search", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPriceRangeRoute(t *testing.T) {
	t.Run("binds both bounds", func(t *testing.T) {
		productSvc := &stubProductService{
			byPriceRange: func(_ context.Context, minPrice, maxPrice int64) ([]model.Product, error) {
				require.Equal(t, int64(10), minPrice)
				require.Equal(t, int64(50), maxPrice)
				return nil, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/price-range?minPrice=10&maxPrice=50", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing bound", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/price-range?minPrice=10", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLowStockRoute(t *testing.T) {
	t.Run("defaults the threshold to 10", func(t *testing.T) {
		productSvc := &stubProductService{
			lowStock: func(_ context.Context, threshold int) ([]model.Product, error) {
				require.Equal(t, 10, threshold)
				return nil, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/low-stock", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("explicit threshold", func(t *testing.T) {
		productSvc := &stubProductService{
			lowStock: func(_ context.Context, threshold int) ([]model.Product, error) {
				require.Equal(t, 3, threshold)
				return nil, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/low-stock?threshold=3", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInStockCountRoute(t *testing.T) {
	productSvc := &stubProductService{
		inStockCount: func(context.Context) (int64, error) { return 7, nil },
	}
	r := newTestRouter(t, productSvc, &stubTransactionService{})

	rec := doRequest(r, http.MethodGet, "/api/products/in-stock/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":7}`, rec.Body.String())
}

func TestProductAvailableRoute(t *testing.T) {
	t.Run("reports availability", func(t *testing.T) {
		productSvc := &stubProductService{
			isAvailable: func(_ context.Context, _ uuid.UUID, quantity int) (bool, error) {
				require.Equal(t, 3, quantity)
				return true, nil
			},
		}
		r := newTestRouter(t, productSvc, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/"+uuid.NewString()+"/available?quantity=3", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"available":true}`, rec.Body.String())
	})

	t.Run("quantity is required", func(t *testing.T) {
		r := newTestRouter(t, &stubProductService{}, &stubTransactionService{})

		rec := doRequest(r, http.MethodGet, "/api/products/"+uuid.NewString()+"/available", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
