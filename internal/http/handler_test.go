package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phamminhquan/stock-ledger/internal/config"
	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/service"
	"github.com/phamminhquan/stock-ledger/pkg/validator"
)

// stubProductService overrides only the methods a test exercises. Calling an
// unset method panics through the embedded nil interface, which is the point:
// it flags a route hitting an unexpected service call.
type stubProductService struct {
	service.ProductService

	listAll      func(ctx context.Context) ([]model.Product, error)
	get          func(ctx context.Context, id uuid.UUID) (model.Product, error)
	create       func(ctx context.Context, params service.CreateProductParams) (model.Product, error)
	update       func(ctx context.Context, id uuid.UUID, params service.UpdateProductParams) (model.Product, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	searchByName func(ctx context.Context, name string) ([]model.Product, error)
	byPriceRange func(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error)
	lowStock     func(ctx context.Context, threshold int) ([]model.Product, error)
	inStockCount func(ctx context.Context) (int64, error)
	isAvailable  func(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
}

func (s *stubProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.listAll(ctx)
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return s.get(ctx, id)
}

func (s *stubProductService) Create(ctx context.Context, params service.CreateProductParams) (model.Product, error) {
	return s.create(ctx, params)
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, params service.UpdateProductParams) (model.Product, error) {
	return s.update(ctx, id, params)
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, id)
}

func (s *stubProductService) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	return s.searchByName(ctx, name)
}

func (s *stubProductService) ByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error) {
	return s.byPriceRange(ctx, minPrice, maxPrice)
}

func (s *stubProductService) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	return s.lowStock(ctx, threshold)
}

func (s *stubProductService) InStockCount(ctx context.Context) (int64, error) {
	return s.inStockCount(ctx)
}

func (s *stubProductService) IsAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	return s.isAvailable(ctx, id, quantity)
}

type stubTransactionService struct {
	service.TransactionService

	create           func(ctx context.Context, params service.CreateTransactionParams) (model.Transaction, error)
	createSale       func(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error)
	createPurchase   func(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error)
	delete           func(ctx context.Context, id uuid.UUID) error
	byProductID      func(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error)
	byProductAndType func(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error)
	byDateRange      func(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	recent           func(ctx context.Context) ([]model.Transaction, error)
	countByType      func(ctx context.Context, transactionType model.TransactionType) (int64, error)
	netRevenue       func(ctx context.Context) (float64, error)
}

func (s *stubTransactionService) Create(ctx context.Context, params service.CreateTransactionParams) (model.Transaction, error) {
	return s.create(ctx, params)
}

func (s *stubTransactionService) CreateSale(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error) {
	return s.createSale(ctx, productID, quantity, description)
}

func (s *stubTransactionService) CreatePurchase(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error) {
	return s.createPurchase(ctx, productID, quantity, description)
}

func (s *stubTransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.delete(ctx, id)
}

func (s *stubTransactionService) ByProductID(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error) {
	return s.byProductID(ctx, productID)
}

func (s *stubTransactionService) ByProductAndType(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error) {
	return s.byProductAndType(ctx, productID, transactionType)
}

func (s *stubTransactionService) ByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return s.byDateRange(ctx, start, end)
}

func (s *stubTransactionService) Recent(ctx context.Context) ([]model.Transaction, error) {
	return s.recent(ctx)
}

func (s *stubTransactionService) CountByType(ctx context.Context, transactionType model.TransactionType) (int64, error) {
	return s.countByType(ctx, transactionType)
}

func (s *stubTransactionService) NetRevenue(ctx context.Context) (float64, error) {
	return s.netRevenue(ctx)
}

func newTestRouter(t *testing.T, productSvc service.ProductService, transactionSvc service.TransactionService) chi.Router {
	t.Helper()

	validate, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(config.HTTP{Port: 8080}, logger, productSvc, transactionSvc, validate, nil)

	r := chi.NewRouter()
	svc.RegisterHandlers(r)

	return r
}

func doRequest(r chi.Router, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func sampleProduct(name string, price int64, stock int) model.Product {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleTransaction(productID uuid.UUID, transactionType model.TransactionType, quantity int, totalPrice float64) model.Transaction {
	return model.Transaction{
		ID:         uuid.New(),
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		Type:       transactionType,
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
