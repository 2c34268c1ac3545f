package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phamminhquan/stock-ledger/internal/apperr"
	"github.com/phamminhquan/stock-ledger/internal/event"
	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/repository"
	"github.com/phamminhquan/stock-ledger/internal/storage/db"
	"github.com/phamminhquan/stock-ledger/pkg/outbox"
	"github.com/phamminhquan/stock-ledger/pkg/ptr"
)

type CreateProductParams struct {
	Name  string
	Price int64
	Stock int
}

type UpdateProductParams struct {
	Name  string
	Price int64
	Stock int
}

// ProductService owns the product catalog. Every mutation that must stay
// consistent with a secondary write (uniqueness check, outbox event) runs in a
// single database transaction.
type ProductService interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (model.Product, error)
	Create(ctx context.Context, params CreateProductParams) (model.Product, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	SearchByName(ctx context.Context, name string) ([]model.Product, error)
	ByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error)
	InStock(ctx context.Context) ([]model.Product, error)
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
	OutOfStock(ctx context.Context) ([]model.Product, error)
	InStockCount(ctx context.Context) (int64, error)

	// IsAvailable reports whether the product exists and has at least the
	// given quantity on hand. A missing product is false, not an error.
	IsAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error)

	// AdjustStock applies a signed delta to the product's stock. A delta that
	// would take stock below zero fails with the insufficient-stock error.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error)
}

type productService struct {
	db            db.DB
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewProductService(
	db db.DB,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		db:            db,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all: %w", err)
	}

	return products, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("product repository get by id: %w", err)
	}

	return product, nil
}

func (s *productService) Create(ctx context.Context, params CreateProductParams) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Price:     params.Price,
		Stock:     params.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ev := event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		exists, err := productRepo.ExistsByName(ctx, params.Name)
		if err != nil {
			return fmt.Errorf("product repository exists by name: %w", err)
		}
		if exists {
			return apperr.ProductNameTakenErr
		}

		if err := productRepo.Create(ctx, product); err != nil {
			// The unique index backstops the check above under concurrency.
			if repository.IsUniqueViolation(err) {
				return apperr.ProductNameTakenErr
			}
			return fmt.Errorf("product repository create: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: ptr.New(product.ID.String()),
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, params UpdateProductParams) (model.Product, error) {
	var updated model.Product

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		current, err := productRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperr.ProductNotFoundErr
			}
			return fmt.Errorf("product repository get by id: %w", err)
		}

		if current.Name != params.Name {
			exists, err := productRepo.ExistsByName(ctx, params.Name)
			if err != nil {
				return fmt.Errorf("product repository exists by name: %w", err)
			}
			if exists {
				return apperr.ProductNameTakenErr
			}
		}

		updated = current
		updated.Name = params.Name
		updated.Price = params.Price
		updated.Stock = params.Stock
		updated.UpdatedAt = time.Now()

		if err := productRepo.Update(ctx, updated); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.ProductNameTakenErr
			}
			return fmt.Errorf("product repository update: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, err
	}

	return updated, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	// No referential check against the ledger: deleting a product leaves its
	// transactions behind with dangling references.
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.ProductNotFoundErr
		}
		return fmt.Errorf("product repository delete: %w", err)
	}

	return nil
}

func (s *productService) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	products, err := s.productRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("product repository search by name: %w", err)
	}

	return products, nil
}

func (s *productService) ByPriceRange(ctx context.Context, minPrice, maxPrice int64) ([]model.Product, error) {
	products, err := s.productRepo.ListByPriceRange(ctx, minPrice, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("product repository list by price range: %w", err)
	}

	return products, nil
}

func (s *productService) InStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list in stock: %w", err)
	}

	return products, nil
}

func (s *productService) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	products, err := s.productRepo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("product repository list low stock: %w", err)
	}

	return products, nil
}

func (s *productService) OutOfStock(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListOutOfStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list out of stock: %w", err)
	}

	return products, nil
}

func (s *productService) InStockCount(ctx context.Context) (int64, error) {
	count, err := s.productRepo.CountInStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("product repository count in stock: %w", err)
	}

	return count, nil
}

func (s *productService) IsAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("product repository get by id: %w", err)
	}

	return product.Stock >= quantity, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error) {
	product, err := s.productRepo.AdjustStock(ctx, id, delta, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return model.Product{}, s.classifyAdjustFailure(ctx, id)
		}
		return model.Product{}, fmt.Errorf("product repository adjust stock: %w", err)
	}

	return product, nil
}

// classifyAdjustFailure decides whether a rejected stock adjustment was a
// missing product or a stock shortfall.
func (s *productService) classifyAdjustFailure(ctx context.Context, id uuid.UUID) error {
	_, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.ProductNotFoundErr
		}
		return fmt.Errorf("product repository get by id: %w", err)
	}

	return apperr.InsufficientStockErr
}
