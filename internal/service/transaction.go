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

// recentLimit caps the result of Recent.
const recentLimit = 10

// CreateTransactionParams is the generic create input. Type is accepted as
// given: values other than SALE and PURCHASE are stored but move no stock.
type CreateTransactionParams struct {
	ProductID   uuid.UUID
	Quantity    int
	TotalPrice  float64
	Type        model.TransactionType
	Description string
	CreatedAt   *time.Time
}

// UpdateTransactionParams replaces every mutable field of a transaction.
// Updates never re-apply or reverse stock adjustments.
type UpdateTransactionParams struct {
	ProductID   uuid.UUID
	Quantity    int
	TotalPrice  float64
	Type        model.TransactionType
	Description string
}

// TransactionService owns the stock ledger. Sale and purchase creation adjust
// the referenced product's stock in the same database transaction as the
// ledger insert, so neither write is ever visible without the other.
type TransactionService interface {
	ListAll(ctx context.Context) ([]model.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (model.Transaction, error)

	CreateSale(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error)
	CreatePurchase(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error)
	Create(ctx context.Context, params CreateTransactionParams) (model.Transaction, error)

	Update(ctx context.Context, id uuid.UUID, params UpdateTransactionParams) (model.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ByProductID(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error)
	ByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error)
	ByProductAndType(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	Recent(ctx context.Context) ([]model.Transaction, error)

	CountByType(ctx context.Context, transactionType model.TransactionType) (int64, error)
	TotalSales(ctx context.Context) (float64, error)
	TotalPurchases(ctx context.Context) (float64, error)
	NetRevenue(ctx context.Context) (float64, error)
}

type transactionService struct {
	db              db.DB
	transactionRepo repository.TransactionRepository
	productRepo     repository.ProductRepository
	outboxMsgRepo   repository.OutboxMsgRepository
}

func NewTransactionService(
	db db.DB,
	transactionRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) TransactionService {
	return &transactionService{
		db:              db,
		transactionRepo: transactionRepo,
		productRepo:     productRepo,
		outboxMsgRepo:   outboxMsgRepo,
	}
}

func (s *transactionService) ListAll(ctx context.Context) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list all: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return model.Transaction{}, apperr.TransactionNotFoundErr
		}
		return model.Transaction{}, fmt.Errorf("transaction repository get by id: %w", err)
	}

	return transaction, nil
}

func (s *transactionService) CreateSale(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error) {
	return s.createWithStockAdjustment(ctx, productID, quantity, description, model.TransactionTypeSale)
}

func (s *transactionService) CreatePurchase(ctx context.Context, productID uuid.UUID, quantity int, description string) (model.Transaction, error) {
	return s.createWithStockAdjustment(ctx, productID, quantity, description, model.TransactionTypePurchase)
}

// createWithStockAdjustment runs the stock mutation, the ledger insert and the
// outbox write in one database transaction. The conditional update inside
// AdjustStock is what keeps stock from going negative under concurrent sales.
func (s *transactionService) createWithStockAdjustment(
	ctx context.Context,
	productID uuid.UUID,
	quantity int,
	description string,
	transactionType model.TransactionType,
) (model.Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	delta := quantity
	if transactionType == model.TransactionTypeSale {
		delta = -quantity
	}

	var transaction model.Transaction

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		product, err := productRepo.AdjustStock(ctx, productID, delta, time.Now())
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return s.classifyAdjustFailure(ctx, productRepo, productID)
			}
			return fmt.Errorf("product repository adjust stock: %w", err)
		}

		transaction = model.Transaction{
			ID:          id,
			ProductID:   productID,
			Quantity:    quantity,
			TotalPrice:  float64(product.Price) * float64(quantity),
			Type:        transactionType,
			Description: description,
			CreatedAt:   time.Now(),
		}

		if err := s.transactionRepo.WithDB(db).Create(ctx, transaction); err != nil {
			return fmt.Errorf("transaction repository create: %w", err)
		}

		return s.writeRecordedEvent(ctx, db, transaction)
	}); err != nil {
		return model.Transaction{}, err
	}

	return transaction, nil
}

func (s *transactionService) Create(ctx context.Context, params CreateTransactionParams) (model.Transaction, error) {
	if params.ProductID == uuid.Nil {
		return model.Transaction{}, apperr.ProductReferenceRequiredErr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	createdAt := time.Now()
	if params.CreatedAt != nil {
		createdAt = *params.CreatedAt
	}

	transaction := model.Transaction{
		ID:          id,
		ProductID:   params.ProductID,
		Quantity:    params.Quantity,
		TotalPrice:  params.TotalPrice,
		Type:        params.Type,
		Description: params.Description,
		CreatedAt:   createdAt,
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		productRepo := s.productRepo.WithDB(db)

		switch params.Type {
		case model.TransactionTypeSale, model.TransactionTypePurchase:
			delta := params.Quantity
			if params.Type == model.TransactionTypeSale {
				delta = -params.Quantity
			}

			if _, err := productRepo.AdjustStock(ctx, params.ProductID, delta, time.Now()); err != nil {
				if errors.Is(err, repository.ErrNoRows) {
					return s.classifyAdjustFailure(ctx, productRepo, params.ProductID)
				}
				return fmt.Errorf("product repository adjust stock: %w", err)
			}
		default:
			// Unknown types are stored as-is and move no stock. Kept
			// deliberately permissive to match the established API behavior.
			if _, err := productRepo.GetByID(ctx, params.ProductID); err != nil {
				if errors.Is(err, repository.ErrNoRows) {
					return apperr.ProductNotFoundErr
				}
				return fmt.Errorf("product repository get by id: %w", err)
			}
		}

		if err := s.transactionRepo.WithDB(db).Create(ctx, transaction); err != nil {
			return fmt.Errorf("transaction repository create: %w", err)
		}

		return s.writeRecordedEvent(ctx, db, transaction)
	}); err != nil {
		return model.Transaction{}, err
	}

	return transaction, nil
}

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, params UpdateTransactionParams) (model.Transaction, error) {
	var updated model.Transaction

	// Stock is intentionally untouched here: only creation adjusts stock, so
	// editing a recorded sale does not re-balance the product. Known gap in
	// the API contract, preserved as-is.
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		transactionRepo := s.transactionRepo.WithDB(db)

		current, err := transactionRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperr.TransactionNotFoundErr
			}
			return fmt.Errorf("transaction repository get by id: %w", err)
		}

		updated = current
		updated.ProductID = params.ProductID
		updated.Quantity = params.Quantity
		updated.TotalPrice = params.TotalPrice
		updated.Type = params.Type
		updated.Description = params.Description

		if err := transactionRepo.Update(ctx, updated); err != nil {
			return fmt.Errorf("transaction repository update: %w", err)
		}

		return nil
	}); err != nil {
		return model.Transaction{}, err
	}

	return updated, nil
}

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID) error {
	// Deleting a sale does not restore stock; same gap as Update, preserved.
	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.TransactionNotFoundErr
		}
		return fmt.Errorf("transaction repository delete: %w", err)
	}

	return nil
}

func (s *transactionService) ByProductID(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list by product id: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) ByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListByType(ctx, transactionType)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list by type: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) ByProductAndType(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListByProductAndType(ctx, productID, transactionType)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list by product and type: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) ByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list by date range: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) Recent(ctx context.Context) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list recent: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) CountByType(ctx context.Context, transactionType model.TransactionType) (int64, error) {
	count, err := s.transactionRepo.CountByType(ctx, transactionType)
	if err != nil {
		return 0, fmt.Errorf("transaction repository count by type: %w", err)
	}

	return count, nil
}

func (s *transactionService) TotalSales(ctx context.Context) (float64, error) {
	total, err := s.transactionRepo.SumTotalPriceByType(ctx, model.TransactionTypeSale)
	if err != nil {
		return 0, fmt.Errorf("transaction repository sum sales: %w", err)
	}

	return total, nil
}

func (s *transactionService) TotalPurchases(ctx context.Context) (float64, error) {
	total, err := s.transactionRepo.SumTotalPriceByType(ctx, model.TransactionTypePurchase)
	if err != nil {
		return 0, fmt.Errorf("transaction repository sum purchases: %w", err)
	}

	return total, nil
}

func (s *transactionService) NetRevenue(ctx context.Context) (float64, error) {
	totalSales, err := s.TotalSales(ctx)
	if err != nil {
		return 0, err
	}

	totalPurchases, err := s.TotalPurchases(ctx)
	if err != nil {
		return 0, err
	}

	return totalSales - totalPurchases, nil
}

func (s *transactionService) classifyAdjustFailure(ctx context.Context, productRepo repository.ProductRepository, productID uuid.UUID) error {
	_, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return apperr.ProductNotFoundErr
		}
		return fmt.Errorf("product repository get by id: %w", err)
	}

	return apperr.InsufficientStockErr
}

func (s *transactionService) writeRecordedEvent(ctx context.Context, db db.DB, transaction model.Transaction) error {
	ev := event.TransactionRecordedEvent{
		TransactionID: transaction.ID.String(),
		ProductID:     transaction.ProductID.String(),
		Type:          string(transaction.Type),
		Quantity:      transaction.Quantity,
		TotalPrice:    transaction.TotalPrice,
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicTransactionRecorded,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(transaction.ProductID.String()),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
