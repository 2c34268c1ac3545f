package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/storage/db"
)

type TransactionRepository interface {
	WithDB(db db.DB) TransactionRepository

	Create(ctx context.Context, transaction model.Transaction) error
	Update(ctx context.Context, transaction model.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (model.Transaction, error)
	ListAll(ctx context.Context) ([]model.Transaction, error)

	ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error)
	ListByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error)
	ListByProductAndType(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	ListRecent(ctx context.Context, limit int32) ([]model.Transaction, error)

	CountByType(ctx context.Context, transactionType model.TransactionType) (int64, error)
	// SumTotalPriceByType returns zero when no rows match.
	SumTotalPriceByType(ctx context.Context, transactionType model.TransactionType) (float64, error)
}

type transactionRepository struct {
	db db.DB
}

func NewTransactionRepository(db db.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r transactionRepository) WithDB(db db.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, product_id, quantity, total_price, transaction_type, description, created_at`

func (r transactionRepository) Create(ctx context.Context, transaction model.Transaction) error {
	totalPrice, err := numericFromFloat(transaction.TotalPrice)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO transactions (id, product_id, quantity, total_price, transaction_type, description, created_at)
		VALUES (@id, @product_id, @quantity, @total_price, @transaction_type, @description, @created_at)
	`, pgx.NamedArgs{
		"id":               transaction.ID,
		"product_id":       transaction.ProductID,
		"quantity":         transaction.Quantity,
		"total_price":      totalPrice,
		"transaction_type": string(transaction.Type),
		"description":      transaction.Description,
		"created_at":       transaction.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}

func (r transactionRepository) Update(ctx context.Context, transaction model.Transaction) error {
	totalPrice, err := numericFromFloat(transaction.TotalPrice)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE transactions
		SET product_id = @product_id,
			quantity = @quantity,
			total_price = @total_price,
			transaction_type = @transaction_type,
			description = @description
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":               transaction.ID,
		"product_id":       transaction.ProductID,
		"quantity":         transaction.Quantity,
		"total_price":      totalPrice,
		"transaction_type": string(transaction.Type),
		"description":      transaction.Description,
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	return nil
}

func (r transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	return nil
}

func (r transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransactionRow(row)
}

func (r transactionRepository) ListAll(ctx context.Context) ([]model.Transaction, error) {
	return r.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions`)
}

func (r transactionRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE product_id = $1`, productID)
}

func (r transactionRepository) ListByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_type = $1`, string(transactionType))
}

func (r transactionRepository) ListByProductAndType(ctx context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE product_id = $1 AND transaction_type = $2`,
		productID, string(transactionType))
}

func (r transactionRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE created_at BETWEEN $1 AND $2`, start, end)
}

func (r transactionRepository) ListRecent(ctx context.Context, limit int32) ([]model.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r transactionRepository) CountByType(ctx context.Context, transactionType model.TransactionType) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE transaction_type = $1`, string(transactionType)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by type: %w", err)
	}

	return count, nil
}

func (r transactionRepository) SumTotalPriceByType(ctx context.Context, transactionType model.TransactionType) (float64, error) {
	var sum pgtype.Numeric
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM transactions WHERE transaction_type = $1`,
		string(transactionType)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions by type: %w", err)
	}

	value, err := sum.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("convert sum to float64: %w", err)
	}

	return value.Float64, nil
}

func (r transactionRepository) queryTransactions(ctx context.Context, sql string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func scanTransactionRow(row pgx.Row) (model.Transaction, error) {
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transaction{}, ErrNoRows
		}
		return model.Transaction{}, err
	}

	return transaction, nil
}

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var (
		t          model.Transaction
		totalPrice pgtype.Numeric
		txType     string
	)
	if err := row.Scan(&t.ID, &t.ProductID, &t.Quantity, &totalPrice, &txType, &t.Description, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	value, err := totalPrice.Float64Value()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("convert total price to float64: %w", err)
	}

	t.TotalPrice = value.Float64
	t.Type = model.TransactionType(txType)
	return t, nil
}

func numericFromFloat(f float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(fmt.Sprintf("%f", f)); err != nil {
		return n, fmt.Errorf("scan total price: %w", err)
	}

	return n, nil
}
