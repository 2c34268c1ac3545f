package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/repository"
	"github.com/phamminhquan/stock-ledger/internal/storage/db"
)

// fakeDB satisfies db.DB for services that only use WithTx. The raw query
// methods are never reached because the fake repositories keep state in memory.
type fakeDB struct{}

func (f fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f fakeDB) WithTx(ctx context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeProductRepo struct {
	products map[uuid.UUID]model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]model.Product)}
}

func (r *fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r *fakeProductRepo) Create(_ context.Context, product model.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrNoRows
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return model.Product{}, repository.ErrNoRows
	}
	return product, nil
}

func (r *fakeProductRepo) ListAll(context.Context) ([]model.Product, error) {
	return r.list(func(model.Product) bool { return true }), nil
}

func (r *fakeProductRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range r.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) SearchByName(_ context.Context, name string) ([]model.Product, error) {
	needle := strings.ToLower(name)
	return r.list(func(p model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

func (r *fakeProductRepo) ListByPriceRange(_ context.Context, minPrice, maxPrice int64) ([]model.Product, error) {
	return r.list(func(p model.Product) bool {
		return p.Price >= minPrice && p.Price <= maxPrice
	}), nil
}

func (r *fakeProductRepo) ListInStock(context.Context) ([]model.Product, error) {
	return r.list(func(p model.Product) bool { return p.Stock > 0 }), nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	return r.list(func(p model.Product) bool { return p.Stock < threshold }), nil
}

func (r *fakeProductRepo) ListOutOfStock(context.Context) ([]model.Product, error) {
	return r.list(func(p model.Product) bool { return p.Stock == 0 }), nil
}

func (r *fakeProductRepo) CountInStock(context.Context) (int64, error) {
	return int64(len(r.list(func(p model.Product) bool { return p.Stock > 0 }))), nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int, now time.Time) (model.Product, error) {
	product, ok := r.products[id]
	if !ok || product.Stock+delta < 0 {
		return model.Product{}, repository.ErrNoRows
	}
	product.Stock += delta
	product.UpdatedAt = now
	r.products[id] = product
	return product, nil
}

func (r *fakeProductRepo) list(keep func(model.Product) bool) []model.Product {
	var out []model.Product
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type fakeTransactionRepo struct {
	transactions []model.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) WithDB(db.DB) repository.TransactionRepository { return r }

func (r *fakeTransactionRepo) Create(_ context.Context, transaction model.Transaction) error {
	r.transactions = append(r.transactions, transaction)
	return nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, transaction model.Transaction) error {
	for i := range r.transactions {
		if r.transactions[i].ID == transaction.ID {
			r.transactions[i] = transaction
			return nil
		}
	}
	return repository.ErrNoRows
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.transactions {
		if r.transactions[i].ID == id {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNoRows
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id uuid.UUID) (model.Transaction, error) {
	for _, t := range r.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Transaction{}, repository.ErrNoRows
}

func (r *fakeTransactionRepo) ListAll(context.Context) ([]model.Transaction, error) {
	return r.list(func(model.Transaction) bool { return true }), nil
}

func (r *fakeTransactionRepo) ListByProductID(_ context.Context, productID uuid.UUID) ([]model.Transaction, error) {
	return r.list(func(t model.Transaction) bool { return t.ProductID == productID }), nil
}

func (r *fakeTransactionRepo) ListByType(_ context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	return r.list(func(t model.Transaction) bool { return t.Type == transactionType }), nil
}

func (r *fakeTransactionRepo) ListByProductAndType(_ context.Context, productID uuid.UUID, transactionType model.TransactionType) ([]model.Transaction, error) {
	return r.list(func(t model.Transaction) bool {
		return t.ProductID == productID && t.Type == transactionType
	}), nil
}

func (r *fakeTransactionRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	return r.list(func(t model.Transaction) bool {
		return !t.CreatedAt.Before(start) && !t.CreatedAt.After(end)
	}), nil
}

func (r *fakeTransactionRepo) ListRecent(_ context.Context, limit int32) ([]model.Transaction, error) {
	out := r.list(func(model.Transaction) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTransactionRepo) CountByType(_ context.Context, transactionType model.TransactionType) (int64, error) {
	return int64(len(r.list(func(t model.Transaction) bool { return t.Type == transactionType }))), nil
}

func (r *fakeTransactionRepo) SumTotalPriceByType(_ context.Context, transactionType model.TransactionType) (float64, error) {
	var sum float64
	for _, t := range r.transactions {
		if t.Type == transactionType {
			sum += t.TotalPrice
		}
	}
	return sum, nil
}

func (r *fakeTransactionRepo) list(keep func(model.Transaction) bool) []model.Transaction {
	var out []model.Transaction
	for _, t := range r.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

type fakeOutboxRepo struct {
	created []repository.CreateOutboxMsgParams
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{}
}

func (r *fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.created = append(r.created, params)
	return nil
}

func (r *fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}
