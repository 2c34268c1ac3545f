package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phamminhquan/stock-ledger/internal/model"
	"github.com/phamminhquan/stock-ledger/internal/service"
	"github.com/phamminhquan/stock-ledger/pkg/validator"
)

type transactionHandler struct {
	transactionSvc service.TransactionService
	validate       validator.Validator
}

func newTransactionHandler(transactionSvc service.TransactionService, validate validator.Validator) *transactionHandler {
	return &transactionHandler{
		transactionSvc: transactionSvc,
		validate:       validate,
	}
}

// transactionRequest is shared by the generic create and update endpoints.
// The type field is not constrained to SALE/PURCHASE here: the generic path
// accepts any value and simply stores it.
type transactionRequest struct {
	ProductID   uuid.UUID             `json:"product_id"`
	Quantity    int                   `json:"quantity" validate:"gt=0"`
	TotalPrice  float64               `json:"total_price" validate:"gte=0"`
	Type        model.TransactionType `json:"transaction_type" validate:"required"`
	Description string                `json:"description"`
	CreatedAt   *time.Time            `json:"created_at"`
}

func (h *transactionHandler) listTransactions(w http.ResponseWriter, r *http.Request) error {
	transactions, err := h.transactionSvc.ListAll(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transactions)
}

func (h *transactionHandler) getTransaction(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	transaction, err := h.transactionSvc.Get(r.Context(), id)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transaction)
}

func (h *transactionHandler) createTransaction(w http.ResponseWriter, r *http.Request) error {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	transaction, err := h.transactionSvc.Create(r.Context(), service.CreateTransactionParams{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		TotalPrice:  req.TotalPrice,
		Type:        req.Type,
		Description: req.Description,
		CreatedAt:   req.CreatedAt,
	})
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusCreated, transaction)
}

// createSale and createPurchase take their inputs as query parameters, which
// is the surface the existing API consumers already use.
func (h *transactionHandler) createSale(w http.ResponseWriter, r *http.Request) error {
	productID, quantity, description, err := bindStockChangeParams(r)
	if err != nil {
		return err
	}

	transaction, err := h.transactionSvc.CreateSale(r.Context(), productID, quantity, description)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusCreated, transaction)
}

func (h *transactionHandler) createPurchase(w http.ResponseWriter, r *http.Request) error {
	productID, quantity, description, err := bindStockChangeParams(r)
	if err != nil {
		return err
	}

	transaction, err := h.transactionSvc.CreatePurchase(r.Context(), productID, quantity, description)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusCreated, transaction)
}

func (h *transactionHandler) updateTransaction(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	transaction, err := h.transactionSvc.Update(r.Context(), id, service.UpdateTransactionParams{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		TotalPrice:  req.TotalPrice,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transaction)
}

func (h *transactionHandler) deleteTransaction(w http.ResponseWriter, r *http.Request) error {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.transactionSvc.Delete(r.Context(), id); err != nil {
		return err
	}

	return respondNoContent(w)
}

func (h *transactionHandler) transactionsByProduct(w http.ResponseWriter, r *http.Request) error {
	productID, err := bindPathUUID(r, "productId")
	if err != nil {
		return err
	}

	var transactionType string
	if err := bindQuery(r, "type", false, &transactionType); err != nil {
		return err
	}

	var (
		transactions []model.Transaction
	)
	if transactionType != "" {
		transactions, err = h.transactionSvc.ByProductAndType(r.Context(), productID, model.TransactionType(transactionType))
	} else {
		transactions, err = h.transactionSvc.ByProductID(r.Context(), productID)
	}
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transactions)
}

func (h *transactionHandler) transactionsByType(w http.ResponseWriter, r *http.Request) error {
	transactionType := chi.URLParam(r, "type")

	transactions, err := h.transactionSvc.ByType(r.Context(), model.TransactionType(transactionType))
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transactions)
}

func (h *transactionHandler) transactionsByDateRange(w http.ResponseWriter, r *http.Request) error {
	var start, end time.Time
	if err := bindQuery(r, "startDate", true, &start); err != nil {
		return err
	}
	if err := bindQuery(r, "endDate", true, &end); err != nil {
		return err
	}

	transactions, err := h.transactionSvc.ByDateRange(r.Context(), start, end)
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transactions)
}

func (h *transactionHandler) recentTransactions(w http.ResponseWriter, r *http.Request) error {
	transactions, err := h.transactionSvc.Recent(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, transactions)
}

func (h *transactionHandler) transactionCountByType(w http.ResponseWriter, r *http.Request) error {
	transactionType := chi.URLParam(r, "type")

	count, err := h.transactionSvc.CountByType(r.Context(), model.TransactionType(transactionType))
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *transactionHandler) totalSales(w http.ResponseWriter, r *http.Request) error {
	total, err := h.transactionSvc.TotalSales(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]float64{"total": total})
}

func (h *transactionHandler) totalPurchases(w http.ResponseWriter, r *http.Request) error {
	total, err := h.transactionSvc.TotalPurchases(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]float64{"total": total})
}

func (h *transactionHandler) netRevenue(w http.ResponseWriter, r *http.Request) error {
	net, err := h.transactionSvc.NetRevenue(r.Context())
	if err != nil {
		return err
	}

	return respondJSON(w, http.StatusOK, map[string]float64{"net_revenue": net})
}

func bindStockChangeParams(r *http.Request) (uuid.UUID, int, string, error) {
	var productID uuid.UUID
	if err := bindQuery(r, "productId", true, &productID); err != nil {
		return uuid.Nil, 0, "", err
	}

	var quantity int
	if err := bindQuery(r, "quantity", true, &quantity); err != nil {
		return uuid.Nil, 0, "", err
	}

	var description string
	if err := bindQuery(r, "description", false, &description); err != nil {
		return uuid.Nil, 0, "", err
	}

	return productID, quantity, description, nil
}
