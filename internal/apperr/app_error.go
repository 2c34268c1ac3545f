package apperr

import "github.com/phamminhquan/stock-ledger/pkg/zerror"

const (
	ValidationErrorCode          = "VALIDATION_FAILED"
	ProductNotFoundCode          = "PRODUCT_NOT_FOUND"
	TransactionNotFoundCode      = "TRANSACTION_NOT_FOUND"
	ProductNameTakenCode         = "PRODUCT_NAME_TAKEN"
	InsufficientStockCode        = "INSUFFICIENT_STOCK"
	ProductReferenceRequiredCode = "PRODUCT_REFERENCE_REQUIRED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr     = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	TransactionNotFoundErr = zerror.NewNotFound(TransactionNotFoundCode, "transaction not found")

	// Name collisions and stock shortfalls are caller mistakes, not conflicts
	// the caller can resolve by retrying, so they surface as bad requests.
	ProductNameTakenErr  = zerror.NewBadRequest(ProductNameTakenCode, "a product with this name already exists")
	InsufficientStockErr = zerror.NewBadRequest(InsufficientStockCode, "insufficient stock")

	ProductReferenceRequiredErr = zerror.NewValidationFailed(ProductReferenceRequiredCode, "a product reference is required")
)
