package apierr

import (
	"errors"
	"net/http"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/phamminhquan/stock-ledger/pkg/validator"
	"github.com/phamminhquan/stock-ledger/pkg/zerror"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the error body for the API.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`

	// StatusCode is the HTTP status for the response, not serialized.
	StatusCode int `json:"-"`
}

var InternalServerErr = ErrorResponse{
	Code:       "internalServerError",
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

// New translates a domain or validation error into an API error response.
// Anything unrecognized collapses into a 500 without leaking detail.
func New(err error) ErrorResponse {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			StatusCode: statusToHTTPStatus(zErr.Status()),
		}
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = FieldError{
				Field:   fe.Field(),
				Message: validator.ValidationErrorMessage(fe),
			}
		}

		return ErrorResponse{
			Code:       "validationError",
			Message:    "validation error",
			Details:    &details,
			StatusCode: http.StatusBadRequest,
		}
	}

	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return ErrorResponse{
			Code:       "validationError",
			Message:    bindErr.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}

	return InternalServerErr
}

func statusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BindError marks a request parameter that failed to parse.
type BindError struct {
	Param string
	Err   error
}

func (e *BindError) Error() string {
	return "invalid parameter " + e.Param + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }
