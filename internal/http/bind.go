package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/phamminhquan/stock-ledger/internal/apperr"
	"github.com/phamminhquan/stock-ledger/internal/http/apierr"
)

var errMissingParam = errors.New("query parameter is required")

// bindQuery binds a single query parameter into dest. Missing optional
// parameters leave dest untouched. Presence of required parameters is checked
// here: the exploded-form binder does not enforce required for every
// destination type (time.Time among them).
func bindQuery[T any](r *http.Request, name string, required bool, dest *T) error {
	query := r.URL.Query()

	if required && !query.Has(name) {
		return &apierr.BindError{Param: name, Err: errMissingParam}
	}

	if err := runtime.BindQueryParameter("form", true, required, name, query, dest); err != nil {
		return &apierr.BindError{Param: name, Err: err}
	}
	return nil
}

func bindPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &apierr.BindError{Param: name, Err: err}
	}
	return id, nil
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func respondNoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}
