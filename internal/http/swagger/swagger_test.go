package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/phamminhquan/stock-ledger/api-contract"
	"github.com/phamminhquan/stock-ledger/internal/http/swagger"
)

func TestSwaggerDocsRoute(t *testing.T) {
	r := chi.NewRouter()
	swagger.Register(r)

	t.Run("Should get docs successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("Should get openapi.yml successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.yml", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
	})
}

func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	require.NoError(t, doc.Validate(loader.Context))

	assert.Contains(t, doc.Paths.Map(), "/api/products")
	assert.Contains(t, doc.Paths.Map(), "/api/transactions/sale")
}
