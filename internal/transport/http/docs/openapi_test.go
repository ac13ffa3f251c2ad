package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T) Document {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	return doc
}

func TestHandler_ServesDocument(t *testing.T) {
	doc := fetch(t)
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "User Service API", doc.Info.Title)
	assert.Contains(t, doc.Components.SecuritySchemes, "BearerAuth")
}

func TestSpec_DescribesEveryRoute(t *testing.T) {
	doc := fetch(t)

	routes := map[string]string{
		"/api/register":               "post",
		"/api/login":                  "post",
		"/api/request-password-reset": "post",
		"/api/reset-password":         "put",
		"/api/getusers":               "get",
		"/api/{id}":                   "get",
		"/api/update/{id}":            "put",
		"/api/delete/{id}":            "delete",
		"/api/change-password/{id}":   "put",
	}
	for path, method := range routes {
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], method, path)
	}
}

func TestSpec_ProtectedRoutesRequireBearer(t *testing.T) {
	doc := Spec()

	assert.NotEmpty(t, doc.Paths["/api/getusers"]["get"].Security)
	assert.NotEmpty(t, doc.Paths["/api/delete/{id}"]["delete"].Security)
	assert.Empty(t, doc.Paths["/api/login"]["post"].Security)
}
