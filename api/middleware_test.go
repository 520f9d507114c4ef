package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raushankrgupta/product-page-generator/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareSetsSubject(t *testing.T) {
	var subject string
	var logged strings.Builder
	h := AuthMiddleware("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		subject, err = GetSubjectFromContext(r.Context())
		require.NoError(t, err)
		logSubject(&logged, r)
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := utils.GenerateToken("secret", "admin", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "admin", subject)
	assert.Equal(t, "Subject: admin;\n", logged.String())
}

func TestSubjectMissingWithoutAuth(t *testing.T) {
	var logged strings.Builder
	h := AuthMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := GetSubjectFromContext(r.Context())
		assert.Error(t, err)
		logSubject(&logged, r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	assert.Empty(t, logged.String())
}
