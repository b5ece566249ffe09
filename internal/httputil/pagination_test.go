package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/products?"+rawQuery, nil)
	return c
}

func TestParsePagePagination(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		page, limit, err := ParsePagePagination(contextWithQuery(""), 10)

		require.NoError(t, err)
		assert.Equal(t, 1, page)
		assert.Equal(t, 10, limit)
	})

	t.Run("Success_Explicit", func(t *testing.T) {
		page, limit, err := ParsePagePagination(contextWithQuery("page=3&limit=100"), 10)

		require.NoError(t, err)
		assert.Equal(t, 3, page)
		assert.Equal(t, MaxPageLimit, limit)
	})

	invalid := []struct {
		name    string
		query   string
		message string
	}{
		{"Error_PageZero", "page=0", "invalid page parameter"},
		{"Error_PageNotNumber", "page=two", "invalid page parameter"},
		{"Error_PageEmpty", "page=", "invalid page parameter"},
		{"Error_LimitNegative", "limit=-5", "invalid limit parameter"},
		{"Error_LimitAboveMax", "limit=101", "must be between 1 and 100"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParsePagePagination(contextWithQuery(tt.query), 10)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
