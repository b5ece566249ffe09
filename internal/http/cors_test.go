package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRouter(t *testing.T, enabled bool, origins string) *gin.Engine {
	t.Helper()
	router := gin.New()
	if middleware := createCORSMiddleware(enabled, origins, discardLogger()); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/cart/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return router
}

func sendWithOrigin(router *gin.Engine, method, path, origin string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCORSMiddleware(t *testing.T) {
	t.Run("Success_DisabledReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://shop.example.com", discardLogger()))
	})

	t.Run("Success_NoOriginsReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, " , ", discardLogger()))
	})

	t.Run("Success_ExplicitOriginWithCredentials", func(t *testing.T) {
		router := corsRouter(t, true, "https://shop.example.com/, https://admin.example.com")

		w := sendWithOrigin(router, http.MethodGet, "/api/products", "https://shop.example.com", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
	})

	t.Run("Error_UnknownOriginRejected", func(t *testing.T) {
		router := corsRouter(t, true, "https://shop.example.com")

		w := sendWithOrigin(router, http.MethodGet, "/api/products", "https://evil.example.com", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Success_WildcardWithoutCredentials", func(t *testing.T) {
		router := corsRouter(t, true, "*")

		w := sendWithOrigin(router, http.MethodGet, "/api/products", "https://anywhere.example.com", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Success_Preflight", func(t *testing.T) {
		router := corsRouter(t, true, "https://shop.example.com")

		w := sendWithOrigin(router, http.MethodOptions, "/api/cart/items", "https://shop.example.com", map[string]string{
			"Access-Control-Request-Method":  http.MethodPost,
			"Access-Control-Request-Headers": "Authorization",
		})

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("Success_DisabledSendsNoHeaders", func(t *testing.T) {
		router := corsRouter(t, false, "https://shop.example.com")

		w := sendWithOrigin(router, http.MethodGet, "/api/products", "https://shop.example.com", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Empty", input: "", expected: nil},
		{name: "TrimsWhitespace", input: " https://a.com , https://b.com ", expected: []string{"https://a.com", "https://b.com"}},
		{name: "DropsTrailingSlash", input: "https://a.com/", expected: []string{"https://a.com"}},
		{name: "DropsDuplicatesAndBlanks", input: "https://a.com,,https://a.com/", expected: []string{"https://a.com"}},
		{name: "Wildcard", input: "*", expected: []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}
