package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runCORS(t *testing.T, allowed []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/api/v1/me/dashboard", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}
	New(allowed)(c)
	return w
}

func TestCORSEchoesAllowedOrigin(t *testing.T) {
	w := runCORS(t, []string{"https://portal.example.edu"}, http.MethodGet, "https://portal.example.edu")
	assert.Equal(t, "https://portal.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, allowedHeaders, w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSOmitsUnknownOrigin(t *testing.T) {
	w := runCORS(t, []string{"https://portal.example.edu"}, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	w := runCORS(t, nil, http.MethodOptions, "https://portal.example.edu")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, allowedMethods, w.Header().Get("Access-Control-Allow-Methods"))
}
