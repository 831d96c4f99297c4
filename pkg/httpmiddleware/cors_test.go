package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(h http.Handler, method, origin string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS_WildcardOrigin(t *testing.T) {
	h := CORS(CORSConfig{})(okHandler())

	w := corsRequest(h, http.MethodGet, "http://example.com", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowedOriginList(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example.com"}})(okHandler())

	w := corsRequest(h, http.MethodGet, "https://shop.example.com", nil)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = corsRequest(h, http.MethodGet, "https://evil.example.com", nil)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	// The request itself still reaches the handler; enforcement is up to the
	// browser.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_NoOriginHeader(t *testing.T) {
	h := CORS(CORSConfig{})(okHandler())

	w := corsRequest(h, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(CORSConfig{MaxAge: 600})(okHandler())

	w := corsRequest(h, http.MethodOptions, "http://example.com", map[string]string{
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_PreflightDisallowedOrigin(t *testing.T) {
	h := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example.com"}})(okHandler())

	w := corsRequest(h, http.MethodOptions, "https://evil.example.com", map[string]string{
		"Access-Control-Request-Method": "GET",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CredentialsEchoesOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowOrigins:     []string{"https://shop.example.com"},
		AllowCredentials: true,
	})(okHandler())

	w := corsRequest(h, http.MethodGet, "https://shop.example.com", nil)

	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestWrap_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(okHandler(), tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}
