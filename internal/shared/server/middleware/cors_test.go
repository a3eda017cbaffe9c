package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

const devOrigin = "http://localhost:5173"

func corsRouter(allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(allowed))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	router.GET("/api/v1/health", ok)
	router.POST("/api/v1/questionnaire/process", ok)
	return router
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name        string
		allowed     []string
		method      string
		path        string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantMethods bool
	}{
		{name: "preflight", allowed: []string{devOrigin}, method: http.MethodOptions, path: "/api/v1/questionnaire/process", origin: devOrigin, wantStatus: http.StatusNoContent, wantOrigin: devOrigin, wantCreds: "true", wantMethods: true},
		{name: "simple_post", allowed: []string{devOrigin + "/"}, method: http.MethodPost, path: "/api/v1/questionnaire/process", origin: devOrigin, wantStatus: http.StatusOK, wantOrigin: devOrigin, wantCreds: "true", wantMethods: true},
		{name: "unknown_origin", allowed: []string{devOrigin}, method: http.MethodGet, path: "/api/v1/health", origin: "http://evil.example", wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, method: http.MethodGet, path: "/api/v1/health", origin: "https://any.example", wantStatus: http.StatusOK, wantOrigin: "*", wantMethods: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Origin", tc.origin)
			resp := httptest.NewRecorder()
			corsRouter(tc.allowed...).ServeHTTP(resp, req)

			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.Code)
			}
			h := resp.Header()
			if got := h.Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("expected Allow-Origin %q, got %q", tc.wantOrigin, got)
			}
			if got := h.Get("Access-Control-Allow-Credentials"); got != tc.wantCreds {
				t.Fatalf("expected Allow-Credentials %q, got %q", tc.wantCreds, got)
			}
			if tc.wantMethods && (h.Get("Access-Control-Allow-Methods") == "" || h.Get("Access-Control-Max-Age") != "600") {
				t.Fatalf("expected methods and max-age headers, got %v", h)
			}
		})
	}
}
