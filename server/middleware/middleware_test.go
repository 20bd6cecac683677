package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kaproxy-go/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func TestRecovery_Panic(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery(logger.Nop()))
	engine.GET("/boom", func(c *gin.Context) { panic("test panic") })

	rr := serve(engine, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("unexpected error message: %s", body["error"])
	}
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	var seen string
	engine.GET("/", func(c *gin.Context) { seen = c.GetString(ContextKeyRequestID) })

	rr := serve(engine, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if seen == "" || rr.Header().Get(HeaderRequestID) != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, rr.Header().Get(HeaderRequestID))
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(HeaderRequestID, "given")
	rr = serve(engine, req)
	if rr.Header().Get(HeaderRequestID) != "given" {
		t.Errorf("expected incoming id to be kept, got %q", rr.Header().Get(HeaderRequestID))
	}
}

func TestRequestLogger_OmitsQuery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")

	engine := gin.New()
	engine.Use(RequestID(), RequestLogger(log))
	engine.GET("/group/:g/topic/:t", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(engine, httptest.NewRequest(http.MethodGet, "/group/g/topic/t?token=s3cret&timeout=1000", http.NoBody))
	if strings.Contains(buf.String(), "s3cret") {
		t.Errorf("query leaked into logs: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "/group/g/topic/t") {
		t.Errorf("expected path in logs: %s", buf.String())
	}

	buf.Reset()
	serve(engine, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if buf.Len() != 0 {
		t.Errorf("health checks should not be logged: %s", buf.String())
	}
}

func TestAuth(t *testing.T) {
	engine := gin.New()
	engine.Use(Auth(AuthConfig{Tokens: []string{"good"}, QueryParam: "token", SkipPaths: []string{"/health"}}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"header", "/x", "good", http.StatusOK},
		{"query", "/x?token=good", "", http.StatusOK},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"wrong header wins over query", "/x?token=good", "bad", http.StatusUnauthorized},
		{"skipped path", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			if tt.header != "" {
				req.Header.Set(HeaderToken, tt.header)
			}
			if rr := serve(engine, req); rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}

	open := gin.New()
	open.Use(Auth(AuthConfig{}))
	open.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	if rr := serve(open, httptest.NewRequest(http.MethodGet, "/x", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("empty token list should disable auth, got %d", rr.Code)
	}
}
