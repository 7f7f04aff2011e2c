package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLocalRateLimitBlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.GET("/t", APIRateLimit(3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
}

func TestChatRateLimitIsPerOwner(t *testing.T) {
	r := gin.New()
	r.POST("/chat", ChatRateLimit(1, time.Minute), func(c *gin.Context) {
		var body struct {
			Message string `json:"message"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, body.Message)
	})

	if w := postJSON(r, "/chat", `{"owner":"alice","message":"hi"}`); w.Code != http.StatusOK || w.Body.String() != "hi" {
		t.Fatalf("first alice request: %d %q", w.Code, w.Body.String())
	}
	if w := postJSON(r, "/chat", `{"owner":"alice","message":"again"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second alice request: expected 429 got %d", w.Code)
	}
	if w := postJSON(r, "/chat", `{"user_identifier":"bob","message":"hi"}`); w.Code != http.StatusOK {
		t.Fatalf("bob should have his own budget, got %d", w.Code)
	}
}

func TestChatRateLimitPassesUnkeyedRequests(t *testing.T) {
	r := gin.New()
	r.POST("/chat", ChatRateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	for i := 0; i < 3; i++ {
		if w := postJSON(r, "/chat", `{"message":"no owner"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected handler to see request, got %d", w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(""))
	r.GET("/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })
	chat := r.Group("/chat", ChatCORS())
	chat.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected origin header %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("chat should allow any origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
		t.Fatalf("unexpected methods header %q", got)
	}
}

func TestCORSRestrictedOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://todo.example"))
	r.GET("/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin must not be echoed, got %q", got)
	}
}
