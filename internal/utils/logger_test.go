package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(ContextLogger(logger), LoggerMiddleware(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	tests := []struct {
		path      string
		wantLevel string
		wantCode  float64
	}{
		{path: "/ok", wantLevel: "INFO", wantCode: 200},
		{path: "/missing", wantLevel: "WARN", wantCode: 404},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			var entry map[string]any
			line := strings.TrimSpace(buf.String())
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				t.Fatalf("log line is not JSON: %q", line)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry["level"], tt.wantLevel)
			}
			if entry["status"] != tt.wantCode {
				t.Errorf("status = %v, want %v", entry["status"], tt.wantCode)
			}
			if entry["request_id"] != "req-42" {
				t.Errorf("request_id = %v", entry["request_id"])
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	fallback := NewSlogLogger(slog.Default())
	ctx := WithLogger(t.Context(), fallback.With("k", "v"))

	if got := FromContext(ctx, fallback); got == fallback {
		t.Error("FromContext returned fallback for a context with a logger")
	}
	if got := FromContext(t.Context(), fallback); got != fallback {
		t.Error("FromContext should return fallback for a bare context")
	}
}
