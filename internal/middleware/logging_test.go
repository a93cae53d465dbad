// internal/middleware/logging_test.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		lines = append(lines, entry)
	}
	return lines
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"rating":5}`, string(body), "ボディは後段でも読める")
		assert.NotSame(t, slog.Default(), GetLogger(r.Context()), "リクエスト用ロガーが格納される")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{}}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/x/reviews", strings.NewReader(`{"rating":5}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	rr := httptest.NewRecorder()
	LoggingMiddleware(logger)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "Request started", lines[0]["msg"])
	assert.Equal(t, "Request completed", lines[1]["msg"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, float64(http.StatusConflict), lines[1]["status"])
	assert.Equal(t, "Request detail", lines[2]["msg"])
	assert.NotContains(t, buf.String(), "secret-token")
	assert.Equal(t, `{"error":{}}`, lines[3]["body"])
}

func TestLoggingMiddleware_InfoLevelSkipsDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	LoggingMiddleware(logger)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[1]["level"])
	assert.Equal(t, float64(2), lines[1]["bytes_out"])
}

func TestFormatHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set("Cookie", "a=b")
	h.Add("Accept", "application/json")
	h.Add("Accept", "text/plain")

	got := formatHeaders(h)
	assert.Equal(t, "[SENSITIVE]", got["Authorization"])
	assert.Equal(t, "[SENSITIVE]", got["Cookie"])
	assert.Equal(t, "application/json, text/plain", got["Accept"])
}
