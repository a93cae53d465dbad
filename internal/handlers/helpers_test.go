// internal/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_course_progress/internal/config"
	"go_course_progress/internal/handlers"
	"go_course_progress/internal/model"
	"go_course_progress/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

// testEnv はモックを注入したルーター一式です。
type testEnv struct {
	router      http.Handler
	progress    *mocks.ProgressService
	quiz        *mocks.QuizService
	certificate *mocks.CertificateService
	analytics   *mocks.AnalyticsService
	review      *mocks.ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPinger(t, fakePinger{})
}

func newTestEnvWithPinger(t *testing.T, db handlers.Pinger) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}

	env := &testEnv{
		progress:    mocks.NewProgressService(t),
		quiz:        mocks.NewQuizService(t),
		certificate: mocks.NewCertificateService(t),
		analytics:   mocks.NewAnalyticsService(t),
		review:      mocks.NewReviewService(t),
	}
	env.router = handlers.NewRouter(cfg, logger, db, handlers.Handlers{
		Progress:    handlers.NewProgressHandler(env.progress),
		Quiz:        handlers.NewQuizHandler(env.quiz, env.progress),
		Certificate: handlers.NewCertificateHandler(env.certificate),
		Analytics:   handlers.NewAnalyticsHandler(env.analytics),
		Review:      handlers.NewReviewHandler(env.review),
	})
	return env
}

// do はリクエストを送り、レスポンスを返します。body が string の場合はそのまま送る。
// userID が uuid.Nil の場合は X-User-ID ヘッダーを付けない。
func (e *testEnv) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var resp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body: %s", rr.Body.String())
	return resp.Error
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), "body: %s", rr.Body.String())
}

func intPtr(i int) *int { return &i }
