// internal/webutil/response_test.go
package webutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_course_progress/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", model.ErrNotFound, http.StatusNotFound},
		{"InvalidInput", model.NewAppError("X", "x", "", model.ErrInvalidInput), http.StatusBadRequest},
		{"Unauthorized", model.ErrUnauthorized, http.StatusUnauthorized},
		{"Forbidden", model.ErrForbidden, http.StatusForbidden},
		{"Conflict", fmt.Errorf("wrap: %w", model.ErrConflict), http.StatusConflict},
		{"NotEligible", model.ErrNotEligible, http.StatusConflict},
		{"AlreadyReviewed", model.ErrAlreadyReviewed, http.StatusConflict},
		{"Internal", model.Internal(errors.New("db")), http.StatusInternalServerError},
		{"unknown", errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("AppError の詳細を返す", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, logger, model.NewAppError("NOT_ELIGIBLE", "進捗が足りません。", "", model.ErrNotEligible))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var resp model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "NOT_ELIGIBLE", resp.Error.Code)
		assert.Equal(t, "進捗が足りません。", resp.Error.Message)
	})

	t.Run("内部エラーは汎用メッセージに置き換える", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleError(rr, nil, model.NewAppError("DB_ERROR", "select failed: password=xyz", "", model.ErrInternalServer))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var resp model.APIErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "DB_ERROR", resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "password")
	})
}

type reviewBody struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=5"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
		wantMsg   string
	}{
		{"正常系", `{"rating":3,"comment":"ok"}`, "", "", ""},
		{"必須項目なし", `{"comment":"ok"}`, "VALIDATION_ERROR", "rating", "評価は必須項目です。"},
		{"数値の上限", `{"rating":9}`, "VALIDATION_ERROR", "rating", "評価は5以下で入力してください。"},
		{"文字数の上限", `{"rating":1,"comment":"toolong"}`, "VALIDATION_ERROR", "comment", "コメントは5文字以下で入力してください。"},
		{"未知のフィールド", `{"rating":1,"x":1}`, "INVALID_REQUEST_BODY", "", ""},
		{"空ボディ", ``, "INVALID_REQUEST_BODY", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = strings.NewReader(tt.body)
			if tt.body == "" {
				body = nil
			}
			req := httptest.NewRequest(http.MethodPost, "/", body)

			var dst reviewBody
			err := DecodeAndValidate(req, &dst)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, 3, dst.Rating)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
			var appErr *model.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Detail.Code)
			assert.Equal(t, tt.wantField, appErr.Detail.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Detail.Message)
			}
		})
	}
}
