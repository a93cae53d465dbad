package handlers

import (
	"net/http"

	"go_course_progress/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// uuidParam は URL パラメータを UUID として取り出します。field はエラー時に返すフィールド名。
func uuidParam(r *http.Request, name, field string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewAppError("INVALID_ID", field+" の形式が正しくありません: "+raw, field, model.ErrInvalidInput)
	}
	return id, nil
}
