package handlers

import (
	"context"
	"net/http"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/service"
	"go_course_progress/internal/webutil"

	"github.com/google/uuid"
)

type QuizHandler struct {
	quiz     service.QuizService
	progress service.ProgressService
}

func NewQuizHandler(quiz service.QuizService, progress service.ProgressService) *QuizHandler {
	return &QuizHandler{quiz: quiz, progress: progress}
}

// resolve はユーザーのコース受講登録とモジュールIDを取り出します。
func (h *QuizHandler) resolve(ctx context.Context, r *http.Request) (enrollmentID, moduleID uuid.UUID, err error) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	courseID, err := uuidParam(r, "courseId", "courseId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	moduleID, err = uuidParam(r, "moduleId", "moduleId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	enrollment, err := h.progress.FindEnrollment(ctx, userID, courseID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return enrollment.ID, moduleID, nil
}

func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	enrollmentID, moduleID, err := h.resolve(ctx, r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SubmitAttemptRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	attempt, err := h.quiz.RecordAttempt(ctx, enrollmentID, moduleID, req.Indexes())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, model.NewAttemptResponse(attempt), logger)
}

func (h *QuizHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	enrollmentID, moduleID, err := h.resolve(ctx, r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	attempts, err := h.quiz.ListAttempts(ctx, enrollmentID, moduleID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp := make([]model.AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		resp = append(resp, model.NewAttemptResponse(a))
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}
