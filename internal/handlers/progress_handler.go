// internal/handlers/progress_handler.go
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

type ProgressHandler struct {
	service service.ProgressService
}

func NewProgressHandler(s service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: s}
}

// ownEnrollment は URL の enrollmentId が認証ユーザーのものか確認します。
func (h *ProgressHandler) ownEnrollment(ctx context.Context, r *http.Request) (uuid.UUID, error) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	enrollmentID, err := uuidParam(r, "enrollmentId", "enrollmentId")
	if err != nil {
		return uuid.Nil, err
	}
	enrollment, err := h.service.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return uuid.Nil, err
	}
	if enrollment.UserID != userID {
		middleware.GetLogger(ctx).Warn("Enrollment belongs to another user", "enrollment_id", enrollmentID)
		return uuid.Nil, model.NewAppError("FORBIDDEN", "この受講登録にはアクセスできません。", "enrollmentId", model.ErrForbidden)
	}
	return enrollmentID, nil
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	enrollmentID, err := h.ownEnrollment(ctx, r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.GetProgress(ctx, enrollmentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	enrollmentID, err := h.ownEnrollment(ctx, r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := uuidParam(r, "lessonId", "lessonId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	update, err := h.service.MarkLessonComplete(ctx, enrollmentID, lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, update, logger)
}

func (h *ProgressHandler) SetCurrentLesson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	enrollmentID, err := h.ownEnrollment(ctx, r)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SetCurrentLessonRequest
	if err := webutil.DecodeAndValidate(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_ID", "lessonId の形式が正しくありません。", "lessonId", model.ErrInvalidInput))
		return
	}

	progress, err := h.service.SetCurrentLesson(ctx, enrollmentID, lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, progress, logger)
}

// CompleteModule はセッションのユーザーとコースから受講登録を特定してモジュールを完了にします。
func (h *ProgressHandler) CompleteModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, err := uuidParam(r, "courseId", "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := uuidParam(r, "moduleId", "moduleId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	enrollment, err := h.service.FindEnrollment(ctx, userID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	update, err := h.service.MarkModuleComplete(ctx, enrollment.ID, moduleID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, update, logger)
}
