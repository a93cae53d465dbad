package handlers

import (
	"net/http"
	"strconv"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/service"
	"go_course_progress/internal/webutil"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: s}
}

// GetCourseAnalytics は ?timeframe=week|month|year (省略時 month) の集計を返します。
func (h *AnalyticsHandler) GetCourseAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	courseID, err := uuidParam(r, "courseId", "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	query := r.URL.Query()
	timeframe, ok := model.ParseTimeframe(query.Get("timeframe"))
	if !ok {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_TIMEFRAME", "timeframe は week, month, year のいずれかを指定してください。", "timeframe", model.ErrInvalidInput))
		return
	}
	fresh, _ := strconv.ParseBool(query.Get("fresh"))

	report, err := h.service.GetCourseAnalytics(ctx, courseID, timeframe, fresh)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, report, logger)
}
