package handlers

import (
	"net/http"

	"go_course_progress/internal/middleware"
	"go_course_progress/internal/model"
	"go_course_progress/internal/service"
	"go_course_progress/internal/webutil"
)

type CertificateHandler struct {
	service service.CertificateService
}

func NewCertificateHandler(s service.CertificateService) *CertificateHandler {
	return &CertificateHandler{service: s}
}

// Generate は初回発行で 201、発行済みなら 200 で既存の修了証を返します。
func (h *CertificateHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	cert, outcome, err := h.service.Generate(ctx, userID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp := model.CertificateIssue{Status: outcome, Certificate: model.NewCertificateResponse(cert)}
	status := http.StatusCreated
	if outcome == model.IssueAlreadyIssued {
		status = http.StatusOK
		resp.Message = "修了証は発行済みです。"
	}
	webutil.RespondWithJSON(w, status, resp, logger)
}

func (h *CertificateHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.service.GetStatus(ctx, userID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, status, logger)
}
