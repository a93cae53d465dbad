package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate は修了証です。(ユーザー, コース) ごとに最大1件で、削除しません。
type Certificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index:idx_certificate_user_course,unique"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;index:idx_certificate_user_course,unique;index"`
	EnrollmentID      uuid.UUID `gorm:"type:uuid;not null"`
	CertificateNumber string    `gorm:"not null;uniqueIndex"`
	IssuedAt          time.Time `gorm:"not null;index"`
}

// IssueOutcome は generate の結果種別です。
type IssueOutcome string

const (
	IssueCreated       IssueOutcome = "created"
	IssueAlreadyIssued IssueOutcome = "already_issued"
	IssueFailed        IssueOutcome = "failed"
	IssueNotEligible   IssueOutcome = "not_eligible"
)

// CertificateState は (ユーザー, コース) ごとの発行状態です。
type CertificateState string

const (
	StateNotEligible CertificateState = "not_eligible"
	StateEligible    CertificateState = "eligible"
	StateIssued      CertificateState = "issued"
)

// CertificateResponse は修了証のレスポンスDTO
type CertificateResponse struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	CourseID          uuid.UUID `json:"courseId"`
	CertificateNumber string    `json:"certificateNumber"`
	IssuedAt          time.Time `json:"issuedAt"`
}

func NewCertificateResponse(c *Certificate) *CertificateResponse {
	if c == nil {
		return nil
	}
	return &CertificateResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		CourseID:          c.CourseID,
		CertificateNumber: c.CertificateNumber,
		IssuedAt:          c.IssuedAt,
	}
}

// CertificateIssue は発行試行の結果です。進捗更新レスポンスにも埋め込まれます。
type CertificateIssue struct {
	Status      IssueOutcome         `json:"status"`
	Certificate *CertificateResponse `json:"certificate,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// CertificateStatusResponse は発行状態照会のレスポンスDTO
type CertificateStatusResponse struct {
	State       CertificateState     `json:"state"`
	Percentage  int                  `json:"percentage"`
	Certificate *CertificateResponse `json:"certificate,omitempty"`
}
