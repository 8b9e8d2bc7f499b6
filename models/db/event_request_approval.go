package dbmodels

import (
	"amia-backend/models"
	"time"
)

type EventRequestApproval struct {
	BaseModel
	EventRequestID string               `gorm:"type:varchar(36);not null;uniqueIndex:idx_approval_request_user"`
	UserID         string               `gorm:"type:varchar(36);not null;uniqueIndex:idx_approval_request_user;index"`
	Required       bool                 `gorm:"not null;default:false"`
	Status         models.ApprovalState `gorm:"type:varchar(20);index;not null;default:pending"`
	ResponseNotes  *string
	RespondedAt    *time.Time
}

type ApprovalHistory struct {
	BaseModel
	EventRequestID string               `gorm:"type:varchar(36);index"`
	ApprovalID     string               `gorm:"type:varchar(36)"`
	UserID         string               `gorm:"type:varchar(36)"`
	ChangedBy      string               `gorm:"type:varchar(36)"`
	Required       bool
	State          models.ApprovalState `gorm:"type:varchar(20)"`
	Comment        string
}
