package dbmodels

import (
	"amia-backend/models"
	"time"
)

type EventRequest struct {
	BaseModel
	GoogleEventID   *string                `gorm:"type:varchar(255);index"`
	Title           *string                `gorm:"type:varchar(255)"`
	Location        *string                `gorm:"type:varchar(255)"`
	Description     *string
	StartDate       models.EventDate       `gorm:"type:jsonb"`
	EndDate         models.EventDate       `gorm:"type:jsonb"`
	StartAt         *time.Time             `gorm:"index"` // для фильтрации и сортировки по дате начала
	ImportanceLevel int                    `gorm:"not null;default:1"`
	Status          models.RequestStatus   `gorm:"type:varchar(20);index;not null;default:pending"`
	Notes           *string
	CreatedBy       string                 `gorm:"type:varchar(36);index;not null"`
	Approvals       []EventRequestApproval `gorm:"foreignKey:EventRequestID"`
}

// EventRequestWithApprovals строка сводного представления: заявка и счетчики согласований
type EventRequestWithApprovals struct {
	EventRequest
	RequestedApprovals int64
	ApprovedCount      int64
	RejectedCount      int64
	CompletedCount     int64
}

func (r EventRequestWithApprovals) ApprovalStatus() models.AggregatedApprovalStatus {
	return models.AggregateApprovalStatus(r.RequestedApprovals, r.ApprovedCount, r.RejectedCount)
}
