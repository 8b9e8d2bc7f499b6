package dbmodels

import (
	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID    string            `gorm:"type:varchar(36);index:idx_notification_user;not null"`
	Title     string            `gorm:"type:varchar(255);not null"`
	Message   string            `gorm:"type:varchar(1000);not null"`
	Payload   datatypes.JSONMap
	IsRead    bool              `gorm:"not null;default:false"`
	IsDeleted bool              `gorm:"not null;default:false"`
}
