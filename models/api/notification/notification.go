package notificationapimodels

import (
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	dbmodels "amia-backend/models/db"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// DisplayName "Имя (email)" либо только email
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name + " (" + u.Email + ")"
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

type EventRequestPayload struct {
	EventRequestID string                    `json:"event_request_id"`
	Update         models.EventRequestUpdate `json:"update"`
	User           User                      `json:"user"`
}

func (p EventRequestPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"type":             models.NotificationTypeEventRequest,
		"event_request_id": p.EventRequestID,
		"update":           p.Update,
		"user":             p.User,
	}
}

type ApprovalPayload struct {
	EventRequestID string               `json:"event_request_id"`
	ApprovalID     string               `json:"approval_id"`
	Status         models.ApprovalState `json:"status"`
	User           User                 `json:"user"`
}

func (p ApprovalPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"type":             models.NotificationTypeApproval,
		"event_request_id": p.EventRequestID,
		"approval_id":      p.ApprovalID,
		"status":           p.Status,
		"user":             p.User,
	}
}

type NotificationView struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload"`
	IsRead    bool                   `json:"is_read"`
	IsDeleted bool                   `json:"is_deleted"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func NotificationConvert(rec dbmodels.Notification) NotificationView {
	payload := map[string]interface{}(rec.Payload)
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return NotificationView{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Message:   rec.Message,
		Payload:   payload,
		IsRead:    rec.IsRead,
		IsDeleted: rec.IsDeleted,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type NotificationFilter struct {
	apimodels.Scroll
	IsRead    *bool `json:"is_read"`
	IsDeleted *bool `json:"is_deleted"`
}

func (f NotificationFilter) ToMap() map[string]any {
	result := map[string]any{}
	if f.IsRead != nil {
		result["is_read"] = *f.IsRead
	}
	if f.IsDeleted != nil {
		result["is_deleted"] = *f.IsDeleted
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

type NotificationList struct {
	Notifications []NotificationView `json:"notifications"`
	Count         int                `json:"count"`
	TotalCount    int64              `json:"total_count"`
	Skip          int                `json:"skip"`
	Take          int                `json:"take"`
	Filters       map[string]any     `json:"filters,omitempty"`
}

type NotificationUpdateData struct {
	IsRead    *bool `json:"is_read"`
	IsDeleted *bool `json:"is_deleted"`
}

type MarkAllReadView struct {
	UpdatedCount int64 `json:"updated_count"`
}
