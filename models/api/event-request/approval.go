package eventrequestapimodels

import (
	"amia-backend/models"
	dbmodels "amia-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type ApproverData struct {
	UserID   string `json:"user_id"`  // ид согласующего
	Required bool   `json:"required"` // обязательное согласование, иначе только уведомление
}

func (a ApproverData) Validate() error {
	if a.UserID == "" {
		return errors.New("отсутсвует идентификатор пользователя")
	}
	return nil
}

type ApprovalCreateData struct {
	EventRequestID string `json:"event_request_id"`
	ApproverData
}

func (a ApprovalCreateData) Validate() error {
	if a.EventRequestID == "" {
		return errors.New("отсутсвует идентификатор заявки")
	}
	return a.ApproverData.Validate()
}

type ApprovalUpdateData struct {
	Status        models.ApprovalState `json:"status"`
	ResponseNotes *string              `json:"response_notes"`
}

func (a ApprovalUpdateData) Validate() error {
	if !a.Status.IsValid() {
		return errors.Errorf("недопустимый статус согласования: %v", a.Status)
	}
	return nil
}

type ApprovalResponseData struct {
	ResponseNotes *string `json:"response_notes"`
}

type ApprovalFilter struct {
	EventRequestID string               `json:"event_request_id"`
	UserID         string               `json:"user_id"`
	Status         models.ApprovalState `json:"status"`
	Required       *bool                `json:"required"`
}

func (f ApprovalFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return errors.Errorf("недопустимый статус согласования: %v", f.Status)
	}
	return nil
}

func (f ApprovalFilter) ToMap() map[string]any {
	result := map[string]any{}
	if f.EventRequestID != "" {
		result["event_request_id"] = f.EventRequestID
	}
	if f.UserID != "" {
		result["user_id"] = f.UserID
	}
	if f.Status != "" {
		result["status"] = f.Status
	}
	if f.Required != nil {
		result["required"] = *f.Required
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

type ApprovalView struct {
	ID             string               `json:"id"`
	EventRequestID string               `json:"event_request_id"`
	UserID         string               `json:"user_id"`
	Required       bool                 `json:"required"`
	Status         models.ApprovalState `json:"status"`
	ResponseNotes  *string              `json:"response_notes"`
	RespondedAt    *time.Time           `json:"responded_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func ApprovalConvert(rec dbmodels.EventRequestApproval) ApprovalView {
	return ApprovalView{
		ID:             rec.ID,
		EventRequestID: rec.EventRequestID,
		UserID:         rec.UserID,
		Required:       rec.Required,
		Status:         rec.Status,
		ResponseNotes:  rec.ResponseNotes,
		RespondedAt:    rec.RespondedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

type ApprovalList struct {
	Approvals []ApprovalView `json:"event_request_approvals"`
	Count     int            `json:"count"`
	Filters   map[string]any `json:"filters,omitempty"`
}

type RequiredCompleteView struct {
	EventRequestID      string `json:"event_request_id"`
	AllRequiredComplete bool   `json:"all_required_complete"`
}

type ApprovalHistoryView struct {
	EventRequestID string               `json:"event_request_id"`
	ApprovalID     string               `json:"approval_id"`
	UserID         string               `json:"user_id"`
	ChangedBy      string               `json:"changed_by"`
	Required       bool                 `json:"required"`
	State          models.ApprovalState `json:"state"`
	Comment        string               `json:"comment"`
	CreatedAt      time.Time            `json:"created_at"`
}

func ApprovalHistoryConvert(rec dbmodels.ApprovalHistory) ApprovalHistoryView {
	return ApprovalHistoryView{
		EventRequestID: rec.EventRequestID,
		ApprovalID:     rec.ApprovalID,
		UserID:         rec.UserID,
		ChangedBy:      rec.ChangedBy,
		Required:       rec.Required,
		State:          rec.State,
		Comment:        rec.Comment,
		CreatedAt:      rec.CreatedAt,
	}
}
