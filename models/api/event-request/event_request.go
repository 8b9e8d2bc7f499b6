package eventrequestapimodels

import (
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	dbmodels "amia-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type EventRequestData struct {
	GoogleEventID   *string          `json:"google_event_id"`  // ид события в Google Calendar
	Title           *string          `json:"title"`            // название
	Location        *string          `json:"location"`         // место проведения
	Description     *string          `json:"description"`      // описание
	StartDate       models.EventDate `json:"start_date"`       // начало
	EndDate         models.EventDate `json:"end_date"`         // окончание
	ImportanceLevel int              `json:"importance_level"` // важность от 1 до 5
	Notes           *string          `json:"notes"`            // заметки
}

func (v EventRequestData) Validate() error {
	if v.StartDate.IsZero() {
		return errors.New("не указана дата начала")
	}
	if v.EndDate.IsZero() {
		return errors.New("не указана дата окончания")
	}
	return nil
}

type EventRequestCreateData struct {
	EventRequestData
	Approvers []ApproverData `json:"approvers"` // согласующие
}

func (v EventRequestCreateData) Validate() error {
	if err := v.EventRequestData.Validate(); err != nil {
		return err
	}
	for _, approver := range v.Approvers {
		if err := approver.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EventRequestEditData частичное обновление, изменяются только переданные поля
type EventRequestEditData struct {
	GoogleEventID   *string               `json:"google_event_id"`
	Title           *string               `json:"title"`
	Location        *string               `json:"location"`
	Description     *string               `json:"description"`
	StartDate       *models.EventDate     `json:"start_date"`
	EndDate         *models.EventDate     `json:"end_date"`
	ImportanceLevel *int                  `json:"importance_level"`
	Status          *models.RequestStatus `json:"status"`
	Notes           *string               `json:"notes"`
}

func (v EventRequestEditData) Validate() error {
	if v.Status != nil && !v.Status.IsValid() {
		return errors.Errorf("недопустимый статус заявки: %v", *v.Status)
	}
	return nil
}

type EventRequestView struct {
	EventRequestData
	ID        string               `json:"id"`
	Status    models.RequestStatus `json:"status"`
	CreatedBy string               `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func EventRequestConvert(rec dbmodels.EventRequest) EventRequestView {
	return EventRequestView{
		EventRequestData: EventRequestData{
			GoogleEventID:   rec.GoogleEventID,
			Title:           rec.Title,
			Location:        rec.Location,
			Description:     rec.Description,
			StartDate:       rec.StartDate,
			EndDate:         rec.EndDate,
			ImportanceLevel: rec.ImportanceLevel,
			Notes:           rec.Notes,
		},
		ID:        rec.ID,
		Status:    rec.Status,
		CreatedBy: rec.CreatedBy,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type EventRequestWithApprovalsView struct {
	EventRequestView
	ApprovalStatus     models.AggregatedApprovalStatus `json:"approval_status"`     // сводный статус согласования
	RequestedApprovals int64                           `json:"requested_approvals"` // всего согласующих
	CompletedCount     int64                           `json:"completed_count"`     // ответили (не pending)
}

func EventRequestWithApprovalsConvert(rec dbmodels.EventRequestWithApprovals) EventRequestWithApprovalsView {
	return EventRequestWithApprovalsView{
		EventRequestView:   EventRequestConvert(rec.EventRequest),
		ApprovalStatus:     rec.ApprovalStatus(),
		RequestedApprovals: rec.RequestedApprovals,
		CompletedCount:     rec.CompletedCount,
	}
}

type EventRequestWithApproversView struct {
	EventRequestView
	Approvers []ApprovalView `json:"approvers"`
}

func EventRequestWithApproversConvert(rec dbmodels.EventRequest) EventRequestWithApproversView {
	approvers := make([]ApprovalView, 0, len(rec.Approvals))
	for _, approval := range rec.Approvals {
		approvers = append(approvers, ApprovalConvert(approval))
	}
	return EventRequestWithApproversView{
		EventRequestView: EventRequestConvert(rec),
		Approvers:        approvers,
	}
}

type EventRequestFilter struct {
	Status          models.RequestStatus `json:"status"`
	ImportanceLevel *int                 `json:"importance_level"`
	StartDateFrom   *time.Time           `json:"start_date_from"`
	StartDateTo     *time.Time           `json:"start_date_to"`
	CreatedBy       string               `json:"created_by"`
}

func (f EventRequestFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return errors.Errorf("недопустимый статус заявки: %v", f.Status)
	}
	if f.ImportanceLevel != nil &&
		(*f.ImportanceLevel < models.MinImportanceLevel || *f.ImportanceLevel > models.MaxImportanceLevel) {
		return errors.New("важность должна быть от 1 до 5")
	}
	return nil
}

// ToMap примененные фильтры для ответа
func (f EventRequestFilter) ToMap() map[string]any {
	result := map[string]any{}
	if f.Status != "" {
		result["status"] = f.Status
	}
	if f.ImportanceLevel != nil {
		result["importance_level"] = *f.ImportanceLevel
	}
	if f.StartDateFrom != nil {
		result["start_date_from"] = f.StartDateFrom.Format(time.RFC3339)
	}
	if f.StartDateTo != nil {
		result["start_date_to"] = f.StartDateTo.Format(time.RFC3339)
	}
	if f.CreatedBy != "" {
		result["created_by"] = f.CreatedBy
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

type EventRequestList struct {
	EventRequests []EventRequestView `json:"event_requests"`
	Count         int                `json:"count"`
	Filters       map[string]any     `json:"filters,omitempty"`
}

type WithApprovalsFilter struct {
	apimodels.Scroll
	Status models.RequestStatus `json:"status"`
}

func (f WithApprovalsFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return errors.Errorf("недопустимый статус заявки: %v", f.Status)
	}
	return f.Scroll.Validate()
}

type EventRequestWithApprovalsPage struct {
	EventRequests []EventRequestWithApprovalsView `json:"event_requests"`
	Count         int                             `json:"count"`
	TotalCount    int64                           `json:"total_count"`
	Skip          int                             `json:"skip"`
	Take          int                             `json:"take"`
	Filters       map[string]any                  `json:"filters,omitempty"`
}
