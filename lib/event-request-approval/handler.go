package eventrequestapprovalhandler

import (
	approvalhistorystore "amia-backend/lib/event-request-approval/history-store"
	approvalstore "amia-backend/lib/event-request-approval/store"
	eventrequeststore "amia-backend/lib/event-request/store"
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	dbmodels "amia-backend/models/db"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	CreateBatch(callerID, eventRequestID string, approvers []eventrequestapimodels.ApproverData) ([]eventrequestapimodels.ApprovalView, error)
	Create(callerID string, data eventrequestapimodels.ApprovalCreateData) (*eventrequestapimodels.ApprovalView, error)
	Get(id string) (*eventrequestapimodels.ApprovalView, error)
	List(filter eventrequestapimodels.ApprovalFilter) ([]eventrequestapimodels.ApprovalView, error)
	ListByRequest(eventRequestID string) ([]eventrequestapimodels.ApprovalView, error)
	ListPendingForUser(userID string) ([]eventrequestapimodels.ApprovalView, error)
	Update(id, callerID string, data eventrequestapimodels.ApprovalUpdateData) (*eventrequestapimodels.ApprovalView, error)
	Approve(id, callerID string, notes *string) (*eventrequestapimodels.ApprovalView, error)
	Reject(id, callerID string, notes *string) (*eventrequestapimodels.ApprovalView, error)
	Delete(id, callerID string) (*eventrequestapimodels.ApprovalView, error)
	DeleteByRequest(eventRequestID string) error
	AllRequiredComplete(eventRequestID string) (bool, error)
	History(eventRequestID string) ([]eventrequestapimodels.ApprovalHistoryView, error)
}

func NewHandler(DB *gorm.DB) Provider {
	return NewHandlerWithTx(DB)
}

// NewHandlerWithTx обработчик поверх транзакции, используется при создании/удалении заявки
func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store:                approvalstore.NewInstance(tx),
		eventRequestStore:    eventrequeststore.NewInstance(tx),
		approvalHistoryStore: approvalhistorystore.NewInstance(tx),
	}
}

type impl struct {
	store                approvalstore.Provider
	eventRequestStore    eventrequeststore.Provider
	approvalHistoryStore approvalhistorystore.Provider
}

func (i impl) GetLogger(eventRequestID string) *log.Entry {
	logger := log.
		WithField("event_request_id", eventRequestID)
	return logger
}

func (i impl) CreateBatch(callerID, eventRequestID string, approvers []eventrequestapimodels.ApproverData) ([]eventrequestapimodels.ApprovalView, error) {
	list := make([]dbmodels.EventRequestApproval, 0, len(approvers))
	for _, approver := range approvers {
		if err := approver.Validate(); err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		list = append(list, dbmodels.EventRequestApproval{
			EventRequestID: eventRequestID,
			UserID:         approver.UserID,
			Required:       approver.Required,
			Status:         models.AStatePending,
		})
	}
	created, err := i.store.CreateBatch(list)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("согласующий указан несколько раз")
		}
		return nil, apperrors.Persistence(err, "ошибка создания согласований")
	}
	result := make([]eventrequestapimodels.ApprovalView, 0, len(created))
	for _, rec := range created {
		i.Audit(rec, callerID)
		result = append(result, eventrequestapimodels.ApprovalConvert(rec))
	}
	return result, nil
}

func (i impl) Create(callerID string, data eventrequestapimodels.ApprovalCreateData) (*eventrequestapimodels.ApprovalView, error) {
	if err := data.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	request, err := i.eventRequestStore.GetByID(data.EventRequestID)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявки")
	}
	if request == nil {
		return nil, apperrors.NotFound("заявка не найдена")
	}
	if request.CreatedBy != callerID {
		return nil, apperrors.Permission("добавлять согласующих может только автор заявки")
	}
	exist, err := i.store.Exist(data.EventRequestID, data.UserID)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка проверки согласования")
	}
	if exist {
		return nil, apperrors.Conflict("пользователь уже указан согласующим по заявке")
	}
	rec := dbmodels.EventRequestApproval{
		EventRequestID: data.EventRequestID,
		UserID:         data.UserID,
		Required:       data.Required,
		Status:         models.AStatePending,
	}
	created, err := i.store.Create(rec)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("пользователь уже указан согласующим по заявке")
		}
		return nil, apperrors.Persistence(err, "ошибка создания согласования")
	}
	i.Audit(*created, callerID)
	result := eventrequestapimodels.ApprovalConvert(*created)
	return &result, nil
}

func (i impl) Get(id string) (*eventrequestapimodels.ApprovalView, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	result := eventrequestapimodels.ApprovalConvert(*rec)
	return &result, nil
}

func (i impl) List(filter eventrequestapimodels.ApprovalFilter) ([]eventrequestapimodels.ApprovalView, error) {
	if err := filter.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	list, err := i.store.List(filter)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения списка согласований")
	}
	result := make([]eventrequestapimodels.ApprovalView, 0, len(list))
	for _, rec := range list {
		result = append(result, eventrequestapimodels.ApprovalConvert(rec))
	}
	return result, nil
}

func (i impl) ListByRequest(eventRequestID string) ([]eventrequestapimodels.ApprovalView, error) {
	return i.List(eventrequestapimodels.ApprovalFilter{EventRequestID: eventRequestID})
}

func (i impl) ListPendingForUser(userID string) ([]eventrequestapimodels.ApprovalView, error) {
	return i.List(eventrequestapimodels.ApprovalFilter{
		UserID: userID,
		Status: models.AStatePending,
	})
}

func (i impl) Update(id, callerID string, data eventrequestapimodels.ApprovalUpdateData) (*eventrequestapimodels.ApprovalView, error) {
	if err := data.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != callerID {
		return nil, apperrors.Permission("ответить на согласование может только согласующий")
	}
	if !rec.Status.AllowChange(data.Status) {
		return nil, apperrors.Validationf("нельзя вернуть согласование из статуса %v в %v", rec.Status, data.Status)
	}
	updMap := map[string]interface{}{
		"status": data.Status,
	}
	if data.Status.IsResponded() {
		updMap["responded_at"] = time.Now()
	} else {
		updMap["responded_at"] = nil
	}
	if data.ResponseNotes != nil {
		updMap["response_notes"] = *data.ResponseNotes
	}
	err = i.store.Update(id, updMap)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка обновления согласования")
	}
	updated, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	i.Audit(*updated, callerID)
	result := eventrequestapimodels.ApprovalConvert(*updated)
	return &result, nil
}

func (i impl) Approve(id, callerID string, notes *string) (*eventrequestapimodels.ApprovalView, error) {
	return i.Update(id, callerID, eventrequestapimodels.ApprovalUpdateData{
		Status:        models.AStateApproved,
		ResponseNotes: notes,
	})
}

func (i impl) Reject(id, callerID string, notes *string) (*eventrequestapimodels.ApprovalView, error) {
	return i.Update(id, callerID, eventrequestapimodels.ApprovalUpdateData{
		Status:        models.AStateRejected,
		ResponseNotes: notes,
	})
}

// Delete удалить согласование может сам согласующий или автор заявки
func (i impl) Delete(id, callerID string) (*eventrequestapimodels.ApprovalView, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != callerID {
		request, err := i.eventRequestStore.GetByID(rec.EventRequestID)
		if err != nil {
			return nil, apperrors.Persistence(err, "ошибка получения заявки")
		}
		if request == nil || request.CreatedBy != callerID {
			return nil, apperrors.Permission("нет прав на удаление согласования")
		}
	}
	err = i.store.Delete(id)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка удаления согласования")
	}
	result := eventrequestapimodels.ApprovalConvert(*rec)
	rec.Status = models.AStateRemoved
	i.Audit(*rec, callerID)
	return &result, nil
}

func (i impl) DeleteByRequest(eventRequestID string) error {
	err := i.store.DeleteByRequest(eventRequestID)
	if err != nil {
		return apperrors.Persistence(err, "ошибка удаления согласований заявки")
	}
	return nil
}

func (i impl) AllRequiredComplete(eventRequestID string) (bool, error) {
	total, approved, err := i.store.RequiredCounts(eventRequestID)
	if err != nil {
		return false, apperrors.Persistence(err, "ошибка получения обязательных согласований")
	}
	return total == approved, nil
}

func (i impl) History(eventRequestID string) ([]eventrequestapimodels.ApprovalHistoryView, error) {
	list, err := i.approvalHistoryStore.List(eventRequestID)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения истории согласования")
	}
	result := make([]eventrequestapimodels.ApprovalHistoryView, 0, len(list))
	for _, rec := range list {
		result = append(result, eventrequestapimodels.ApprovalHistoryConvert(rec))
	}
	return result, nil
}

// Audit запись в историю согласования, ошибки только логируются
func (i impl) Audit(data dbmodels.EventRequestApproval, changedBy string) {
	rec := dbmodels.ApprovalHistory{
		EventRequestID: data.EventRequestID,
		ApprovalID:     data.ID,
		UserID:         data.UserID,
		ChangedBy:      changedBy,
		Required:       data.Required,
		State:          data.Status,
	}
	if data.ResponseNotes != nil {
		rec.Comment = *data.ResponseNotes
	}
	_, err := i.approvalHistoryStore.Create(rec)
	if err != nil {
		i.GetLogger(data.EventRequestID).WithError(err).Error("Ошибка добавления истории по согласованию заявки")
	}
}

func (i impl) getRec(id string) (*dbmodels.EventRequestApproval, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения согласования")
	}
	if rec == nil {
		return nil, apperrors.NotFound("согласование не найдено")
	}
	return rec, nil
}
