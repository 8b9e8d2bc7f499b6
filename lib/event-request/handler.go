package eventrequesthandler

import (
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	eventrequeststore "amia-backend/lib/event-request/store"
	eventrequestviewstore "amia-backend/lib/event-request/view-store"
	xlsexport "amia-backend/lib/export/xls"
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	dbmodels "amia-backend/models/db"
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Provider interface {
	Create(userID string, data eventrequestapimodels.EventRequestCreateData) (*eventrequestapimodels.EventRequestWithApproversView, error)
	Get(id string) (*eventrequestapimodels.EventRequestView, error)
	GetByGoogleEventID(googleEventID string) (*eventrequestapimodels.EventRequestView, error)
	ListMine(userID string, filter eventrequestapimodels.EventRequestFilter) ([]eventrequestapimodels.EventRequestView, error)
	ListAll(filter eventrequestapimodels.EventRequestFilter) ([]eventrequestapimodels.EventRequestView, error)
	ListWithApprovalStatus(userID string, filter eventrequestapimodels.WithApprovalsFilter) (*eventrequestapimodels.EventRequestWithApprovalsPage, error)
	GetWithApprovers(id string) (*eventrequestapimodels.EventRequestWithApproversView, error)
	Update(id, callerID string, data eventrequestapimodels.EventRequestEditData) (*eventrequestapimodels.EventRequestView, error)
	Delete(id, callerID string) (*eventrequestapimodels.EventRequestView, error)
	Approve(id, callerID string) (*eventrequestapimodels.EventRequestView, error)
	Reject(id, callerID string) (*eventrequestapimodels.EventRequestView, error)
	ExportWithApprovals(userID string, status models.RequestStatus) (*bytes.Buffer, error)
}

func NewHandler(DB *gorm.DB) Provider {
	return impl{
		db:        DB,
		store:     eventrequeststore.NewInstance(DB),
		viewStore: eventrequestviewstore.NewInstance(DB),
		xlsExport: xlsexport.NewHandler(),
	}
}

type impl struct {
	db        *gorm.DB
	store     eventrequeststore.Provider
	viewStore eventrequestviewstore.Provider
	xlsExport xlsexport.Provider
}

func (i impl) GetLogger(userID, eventRequestID string) *log.Entry {
	logger := log.
		WithField("user_id", userID)
	if eventRequestID != "" {
		logger = logger.WithField("event_request_id", eventRequestID)
	}
	return logger
}

func (i impl) Create(userID string, data eventrequestapimodels.EventRequestCreateData) (*eventrequestapimodels.EventRequestWithApproversView, error) {
	if err := data.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if data.ImportanceLevel == 0 {
		data.ImportanceLevel = models.MinImportanceLevel
	}
	if err := validateImportance(data.ImportanceLevel); err != nil {
		return nil, err
	}
	if err := validateDates(data.StartDate, data.EndDate); err != nil {
		return nil, err
	}
	rec := dbmodels.EventRequest{
		GoogleEventID:   data.GoogleEventID,
		Title:           data.Title,
		Location:        data.Location,
		Description:     data.Description,
		StartDate:       data.StartDate,
		EndDate:         data.EndDate,
		StartAt:         data.StartDate.SortKey(),
		ImportanceLevel: data.ImportanceLevel,
		Status:          models.RequestStatusPending,
		Notes:           data.Notes,
		CreatedBy:       userID,
	}

	var result eventrequestapimodels.EventRequestWithApproversView
	err := i.db.Transaction(func(tx *gorm.DB) error {
		id, err := eventrequeststore.NewInstance(tx).Create(rec)
		if err != nil {
			return apperrors.Persistence(err, "ошибка создания заявки")
		}
		rec.ID = id
		approvers := []eventrequestapimodels.ApprovalView{}
		if len(data.Approvers) != 0 {
			approvers, err = eventrequestapprovalhandler.NewHandlerWithTx(tx).CreateBatch(userID, id, data.Approvers)
			if err != nil {
				return err
			}
		}
		created, err := eventrequeststore.NewInstance(tx).GetByID(id)
		if err != nil {
			return apperrors.Persistence(err, "ошибка получения заявки")
		}
		if created == nil {
			return apperrors.Persistence(errors.New("созданная заявка не найдена"), "ошибка создания заявки")
		}
		result = eventrequestapimodels.EventRequestWithApproversView{
			EventRequestView: eventrequestapimodels.EventRequestConvert(*created),
			Approvers:        approvers,
		}
		return nil
	})
	if err != nil {
		if rec.ID != "" {
			i.GetLogger(userID, rec.ID).
				WithError(err).
				Warn("Создание заявки отменено, транзакция откачена вместе с согласующими")
		}
		return nil, err
	}
	return &result, nil
}

func (i impl) Get(id string) (*eventrequestapimodels.EventRequestView, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	result := eventrequestapimodels.EventRequestConvert(*rec)
	return &result, nil
}

func (i impl) GetByGoogleEventID(googleEventID string) (*eventrequestapimodels.EventRequestView, error) {
	rec, err := i.store.GetByGoogleEventID(googleEventID)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявки")
	}
	if rec == nil {
		return nil, apperrors.NotFound("заявка не найдена")
	}
	result := eventrequestapimodels.EventRequestConvert(*rec)
	return &result, nil
}

func (i impl) ListMine(userID string, filter eventrequestapimodels.EventRequestFilter) ([]eventrequestapimodels.EventRequestView, error) {
	filter.CreatedBy = userID
	return i.ListAll(filter)
}

func (i impl) ListAll(filter eventrequestapimodels.EventRequestFilter) ([]eventrequestapimodels.EventRequestView, error) {
	if err := filter.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	list, err := i.store.List(filter)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения списка заявок")
	}
	result := make([]eventrequestapimodels.EventRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, eventrequestapimodels.EventRequestConvert(rec))
	}
	return result, nil
}

func (i impl) ListWithApprovalStatus(userID string, filter eventrequestapimodels.WithApprovalsFilter) (*eventrequestapimodels.EventRequestWithApprovalsPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	skip, take := filter.GetPage()
	list, rowCount, err := i.viewStore.ListWithApprovals(eventrequestviewstore.Filter{
		UserID: userID,
		Status: filter.Status,
	}, skip, take)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявок с согласованиями")
	}
	items := make([]eventrequestapimodels.EventRequestWithApprovalsView, 0, len(list))
	for _, rec := range list {
		items = append(items, eventrequestapimodels.EventRequestWithApprovalsConvert(rec))
	}
	filters := map[string]any{}
	if filter.Status != "" {
		filters["status"] = filter.Status
	}
	if len(filters) == 0 {
		filters = nil
	}
	return &eventrequestapimodels.EventRequestWithApprovalsPage{
		EventRequests: items,
		Count:         len(items),
		TotalCount:    rowCount,
		Skip:          skip,
		Take:          take,
		Filters:       filters,
	}, nil
}

// ExportWithApprovals все заявки пользователя со сводным статусом согласования в xlsx
func (i impl) ExportWithApprovals(userID string, status models.RequestStatus) (*bytes.Buffer, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.Validationf("недопустимый статус заявки: %v", status)
	}
	list, _, err := i.viewStore.ListWithApprovals(eventrequestviewstore.Filter{
		UserID: userID,
		Status: status,
	}, 0, 0)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявок с согласованиями")
	}
	buf, err := i.xlsExport.ExportEventRequests(list)
	if err != nil {
		i.GetLogger(userID, "").WithError(err).Error("ошибка выгрузки заявок в xlsx")
		return nil, err
	}
	return buf, nil
}

func (i impl) GetWithApprovers(id string) (*eventrequestapimodels.EventRequestWithApproversView, error) {
	rec, err := i.store.GetWithApprovals(id)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявки")
	}
	if rec == nil {
		return nil, apperrors.NotFound("заявка не найдена")
	}
	result := eventrequestapimodels.EventRequestWithApproversConvert(*rec)
	return &result, nil
}

func (i impl) Update(id, callerID string, data eventrequestapimodels.EventRequestEditData) (*eventrequestapimodels.EventRequestView, error) {
	if err := data.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	rec, err := i.getOwnRec(id, callerID)
	if err != nil {
		return nil, err
	}

	updMap := map[string]interface{}{}
	start := rec.StartDate
	end := rec.EndDate
	if data.StartDate != nil {
		if data.StartDate.IsZero() {
			return nil, apperrors.Validation("не указана дата начала")
		}
		start = *data.StartDate
		updMap["start_date"] = start
		updMap["start_at"] = start.SortKey()
	}
	if data.EndDate != nil {
		if data.EndDate.IsZero() {
			return nil, apperrors.Validation("не указана дата окончания")
		}
		end = *data.EndDate
		updMap["end_date"] = end
	}
	if data.StartDate != nil || data.EndDate != nil {
		if err := validateDates(start, end); err != nil {
			return nil, err
		}
	}
	if data.ImportanceLevel != nil {
		if err := validateImportance(*data.ImportanceLevel); err != nil {
			return nil, err
		}
		updMap["importance_level"] = *data.ImportanceLevel
	}
	if data.GoogleEventID != nil {
		updMap["google_event_id"] = *data.GoogleEventID
	}
	if data.Title != nil {
		updMap["title"] = *data.Title
	}
	if data.Location != nil {
		updMap["location"] = *data.Location
	}
	if data.Description != nil {
		updMap["description"] = *data.Description
	}
	if data.Notes != nil {
		updMap["notes"] = *data.Notes
	}
	if data.Status != nil {
		updMap["status"] = *data.Status
	}
	if len(updMap) == 0 {
		result := eventrequestapimodels.EventRequestConvert(*rec)
		return &result, nil
	}

	err = i.store.Update(id, updMap)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка обновления заявки")
	}
	return i.Get(id)
}

// Delete удаляет заявку вместе с согласованиями в одной транзакции
func (i impl) Delete(id, callerID string) (*eventrequestapimodels.EventRequestView, error) {
	rec, err := i.getOwnRec(id, callerID)
	if err != nil {
		return nil, err
	}
	err = i.db.Transaction(func(tx *gorm.DB) error {
		err := eventrequestapprovalhandler.NewHandlerWithTx(tx).DeleteByRequest(id)
		if err != nil {
			return err
		}
		err = eventrequeststore.NewInstance(tx).Delete(id)
		if err != nil {
			return apperrors.Persistence(err, "ошибка удаления заявки")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := eventrequestapimodels.EventRequestConvert(*rec)
	return &result, nil
}

func (i impl) Approve(id, callerID string) (*eventrequestapimodels.EventRequestView, error) {
	status := models.RequestStatusApproved
	return i.Update(id, callerID, eventrequestapimodels.EventRequestEditData{Status: &status})
}

func (i impl) Reject(id, callerID string) (*eventrequestapimodels.EventRequestView, error) {
	status := models.RequestStatusRejected
	return i.Update(id, callerID, eventrequestapimodels.EventRequestEditData{Status: &status})
}

func (i impl) getRec(id string) (*dbmodels.EventRequest, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения заявки")
	}
	if rec == nil {
		return nil, apperrors.NotFound("заявка не найдена")
	}
	return rec, nil
}

func (i impl) getOwnRec(id, callerID string) (*dbmodels.EventRequest, error) {
	rec, err := i.getRec(id)
	if err != nil {
		return nil, err
	}
	if rec.CreatedBy != callerID {
		return nil, apperrors.Permission("изменять заявку может только ее автор")
	}
	return rec, nil
}

func validateDates(start, end models.EventDate) error {
	if !models.CheckEventOrder(start, end) {
		return apperrors.Validation("дата начала должна быть раньше даты окончания")
	}
	return nil
}

func validateImportance(level int) error {
	if level < models.MinImportanceLevel || level > models.MaxImportanceLevel {
		return apperrors.Validationf("важность должна быть от %v до %v", models.MinImportanceLevel, models.MaxImportanceLevel)
	}
	return nil
}
