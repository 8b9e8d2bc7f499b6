package notificationhandler

import (
	notificationstore "amia-backend/lib/notification/store"
	apperrors "amia-backend/lib/utils/app-errors"
	connectionhub "amia-backend/lib/ws/hub/connection-hub"
	"amia-backend/models"
	notificationapimodels "amia-backend/models/api/notification"
	dbmodels "amia-backend/models/db"
	wsmodels "amia-backend/models/ws"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Provider interface {
	EventRequestChanged(toUserID string, payload notificationapimodels.EventRequestPayload)
	ApprovalResponded(toUserID string, payload notificationapimodels.ApprovalPayload)
	Create(userID, title, message string, payload map[string]interface{}) (*notificationapimodels.NotificationView, error)
	List(userID string, filter notificationapimodels.NotificationFilter) (*notificationapimodels.NotificationList, error)
	Get(id, userID string) (*notificationapimodels.NotificationView, error)
	Update(id, userID string, data notificationapimodels.NotificationUpdateData) (*notificationapimodels.NotificationView, error)
	Delete(id, userID string) error
	MarkAllRead(userID string) (int64, error)
}

// NewHandler hub может быть nil, тогда уведомления только сохраняются
func NewHandler(store notificationstore.Provider, hub connectionhub.Provider) Provider {
	return impl{
		store: store,
		hub:   hub,
	}
}

type impl struct {
	store notificationstore.Provider
	hub   connectionhub.Provider
}

func (i impl) getLogger(userID string) *log.Entry {
	return log.WithField("user_id", userID)
}

func (i impl) EventRequestChanged(toUserID string, payload notificationapimodels.EventRequestPayload) {
	tpl, ok := models.EventRequestNotificationMap[payload.Update]
	if !ok {
		i.getLogger(toUserID).
			WithField("update", payload.Update).
			Error("неизвестный тип изменения заявки для уведомления")
		return
	}
	i.emit(toUserID, tpl, payload.User, payload.ToMap())
}

func (i impl) ApprovalResponded(toUserID string, payload notificationapimodels.ApprovalPayload) {
	tpl, ok := models.ApprovalNotificationMap[payload.Status]
	if !ok {
		return
	}
	i.emit(toUserID, tpl, payload.User, payload.ToMap())
}

func (i impl) emit(toUserID string, tpl models.NotificationTpl, user notificationapimodels.User, payload map[string]interface{}) {
	if toUserID == "" || toUserID == user.ID {
		return
	}
	_, err := i.Create(toUserID, tpl.Title, fmt.Sprintf(tpl.Msg, user.DisplayName()), payload)
	if err != nil {
		i.getLogger(toUserID).WithError(err).Error("ошибка создания уведомления")
	}
}

func (i impl) Create(userID, title, message string, payload map[string]interface{}) (*notificationapimodels.NotificationView, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return nil, apperrors.Validation("не указан заголовок уведомления")
	}
	if message == "" {
		return nil, apperrors.Validation("не указан текст уведомления")
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	rec, err := i.store.Create(dbmodels.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Payload: payload,
	})
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка создания уведомления")
	}
	if i.hub != nil {
		i.hub.SendMessage(wsmodels.NotificationMessage(*rec))
	}
	result := notificationapimodels.NotificationConvert(*rec)
	return &result, nil
}

func (i impl) List(userID string, filter notificationapimodels.NotificationFilter) (*notificationapimodels.NotificationList, error) {
	if err := filter.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	list, rowCount, err := i.store.List(userID, filter)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения списка уведомлений")
	}
	items := make([]notificationapimodels.NotificationView, 0, len(list))
	for _, rec := range list {
		items = append(items, notificationapimodels.NotificationConvert(rec))
	}
	skip, take := filter.GetPage()
	return &notificationapimodels.NotificationList{
		Notifications: items,
		Count:         len(items),
		TotalCount:    rowCount,
		Skip:          skip,
		Take:          take,
		Filters:       filter.ToMap(),
	}, nil
}

func (i impl) Get(id, userID string) (*notificationapimodels.NotificationView, error) {
	rec, err := i.getOwnRec(id, userID)
	if err != nil {
		return nil, err
	}
	result := notificationapimodels.NotificationConvert(*rec)
	return &result, nil
}

func (i impl) Update(id, userID string, data notificationapimodels.NotificationUpdateData) (*notificationapimodels.NotificationView, error) {
	rec, err := i.getOwnRec(id, userID)
	if err != nil {
		return nil, err
	}
	updMap := map[string]interface{}{}
	if data.IsRead != nil {
		updMap["is_read"] = *data.IsRead
	}
	if data.IsDeleted != nil {
		updMap["is_deleted"] = *data.IsDeleted
	}
	if len(updMap) == 0 {
		result := notificationapimodels.NotificationConvert(*rec)
		return &result, nil
	}
	err = i.store.Update(id, updMap)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка обновления уведомления")
	}
	return i.Get(id, userID)
}

func (i impl) Delete(id, userID string) error {
	_, err := i.getOwnRec(id, userID)
	if err != nil {
		return err
	}
	err = i.store.Delete(id)
	if err != nil {
		return apperrors.Persistence(err, "ошибка удаления уведомления")
	}
	return nil
}

func (i impl) MarkAllRead(userID string) (int64, error) {
	count, err := i.store.MarkAllRead(userID)
	if err != nil {
		return 0, apperrors.Persistence(err, "ошибка отметки уведомлений прочитанными")
	}
	return count, nil
}

func (i impl) getOwnRec(id, userID string) (*dbmodels.Notification, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, apperrors.Persistence(err, "ошибка получения уведомления")
	}
	if rec == nil {
		return nil, apperrors.NotFound("уведомление не найдено")
	}
	if rec.UserID != userID {
		return nil, apperrors.Permission("нет доступа к уведомлению")
	}
	return rec, nil
}
