package wsmodels

import (
	dbmodels "amia-backend/models/db"
	"fmt"
)

const TimeLayout = "02.01.2006 15:04:05"

type ServerMessage struct {
	ToUserID       string         `json:"-"`
	NotificationID string         `json:"notification_id"` // ид уведомления
	Time           string         `json:"time"`            // время события
	Code           string         `json:"code"`            // тип уведомления
	Title          string         `json:"title"`           // заголовок
	Msg            string         `json:"msg"`             // текст события
	Payload        map[string]any `json:"payload,omitempty"`
}

func NotificationMessage(rec dbmodels.Notification) ServerMessage {
	msg := ServerMessage{
		ToUserID:       rec.UserID,
		NotificationID: rec.ID,
		Time:           rec.CreatedAt.Format(TimeLayout),
		Title:          rec.Title,
		Msg:            rec.Message,
		Payload:        rec.Payload,
	}
	if code, ok := rec.Payload["type"]; ok {
		msg.Code = fmt.Sprint(code)
	}
	return msg
}
