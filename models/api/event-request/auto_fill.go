package eventrequestapimodels

import (
	"time"

	"github.com/pkg/errors"
)

type Contact struct {
	UserID string `json:"user_id"` // ид пользователя, с которым есть связь
	Name   string `json:"name"`    // имя для подсказки модели
}

type AutoFillRequest struct {
	Description string                  `json:"description"`  // свободный текст от пользователя
	CurrentDate time.Time               `json:"current_date"` // текущая дата на клиенте
	Draft       *EventRequestCreateData `json:"draft"`        // уже заполненные поля
	Contacts    []Contact               `json:"contacts"`     // известные пользователю люди
}

func (r AutoFillRequest) Validate() error {
	if r.Description == "" && r.Draft == nil {
		return errors.New("отсутсвует описание события")
	}
	return nil
}
