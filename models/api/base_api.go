package apimodels

import "github.com/pkg/errors"

type Response struct {
	Status  string      `json:"status"`            //результат обработки fail/success
	Message string      `json:"message,omitempty"` //сообщение ошибки
	Data    interface{} `json:"data,omitempty"`    //данные ответа
}

type ScrollerResponse struct {
	Response
	RowCount int64 `json:"row_count,omitempty"` //для списков, общее кол-во записей, учитывая фильтр (если он есть)
}

func NewError(message string) Response {
	return Response{
		Status:  "fail",
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

const (
	DefaultTake = 50
	MaxTake     = 100
)

// Scroll постраничный вывод: skip записей пропускается, take по умолчанию 50
type Scroll struct {
	Skip int `json:"skip"`
	Take int `json:"take"` // не более 100
}

func (r Scroll) Validate() error {
	if r.Skip < 0 {
		return errors.New("skip не может быть отрицательным")
	}
	if r.Take < 0 || r.Take > MaxTake {
		return errors.Errorf("take должен быть от 1 до %v", MaxTake)
	}
	return nil
}

func (r Scroll) GetPage() (skip, take int) {
	skip = r.Skip
	take = r.Take
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = DefaultTake
	}
	if take > MaxTake {
		take = MaxTake
	}
	return skip, take
}

func NewScrollerResponse(data interface{}, rowCount int64) ScrollerResponse {
	return ScrollerResponse{
		Response: Response{
			Status: "success",
			Data:   data,
		},
		RowCount: rowCount,
	}
}
