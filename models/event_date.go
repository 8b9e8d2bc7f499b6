package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

type EventDateKind int

const (
	EventDateUnset EventDateKind = iota
	EventDateAllDay
	EventDateTimed
)

// EventDate дата события в одном из двух вариантов: весь день (только дата)
// или момент времени с часовым поясом. Пустое значение означает "не задано".
type EventDate struct {
	kind     EventDateKind
	day      time.Time
	instant  time.Time
	timeZone string
}

func AllDay(day string) (EventDate, error) {
	parsed, err := time.Parse(DateLayout, day)
	if err != nil {
		return EventDate{}, errors.Errorf("некорректная дата %q, ожидается формат YYYY-MM-DD", day)
	}
	return EventDate{kind: EventDateAllDay, day: parsed}, nil
}

func Timed(instant time.Time, timeZone string) EventDate {
	return EventDate{kind: EventDateTimed, instant: instant, timeZone: timeZone}
}

func (d EventDate) Kind() EventDateKind {
	return d.kind
}

func (d EventDate) IsZero() bool {
	return d.kind == EventDateUnset
}

func (d EventDate) IsAllDay() bool {
	return d.kind == EventDateAllDay
}

// Day дата в формате YYYY-MM-DD для событий на весь день
func (d EventDate) Day() string {
	if d.kind != EventDateAllDay {
		return ""
	}
	return d.day.Format(DateLayout)
}

// Instant момент начала/окончания для событий со временем
func (d EventDate) Instant() (time.Time, bool) {
	if d.kind != EventDateTimed {
		return time.Time{}, false
	}
	return d.instant, true
}

func (d EventDate) TimeZone() string {
	return d.timeZone
}

// SortKey момент времени для сортировки и фильтрации: для событий на весь день начало дня в UTC
func (d EventDate) SortKey() *time.Time {
	switch d.kind {
	case EventDateAllDay:
		t := d.day.UTC()
		return &t
	case EventDateTimed:
		t := d.instant.UTC()
		return &t
	}
	return nil
}

func (d EventDate) String() string {
	switch d.kind {
	case EventDateAllDay:
		return d.Day()
	case EventDateTimed:
		if d.timeZone != "" {
			return d.instant.Format(time.RFC3339) + " (" + d.timeZone + ")"
		}
		return d.instant.Format(time.RFC3339)
	}
	return ""
}

// CheckEventOrder начало должно быть раньше окончания, если обе даты заданы временем.
// События на весь день не проверяются.
func CheckEventOrder(start, end EventDate) bool {
	startAt, ok := start.Instant()
	if !ok {
		return true
	}
	endAt, ok := end.Instant()
	if !ok {
		return true
	}
	return startAt.Before(endAt)
}

type eventDateJSON struct {
	Date     *string    `json:"date"`
	DateTime *time.Time `json:"date_time"`
	TimeZone *string    `json:"time_zone"`
}

// формат хранения совпадает с форматом Google Calendar
type eventDateStored struct {
	Date     *string    `json:"date"`
	DateTime *time.Time `json:"dateTime"`
	TimeZone *string    `json:"timeZone"`
}

func (d EventDate) toParts() (date *string, dateTime *time.Time, timeZone *string) {
	switch d.kind {
	case EventDateAllDay:
		day := d.Day()
		date = &day
	case EventDateTimed:
		instant := d.instant
		dateTime = &instant
	}
	if d.timeZone != "" {
		tz := d.timeZone
		timeZone = &tz
	}
	return date, dateTime, timeZone
}

func fromParts(date *string, dateTime *time.Time, timeZone *string) (EventDate, error) {
	hasDate := date != nil && *date != ""
	hasDateTime := dateTime != nil && !dateTime.IsZero()
	tz := ""
	if timeZone != nil {
		tz = *timeZone
	}
	switch {
	case hasDate && hasDateTime:
		return EventDate{}, errors.New("дата события должна содержать либо date, либо date_time")
	case hasDate:
		d, err := AllDay(*date)
		if err != nil {
			return EventDate{}, err
		}
		d.timeZone = tz
		return d, nil
	case hasDateTime:
		return Timed(*dateTime, tz), nil
	}
	return EventDate{}, errors.New("дата события должна содержать date или date_time")
}

func (d EventDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	date, dateTime, timeZone := d.toParts()
	return json.Marshal(eventDateJSON{Date: date, DateTime: dateTime, TimeZone: timeZone})
}

func (d *EventDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = EventDate{}
		return nil
	}
	var raw eventDateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromParts(raw.Date, raw.DateTime, raw.TimeZone)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d EventDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	date, dateTime, timeZone := d.toParts()
	value, err := json.Marshal(eventDateStored{Date: date, DateTime: dateTime, TimeZone: timeZone})
	return string(value), err
}

func (d *EventDate) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*d = EventDate{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("неподдерживаемый тип для EventDate: %T", value)
	}
	var raw eventDateStored
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := fromParts(raw.Date, raw.DateTime, raw.TimeZone)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
