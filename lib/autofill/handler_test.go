package autofillhandler

import (
	"context"
	"testing"
	"time"

	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type gptMock struct {
	answer string
	err    error
	text   string
}

func (m *gptMock) Complete(ctx context.Context, system, text string) (string, error) {
	m.text = text
	return m.answer, m.err
}

var contacts = []eventrequestapimodels.Contact{
	{UserID: "u-anna", Name: "Анна"},
	{UserID: "u-boris", Name: "Борис"},
}

func TestParseDraft(t *testing.T) {
	t.Run(`plain json`, func(t *testing.T) {
		draft, err := ParseDraft(`{"title":"Обед","start_date":{"date":"2025-04-01"},"end_date":{"date":"2025-04-01"},"importance_level":2}`)
		require.Nil(t, err)
		require.Equal(t, "Обед", *draft.Title)
		require.Equal(t, "2025-04-01", draft.StartDate.Day())
		require.Equal(t, 2, draft.ImportanceLevel)
	})

	t.Run(`json in code fence with text around`, func(t *testing.T) {
		answer := "Вот результат:\n```json\n{\"title\":\"Созвон\",\"approvers\":[{\"user_id\":\"u-anna\",\"required\":true}]}\n```"
		draft, err := ParseDraft(answer)
		require.Nil(t, err)
		require.Equal(t, "Созвон", *draft.Title)
		require.Len(t, draft.Approvers, 1)
		require.Equal(t, true, draft.Approvers[0].Required)
	})

	t.Run(`not json`, func(t *testing.T) {
		_, err := ParseDraft("не знаю")
		require.NotNil(t, err)
	})

	t.Run(`invalid event date`, func(t *testing.T) {
		_, err := ParseDraft(`{"start_date":{"date":"2025-04-01","date_time":"2025-04-01T10:00:00Z"}}`)
		require.NotNil(t, err)
	})
}

func TestMergeDraft(t *testing.T) {
	t.Run(`parsed fields override draft`, func(t *testing.T) {
		oldTitle := "Старое"
		location := "Офис"
		draft := &eventrequestapimodels.EventRequestCreateData{
			EventRequestData: eventrequestapimodels.EventRequestData{
				Title:           &oldTitle,
				Location:        &location,
				ImportanceLevel: 3,
			},
		}
		newTitle := "Новое"
		result := MergeDraft(draft, eventrequestapimodels.EventRequestCreateData{
			EventRequestData: eventrequestapimodels.EventRequestData{
				Title:           &newTitle,
				ImportanceLevel: 9,
			},
		}, contacts)
		require.Equal(t, "Новое", *result.Title)
		require.Equal(t, "Офис", *result.Location)
		require.Equal(t, 3, result.ImportanceLevel)
		require.Equal(t, "Старое", *draft.Title)
	})

	t.Run(`approvers only from contacts without repeats`, func(t *testing.T) {
		result := MergeDraft(nil, eventrequestapimodels.EventRequestCreateData{
			Approvers: []eventrequestapimodels.ApproverData{
				{UserID: "u-anna", Required: true},
				{UserID: "u-unknown", Required: true},
				{UserID: "u-anna", Required: false},
				{UserID: "u-boris", Required: false},
				{UserID: ""},
			},
		}, contacts)
		require.Equal(t, []eventrequestapimodels.ApproverData{
			{UserID: "u-anna", Required: true},
			{UserID: "u-boris", Required: false},
		}, result.Approvers)
	})
}

func TestAutoFill(t *testing.T) {
	request := eventrequestapimodels.AutoFillRequest{
		Description: "Завтра в 10 встреча с Анной, нужно согласовать с Борисом",
		CurrentDate: time.Date(2025, 4, 1, 9, 15, 0, 0, time.UTC),
		Contacts:    contacts,
	}

	t.Run(`answer is merged`, func(t *testing.T) {
		gpt := &gptMock{answer: `{"title":"Встреча с Анной","start_date":{"date_time":"2025-04-02T10:00:00Z"},` +
			`"end_date":{"date_time":"2025-04-02T11:00:00Z"},"importance_level":2,` +
			`"approvers":[{"user_id":"u-boris","required":true},{"user_id":"u-anna","required":false}]}`}
		result, err := NewHandler(gpt).AutoFill(context.Background(), "user", request)
		require.Nil(t, err)
		require.Equal(t, "Встреча с Анной", *result.Title)
		require.Equal(t, models.EventDateTimed, result.StartDate.Kind())
		require.Len(t, result.Approvers, 2)
		require.Equal(t, "u-boris", result.Approvers[0].UserID)
		require.Equal(t, true, result.Approvers[0].Required)

		require.Contains(t, gpt.text, "Tuesday, April 01, 2025 - 09:15 AM")
		require.Contains(t, gpt.text, "u-anna")
		require.Contains(t, gpt.text, request.Description)
	})

	t.Run(`empty request is invalid`, func(t *testing.T) {
		_, err := NewHandler(&gptMock{}).AutoFill(context.Background(), "user", eventrequestapimodels.AutoFillRequest{})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run(`llm failure is internal error`, func(t *testing.T) {
		_, err := NewHandler(&gptMock{err: errors.New("timeout")}).AutoFill(context.Background(), "user", request)
		require.NotNil(t, err)
		require.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
	})

	t.Run(`bad answer is internal error`, func(t *testing.T) {
		_, err := NewHandler(&gptMock{answer: "Извините, не поняла"}).AutoFill(context.Background(), "user", request)
		require.NotNil(t, err)
		require.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
	})
}
