package autofillhandler

import (
	yagptclient "amia-backend/lib/gpt/yagpt-client"
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	eventrequestapimodels "amia-backend/models/api/event-request"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const currentDateLayout = "Monday, January 02, 2006 - 03:04 PM"

const systemPromt = `You convert a free-text description of a calendar event into JSON.
Reply with a single JSON object and nothing else, using exactly these fields:
{
  "title": string or null,
  "location": string or null,
  "description": string or null,
  "start_date": {"date": "YYYY-MM-DD"} for all-day events or {"date_time": RFC3339 timestamp, "time_zone": IANA zone or null},
  "end_date": same shape as start_date,
  "importance_level": integer from 1 to 5,
  "notes": string or null,
  "approvers": [{"user_id": id from the known contacts, "required": boolean}]
}
Set "required": true when the user asks to run the event by someone or needs their sign-off,
and "required": false when the person should only be notified.
Only use user ids from the known contacts. Resolve relative dates against the current date.
Keep fields of the current draft unless the description changes them.`

type Provider interface {
	AutoFill(ctx context.Context, userID string, data eventrequestapimodels.AutoFillRequest) (*eventrequestapimodels.EventRequestCreateData, error)
}

func NewHandler(client yagptclient.Provider) Provider {
	return impl{
		client: client,
	}
}

type impl struct {
	client yagptclient.Provider
}

func (i impl) AutoFill(ctx context.Context, userID string, data eventrequestapimodels.AutoFillRequest) (*eventrequestapimodels.EventRequestCreateData, error) {
	if err := data.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	logger := log.WithField("user_id", userID)
	text, err := buildUserText(data)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка подготовки запроса автозаполнения")
	}
	answer, err := i.client.Complete(ctx, systemPromt, text)
	if err != nil {
		logger.WithError(err).Error("ошибка автозаполнения заявки через YandexGPT")
		return nil, err
	}
	parsed, err := ParseDraft(answer)
	if err != nil {
		logger.WithError(err).WithField("answer", answer).Error("не удалось разобрать ответ YandexGPT")
		return nil, err
	}
	result := MergeDraft(data.Draft, *parsed, data.Contacts)
	return &result, nil
}

func buildUserText(data eventrequestapimodels.AutoFillRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("The current date is ")
	sb.WriteString(data.CurrentDate.Format(currentDateLayout))
	sb.WriteString("\n")

	contacts, err := json.Marshal(data.Contacts)
	if err != nil {
		return "", err
	}
	sb.WriteString("Known contacts: ")
	sb.Write(contacts)
	sb.WriteString("\n")

	if data.Draft != nil {
		draft, err := json.Marshal(data.Draft)
		if err != nil {
			return "", err
		}
		sb.WriteString("Current draft: ")
		sb.Write(draft)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Description: %s", data.Description))
	return sb.String(), nil
}

// ParseDraft разбирает ответ модели, допускается обертка в markdown-блок ```json
func ParseDraft(answer string) (*eventrequestapimodels.EventRequestCreateData, error) {
	text := strings.TrimSpace(answer)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}
	result := eventrequestapimodels.EventRequestCreateData{}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, errors.Wrap(err, "ответ модели не является корректным JSON")
	}
	return &result, nil
}

// MergeDraft поля из ответа модели поверх черновика. Согласующие только из известных контактов, без повторов.
func MergeDraft(draft *eventrequestapimodels.EventRequestCreateData, parsed eventrequestapimodels.EventRequestCreateData, contacts []eventrequestapimodels.Contact) eventrequestapimodels.EventRequestCreateData {
	result := eventrequestapimodels.EventRequestCreateData{}
	if draft != nil {
		result = *draft
	}
	if parsed.Title != nil {
		result.Title = parsed.Title
	}
	if parsed.Location != nil {
		result.Location = parsed.Location
	}
	if parsed.Description != nil {
		result.Description = parsed.Description
	}
	if parsed.Notes != nil {
		result.Notes = parsed.Notes
	}
	if !parsed.StartDate.IsZero() {
		result.StartDate = parsed.StartDate
	}
	if !parsed.EndDate.IsZero() {
		result.EndDate = parsed.EndDate
	}
	if parsed.ImportanceLevel >= models.MinImportanceLevel && parsed.ImportanceLevel <= models.MaxImportanceLevel {
		result.ImportanceLevel = parsed.ImportanceLevel
	}
	if len(parsed.Approvers) != 0 {
		known := map[string]bool{}
		for _, contact := range contacts {
			known[contact.UserID] = true
		}
		seen := map[string]bool{}
		approvers := []eventrequestapimodels.ApproverData{}
		for _, approver := range parsed.Approvers {
			if approver.UserID == "" || seen[approver.UserID] {
				continue
			}
			if len(known) != 0 && !known[approver.UserID] {
				continue
			}
			seen[approver.UserID] = true
			approvers = append(approvers, approver)
		}
		result.Approvers = approvers
	}
	return result
}
