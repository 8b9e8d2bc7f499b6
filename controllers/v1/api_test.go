package apiv1

import (
	"amia-backend/db"
	autofillhandler "amia-backend/lib/autofill"
	eventrequesthandler "amia-backend/lib/event-request"
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	notificationhandler "amia-backend/lib/notification"
	notificationstore "amia-backend/lib/notification/store"
	authutils "amia-backend/lib/utils/auth-utils"
	"amia-backend/middleware"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type gptMock struct{}

func (gptMock) Complete(ctx context.Context, system, text string) (string, error) {
	return `{"title":"Обед","start_date":{"date":"2025-04-02"},"end_date":{"date":"2025-04-02"}}`, nil
}

type apiResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	RowCount int64           `json:"row_count"`
}

type testClient struct {
	t   *testing.T
	app *fiber.App
}

func newTestClient(t *testing.T) testClient {
	DB, err := db.ConnectInMemory()
	require.Nil(t, err)
	notifications := notificationhandler.NewHandler(notificationstore.NewInstance(DB), nil)
	eventRequests := eventrequesthandler.NewHandler(DB)
	approvals := eventrequestapprovalhandler.NewHandler(DB)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	InitHealthApiRouters(apiV1, DB)
	private := apiV1.Group("", middleware.AuthorizationRequired(testSecret), middleware.UserRequired())
	InitEventRequestApiRouters(private, eventRequests, approvals, autofillhandler.NewHandler(gptMock{}), notifications)
	InitEventRequestApprovalApiRouters(private, eventRequests, approvals, notifications)
	InitNotificationApiRouters(private, notifications)
	return testClient{t: t, app: app}
}

func (c testClient) do(userID, method, path string, body any) (int, apiResponse) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.Nil(c.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != "" {
		token, err := authutils.GetToken(testSecret, userID, userID+"@example.com", time.Hour)
		require.Nil(c.t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.Nil(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.Nil(c.t, err)
	result := apiResponse{}
	if len(raw) != 0 && resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.Nil(c.t, json.Unmarshal(raw, &result))
	}
	return resp.StatusCode, result
}

func decode[T any](t *testing.T, resp apiResponse) T {
	var result T
	require.Nil(t, json.Unmarshal(resp.Data, &result))
	return result
}

type idView struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Approvers []struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	} `json:"approvers"`
}

func createBody(approvers ...map[string]any) map[string]any {
	return map[string]any{
		"title":      "Встреча",
		"start_date": map[string]any{"date_time": "2025-06-02T09:00:00Z", "time_zone": "UTC"},
		"end_date":   map[string]any{"date_time": "2025-06-02T10:00:00Z", "time_zone": "UTC"},
		"approvers":  approvers,
	}
}

func TestEventRequestApi(t *testing.T) {
	t.Run(`health without token`, func(t *testing.T) {
		c := newTestClient(t)
		code, resp := c.do("", http.MethodGet, "/api/v1/health", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "success", resp.Status)
	})

	t.Run(`token required`, func(t *testing.T) {
		c := newTestClient(t)
		code, resp := c.do("", http.MethodGet, "/api/v1/event-requests", nil)
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "fail", resp.Status)
	})

	t.Run(`create, read and approve flow`, func(t *testing.T) {
		c := newTestClient(t)
		code, resp := c.do("owner", http.MethodPost, "/api/v1/event-requests",
			createBody(map[string]any{"user_id": "approver", "required": true}))
		require.Equal(t, http.StatusOK, code, resp.Message)
		created := decode[idView](t, resp)
		require.NotEmpty(t, created.ID)
		require.Equal(t, "pending", created.Status)
		require.Len(t, created.Approvers, 1)

		code, _ = c.do("owner", http.MethodGet, "/api/v1/event-requests/"+created.ID, nil)
		require.Equal(t, http.StatusOK, code)

		code, resp = c.do("approver", http.MethodGet, "/api/v1/notifications", nil)
		require.Equal(t, http.StatusOK, code)
		list := decode[struct {
			TotalCount int64 `json:"total_count"`
		}](t, resp)
		require.Equal(t, int64(1), list.TotalCount)

		code, _ = c.do("owner", http.MethodPost, "/api/v1/event-request-approvals/"+created.Approvers[0].ID+"/approve", nil)
		require.Equal(t, http.StatusForbidden, code)

		code, resp = c.do("approver", http.MethodPost, "/api/v1/event-request-approvals/"+created.Approvers[0].ID+"/approve",
			map[string]any{"response_notes": "ок"})
		require.Equal(t, http.StatusOK, code, resp.Message)

		code, resp = c.do("owner", http.MethodGet, "/api/v1/event-request-approvals/by-request/"+created.ID+"/required-complete", nil)
		require.Equal(t, http.StatusOK, code)
		complete := decode[struct {
			AllRequiredComplete bool `json:"all_required_complete"`
		}](t, resp)
		require.Equal(t, true, complete.AllRequiredComplete)

		code, resp = c.do("owner", http.MethodGet, "/api/v1/notifications", nil)
		require.Equal(t, http.StatusOK, code)
		list = decode[struct {
			TotalCount int64 `json:"total_count"`
		}](t, resp)
		require.Equal(t, int64(1), list.TotalCount)

		code, resp = c.do("owner", http.MethodGet, "/api/v1/event-requests/with-approvals", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, int64(1), resp.RowCount)
		page := decode[struct {
			EventRequests []struct {
				ApprovalStatus string `json:"approval_status"`
			} `json:"event_requests"`
		}](t, resp)
		require.Len(t, page.EventRequests, 1)
		require.Equal(t, "approved", page.EventRequests[0].ApprovalStatus)
	})

	t.Run(`error kinds map to status codes`, func(t *testing.T) {
		c := newTestClient(t)
		code, _ := c.do("owner", http.MethodGet, "/api/v1/event-requests/missing", nil)
		require.Equal(t, http.StatusNotFound, code)

		body := createBody()
		body["end_date"] = map[string]any{"date_time": "2025-06-02T08:00:00Z"}
		code, _ = c.do("owner", http.MethodPost, "/api/v1/event-requests", body)
		require.Equal(t, http.StatusBadRequest, code)

		code, _ = c.do("owner", http.MethodPost, "/api/v1/event-requests",
			createBody(map[string]any{"user_id": "a"}, map[string]any{"user_id": "a"}))
		require.Equal(t, http.StatusBadRequest, code)

		code, resp := c.do("owner", http.MethodPost, "/api/v1/event-requests", createBody())
		require.Equal(t, http.StatusOK, code)
		created := decode[idView](t, resp)

		code, _ = c.do("intruder", http.MethodPatch, "/api/v1/event-requests/"+created.ID, map[string]any{"title": "x"})
		require.Equal(t, http.StatusForbidden, code)
		code, _ = c.do("intruder", http.MethodDelete, "/api/v1/event-requests/"+created.ID, nil)
		require.Equal(t, http.StatusForbidden, code)

		code, _ = c.do("owner", http.MethodGet, "/api/v1/event-requests/with-approvals?take=101", nil)
		require.Equal(t, http.StatusBadRequest, code)
		code, _ = c.do("owner", http.MethodGet, "/api/v1/event-requests?importance_level=abc", nil)
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run(`delete cascades to approvals`, func(t *testing.T) {
		c := newTestClient(t)
		code, resp := c.do("owner", http.MethodPost, "/api/v1/event-requests",
			createBody(map[string]any{"user_id": "approver"}))
		require.Equal(t, http.StatusOK, code)
		created := decode[idView](t, resp)

		code, _ = c.do("owner", http.MethodDelete, "/api/v1/event-requests/"+created.ID, nil)
		require.Equal(t, http.StatusOK, code)
		code, _ = c.do("owner", http.MethodGet, "/api/v1/event-requests/"+created.ID, nil)
		require.Equal(t, http.StatusNotFound, code)
		code, _ = c.do("approver", http.MethodGet, "/api/v1/event-request-approvals/"+created.Approvers[0].ID, nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run(`auto fill returns draft`, func(t *testing.T) {
		c := newTestClient(t)
		code, resp := c.do("owner", http.MethodPost, "/api/v1/event-requests/commands/auto-fill",
			map[string]any{"description": "обед завтра"})
		require.Equal(t, http.StatusOK, code, resp.Message)
		draft := decode[struct {
			Title string `json:"title"`
		}](t, resp)
		require.Equal(t, "Обед", draft.Title)
	})

	t.Run(`export is xlsx`, func(t *testing.T) {
		c := newTestClient(t)
		token, err := authutils.GetToken(testSecret, "owner", "owner@example.com", time.Hour)
		require.Nil(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/event-requests/with-approvals/export", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := c.app.Test(req, -1)
		require.Nil(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	})
}
