package notificationhandler

import (
	"amia-backend/db"
	notificationstore "amia-backend/lib/notification/store"
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	notificationapimodels "amia-backend/models/api/notification"
	wsmodels "amia-backend/models/ws"
	"sync"
	"testing"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/require"
)

type hubMock struct {
	mu       sync.Mutex
	messages []wsmodels.ServerMessage
}

func (h *hubMock) AddClient(userID string, conn *websocket.Conn)    {}
func (h *hubMock) DeleteClient(userID string, conn *websocket.Conn) {}
func (h *hubMock) IsConnected(userID string) bool                   { return true }

func (h *hubMock) SendMessage(msg wsmodels.ServerMessage) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	return true
}

func newTestHandler(t *testing.T) (Provider, *hubMock) {
	DB, err := db.ConnectInMemory()
	require.Nil(t, err)
	hub := &hubMock{}
	return NewHandler(notificationstore.NewInstance(DB), hub), hub
}

var actor = notificationapimodels.User{ID: "owner", Name: "Анна", Email: "anna@example.com"}

func TestNotificationHandler(t *testing.T) {
	t.Run(`event request change is stored and pushed`, func(t *testing.T) {
		h, hub := newTestHandler(t)
		h.EventRequestChanged("approver", notificationapimodels.EventRequestPayload{
			EventRequestID: "req-1",
			Update:         models.EventRequestCreated,
			User:           actor,
		})

		list, err := h.List("approver", notificationapimodels.NotificationFilter{})
		require.Nil(t, err)
		require.Len(t, list.Notifications, 1)
		require.Equal(t, int64(1), list.TotalCount)
		item := list.Notifications[0]
		require.Equal(t, "New Event Request", item.Title)
		require.Equal(t, "Анна (anna@example.com) has created a new event request.", item.Message)
		require.Equal(t, "req-1", item.Payload["event_request_id"])
		require.Equal(t, string(models.NotificationTypeEventRequest), item.Payload["type"])
		require.Equal(t, false, item.IsRead)

		require.Len(t, hub.messages, 1)
		require.Equal(t, "approver", hub.messages[0].ToUserID)
		require.Equal(t, item.ID, hub.messages[0].NotificationID)
		require.Equal(t, string(models.NotificationTypeEventRequest), hub.messages[0].Code)
	})

	t.Run(`approval response goes to owner`, func(t *testing.T) {
		h, _ := newTestHandler(t)
		h.ApprovalResponded("owner", notificationapimodels.ApprovalPayload{
			EventRequestID: "req-1",
			ApprovalID:     "appr-1",
			Status:         models.AStateRejected,
			User:           notificationapimodels.User{ID: "approver", Email: "bob@example.com"},
		})
		list, err := h.List("owner", notificationapimodels.NotificationFilter{})
		require.Nil(t, err)
		require.Len(t, list.Notifications, 1)
		require.Equal(t, "Event Request Rejected", list.Notifications[0].Title)
		require.Equal(t, "bob@example.com has rejected your event request.", list.Notifications[0].Message)

		h.ApprovalResponded("owner", notificationapimodels.ApprovalPayload{Status: models.AStatePending, User: actor})
		list, err = h.List("owner", notificationapimodels.NotificationFilter{})
		require.Nil(t, err)
		require.Len(t, list.Notifications, 1)
	})

	t.Run(`no self notification`, func(t *testing.T) {
		h, hub := newTestHandler(t)
		h.EventRequestChanged(actor.ID, notificationapimodels.EventRequestPayload{Update: models.EventRequestUpdated, User: actor})
		h.EventRequestChanged("", notificationapimodels.EventRequestPayload{Update: models.EventRequestUpdated, User: actor})
		list, err := h.List(actor.ID, notificationapimodels.NotificationFilter{})
		require.Nil(t, err)
		require.Len(t, list.Notifications, 0)
		require.Len(t, hub.messages, 0)
	})

	t.Run(`create validates text`, func(t *testing.T) {
		h, _ := newTestHandler(t)
		_, err := h.Create("user", " ", "text", nil)
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		_, err = h.Create("user", "title", "", nil)
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		rec, err := h.Create("user", " title ", "text", nil)
		require.Nil(t, err)
		require.Equal(t, "title", rec.Title)
		require.NotNil(t, rec.Payload)
	})

	t.Run(`read side is owner only`, func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec, err := h.Create("user", "title", "text", nil)
		require.Nil(t, err)

		_, err = h.Get(rec.ID, "other")
		require.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
		_, err = h.Get("missing", "user")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		err = h.Delete(rec.ID, "other")
		require.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))

		isRead := true
		updated, err := h.Update(rec.ID, "user", notificationapimodels.NotificationUpdateData{IsRead: &isRead})
		require.Nil(t, err)
		require.Equal(t, true, updated.IsRead)
		require.Equal(t, false, updated.IsDeleted)

		require.Nil(t, h.Delete(rec.ID, "user"))
		_, err = h.Get(rec.ID, "user")
		require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run(`filters, paging and mark all read`, func(t *testing.T) {
		h, _ := newTestHandler(t)
		for idx := 0; idx < 3; idx++ {
			_, err := h.Create("user", "title", "text", nil)
			require.Nil(t, err)
		}
		_, err := h.Create("other", "title", "text", nil)
		require.Nil(t, err)

		page, err := h.List("user", notificationapimodels.NotificationFilter{Scroll: apimodels.Scroll{Skip: 1, Take: 1}})
		require.Nil(t, err)
		require.Len(t, page.Notifications, 1)
		require.Equal(t, int64(3), page.TotalCount)
		require.Equal(t, 1, page.Take)

		_, err = h.List("user", notificationapimodels.NotificationFilter{Scroll: apimodels.Scroll{Take: 101}})
		require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

		count, err := h.MarkAllRead("user")
		require.Nil(t, err)
		require.Equal(t, int64(3), count)

		isRead := false
		unread, err := h.List("user", notificationapimodels.NotificationFilter{IsRead: &isRead})
		require.Nil(t, err)
		require.Len(t, unread.Notifications, 0)
		require.Equal(t, false, unread.Filters["is_read"])

		unread, err = h.List("other", notificationapimodels.NotificationFilter{IsRead: &isRead})
		require.Nil(t, err)
		require.Len(t, unread.Notifications, 1)
	})
}
