package connectionhub

import (
	wsmodels "amia-backend/models/ws"
	"testing"

	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	t.Run(`message to offline user is not sent`, func(t *testing.T) {
		hub := NewHub(nil)
		require.Equal(t, false, hub.SendMessage(wsmodels.ServerMessage{ToUserID: "user"}))
		require.Equal(t, false, hub.IsConnected("user"))
	})

	t.Run(`session lifecycle`, func(t *testing.T) {
		hub := NewHub(nil)
		first := &websocket.Conn{}
		second := &websocket.Conn{}

		hub.AddClient("user", first)
		require.Equal(t, true, hub.SendMessage(wsmodels.ServerMessage{ToUserID: "user"}))

		hub.AddClient("user", second)
		hub.DeleteClient("user", first)
		require.Equal(t, true, hub.SendMessage(wsmodels.ServerMessage{ToUserID: "user"}))

		hub.DeleteClient("user", second)
		require.Equal(t, false, hub.SendMessage(wsmodels.ServerMessage{ToUserID: "user"}))
	})
}
