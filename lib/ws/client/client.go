package wsclient

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func NewClient(userID string, c *websocket.Conn) *WsClient {
	return &WsClient{
		conn:   c,
		userID: userID,
	}
}

// WsClient канал только на отправку, входящие сообщения читаются ради ping/pong и close
type WsClient struct {
	conn   *websocket.Conn
	userID string
}

var closeCodes []int

func init() {
	for i := websocket.CloseNormalClosure; i <= websocket.CloseTLSHandshake; i++ {
		closeCodes = append(closeCodes, i)
	}
}

// Dispatch блокируется до закрытия соединения или истечения pongWait без ответа клиента
func (c *WsClient) Dispatch() {
	if c.conn == nil || c.conn.Conn == nil {
		return
	}
	logger := log.WithField("user_id", c.userID)
	done := make(chan struct{})
	defer close(done)
	go c.keepAlive(done, logger)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, closeCodes...) {
				logger.WithError(err).Warn("соединение websocket прервано")
			}
			return
		}
		logger.WithField("ws_message", string(data)).Debug("ws-msg")
	}
}

func (c *WsClient) keepAlive(done <-chan struct{}, logger *log.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			if err != nil {
				logger.WithError(err).Debug("ошибка отправки ping")
				return
			}
		}
	}
}
