package ws

import (
	wsclient "amia-backend/lib/ws/client"
	connectionhub "amia-backend/lib/ws/hub/connection-hub"
	"amia-backend/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func InitWs(app fiber.Router, hub connectionhub.Provider) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		ctx.Locals("userID", middleware.GetUserID(ctx))
		return ctx.Next()
	})
	app.Get("/", websocket.New(func(c *websocket.Conn) {
		notificationHandler(hub, c)
	}))
}

// @Summary Уведомления в реальном времени
// @Tags Websocket
// @Description При подключении отправляются непрочитанные уведомления, далее новые по мере появления
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 401
// @Failure 426
// @router /ws [get]
func notificationHandler(hub connectionhub.Provider, c *websocket.Conn) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return
	}
	client := wsclient.NewClient(userID, c)
	hub.AddClient(userID, c)
	defer hub.DeleteClient(userID, c)
	client.Dispatch()
}
