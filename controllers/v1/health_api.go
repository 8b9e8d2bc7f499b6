package apiv1

import (
	"amia-backend/controllers"
	"amia-backend/db"
	apimodels "amia-backend/models/api"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type healthApiController struct {
	controllers.BaseAPIController
	db *gorm.DB
}

type HealthView struct {
	Database string `json:"database"`
}

func InitHealthApiRouters(app fiber.Router, DB *gorm.DB) {
	controller := healthApiController{
		db: DB,
	}
	app.Get("health", controller.health)
}

// @Summary Проверка доступности
// @Tags Сервис
// @Description Проверка соединения с БД
// @Success 200 {object} apimodels.Response{data=HealthView}
// @Failure 503 {object} apimodels.Response
// @router /api/v1/health [get]
func (c *healthApiController) health(ctx *fiber.Ctx) error {
	if err := db.PingDB(c.db); err != nil {
		c.GetLogger(ctx).WithError(err).Error("БД недоступна")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("БД недоступна"))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(HealthView{Database: "ok"}))
}
