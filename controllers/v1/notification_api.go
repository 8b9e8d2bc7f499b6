package apiv1

import (
	"amia-backend/controllers"
	notificationhandler "amia-backend/lib/notification"
	"amia-backend/middleware"
	apimodels "amia-backend/models/api"
	notificationapimodels "amia-backend/models/api/notification"

	"github.com/gofiber/fiber/v2"
)

type notificationApiController struct {
	controllers.BaseAPIController
	notifications notificationhandler.Provider
}

func InitNotificationApiRouters(app fiber.Router, notifications notificationhandler.Provider) {
	controller := notificationApiController{
		notifications: notifications,
	}
	app.Route("notifications", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("mark-all-read", controller.markAllRead)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Patch("", controller.update)
			idRoute.Delete("", controller.delete)
		})
	})
}

// @Summary Мои уведомления
// @Tags Уведомления
// @Description Новые сверху
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   is_read				query	bool	false	"прочитано"
// @Param   is_deleted			query	bool	false	"удалено"
// @Param   skip				query	int		false	"пропустить"
// @Param   take				query	int		false	"размер страницы, по умолчанию 50, не более 100"
// @Success 200 {object} apimodels.Response{data=notificationapimodels.NotificationList}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications [get]
func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	isRead, err := c.QueryBool(ctx, "is_read")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	isDeleted, err := c.QueryBool(ctx, "is_deleted")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	scroll, err := c.QueryPage(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	filter := notificationapimodels.NotificationFilter{
		Scroll:    scroll,
		IsRead:    isRead,
		IsDeleted: isDeleted,
	}
	if err = filter.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.notifications.List(middleware.GetUserID(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка уведомлений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Прочитать все
// @Tags Уведомления
// @Description Отметить все уведомления прочитанными
// @Param   Authorization		header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=notificationapimodels.MarkAllReadView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications/mark-all-read [post]
func (c *notificationApiController) markAllRead(ctx *fiber.Ctx) error {
	count, err := c.notifications.MarkAllRead(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления уведомлений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(notificationapimodels.MarkAllReadView{UpdatedCount: count}))
}

// @Summary Получение по ИД
// @Tags Уведомления
// @Description Получение по ИД
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id					path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=notificationapimodels.NotificationView}
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications/{id} [get]
func (c *notificationApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.notifications.Get(id, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения уведомления")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Обновление
// @Tags Уведомления
// @Description Отметить прочитанным или удаленным
// @Param   Authorization		header	string										true	"Authorization token"
// @Param	body 				body	notificationapimodels.NotificationUpdateData	true	"request body"
// @Param   id					path	string										true	"rec ID"
// @Success 200 {object} apimodels.Response{data=notificationapimodels.NotificationView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications/{id} [patch]
func (c *notificationApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload notificationapimodels.NotificationUpdateData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.notifications.Update(id, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления уведомления")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Удаление
// @Tags Уведомления
// @Description Удаление
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id					path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications/{id} [delete]
func (c *notificationApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.notifications.Delete(id, middleware.GetUserID(ctx)); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления уведомления")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
