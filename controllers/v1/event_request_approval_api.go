package apiv1

import (
	"amia-backend/controllers"
	eventrequesthandler "amia-backend/lib/event-request"
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	notificationhandler "amia-backend/lib/notification"
	"amia-backend/middleware"
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	eventrequestapimodels "amia-backend/models/api/event-request"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
	eventRequests eventrequesthandler.Provider
	approvals     eventrequestapprovalhandler.Provider
	notifications notificationhandler.Provider
}

func InitEventRequestApprovalApiRouters(app fiber.Router, eventRequests eventrequesthandler.Provider,
	approvals eventrequestapprovalhandler.Provider, notifications notificationhandler.Provider) {
	controller := approvalApiController{
		eventRequests: eventRequests,
		approvals:     approvals,
		notifications: notifications,
	}
	app.Route("event-request-approvals", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Get("", controller.list)
		router.Get("pending", controller.listPending)
		router.Get("by-request/:eventRequestId", controller.listByRequest)
		router.Get("by-request/:eventRequestId/required-complete", controller.requiredComplete)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Patch("", controller.update)
			idRoute.Delete("", controller.delete)
			idRoute.Post("approve", controller.approve)
			idRoute.Post("reject", controller.reject)
		})
	})
}

// @Summary Добавить согласующего
// @Tags Согласование заявок
// @Description Добавить согласующего к заявке, только автор заявки
// @Param   Authorization		header	string									true	"Authorization token"
// @Param	body 				body	eventrequestapimodels.ApprovalCreateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals [post]
func (c *approvalApiController) create(ctx *fiber.Ctx) error {
	var payload eventrequestapimodels.ApprovalCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.approvals.Create(userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания согласования")
	}
	notifyEventRequestChanged(c.notifications, middleware.GetUser(ctx), resp.EventRequestID,
		[]eventrequestapimodels.ApprovalView{*resp}, models.EventRequestCreated)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список согласований
// @Tags Согласование заявок
// @Description Фильтры объединяются по И
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   event_request_id	query	string	false	"ид заявки"
// @Param   user_id				query	string	false	"ид согласующего"
// @Param   status				query	string	false	"pending/approved/rejected"
// @Param   required			query	bool	false	"обязательное"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalList}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals [get]
func (c *approvalApiController) list(ctx *fiber.Ctx) error {
	required, err := c.QueryBool(ctx, "required")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	filter := eventrequestapimodels.ApprovalFilter{
		EventRequestID: ctx.Query("event_request_id"),
		UserID:         ctx.Query("user_id"),
		Status:         models.ApprovalState(ctx.Query("status")),
		Required:       required,
	}
	if err = filter.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := c.approvals.List(filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка согласований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.ApprovalList{
		Approvals: list,
		Count:     len(list),
		Filters:   filter.ToMap(),
	}))
}

// @Summary Ожидающие моего ответа
// @Tags Согласование заявок
// @Description Согласования текущего пользователя в статусе pending
// @Param   Authorization		header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalList}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/pending [get]
func (c *approvalApiController) listPending(ctx *fiber.Ctx) error {
	userID := middleware.GetUserID(ctx)
	list, err := c.approvals.ListPendingForUser(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка согласований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.ApprovalList{
		Approvals: list,
		Count:     len(list),
	}))
}

// @Summary Согласования заявки
// @Tags Согласование заявок
// @Description Согласования заявки
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   eventRequestId		path	string	true	"ид заявки"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalList}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/by-request/{eventRequestId} [get]
func (c *approvalApiController) listByRequest(ctx *fiber.Ctx) error {
	eventRequestID, err := c.GetIDByKey(ctx, "eventRequestId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := c.approvals.ListByRequest(eventRequestID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка согласований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.ApprovalList{
		Approvals: list,
		Count:     len(list),
		Filters:   map[string]any{"event_request_id": eventRequestID},
	}))
}

// @Summary Обязательные согласования получены
// @Tags Согласование заявок
// @Description true, если обязательных согласований нет или все они approved
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   eventRequestId		path	string	true	"ид заявки"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.RequiredCompleteView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/by-request/{eventRequestId}/required-complete [get]
func (c *approvalApiController) requiredComplete(ctx *fiber.Ctx) error {
	eventRequestID, err := c.GetIDByKey(ctx, "eventRequestId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	complete, err := c.approvals.AllRequiredComplete(eventRequestID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка проверки обязательных согласований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.RequiredCompleteView{
		EventRequestID:      eventRequestID,
		AllRequiredComplete: complete,
	}))
}

// @Summary Получение по ИД
// @Tags Согласование заявок
// @Description Получение по ИД
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id					path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/{id} [get]
func (c *approvalApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.approvals.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Ответ согласующего
// @Tags Согласование заявок
// @Description Изменить статус согласования, только согласующий
// @Param   Authorization		header	string									true	"Authorization token"
// @Param	body 				body	eventrequestapimodels.ApprovalUpdateData	true	"request body"
// @Param   id					path	string									true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/{id} [patch]
func (c *approvalApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload eventrequestapimodels.ApprovalUpdateData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.approvals.Update(id, userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления согласования")
	}
	c.notifyOwner(ctx, *resp)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Удаление
// @Tags Согласование заявок
// @Description Удалить может согласующий или автор заявки
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id					path	string	true	"rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/{id} [delete]
func (c *approvalApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	_, err = c.approvals.Delete(id, userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Согласовать
// @Tags Согласование заявок
// @Description Согласовать, только согласующий
// @Param   Authorization		header	string									true	"Authorization token"
// @Param	body 				body	eventrequestapimodels.ApprovalResponseData	false	"request body"
// @Param   id					path	string									true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/{id}/approve [post]
func (c *approvalApiController) approve(ctx *fiber.Ctx) error {
	return c.respond(ctx, models.AStateApproved)
}

// @Summary Отклонить
// @Tags Согласование заявок
// @Description Отклонить, только согласующий
// @Param   Authorization		header	string									true	"Authorization token"
// @Param	body 				body	eventrequestapimodels.ApprovalResponseData	false	"request body"
// @Param   id					path	string									true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-request-approvals/{id}/reject [post]
func (c *approvalApiController) reject(ctx *fiber.Ctx) error {
	return c.respond(ctx, models.AStateRejected)
}

func (c *approvalApiController) respond(ctx *fiber.Ctx, status models.ApprovalState) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload eventrequestapimodels.ApprovalResponseData
	if len(ctx.Body()) != 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}
	userID := middleware.GetUserID(ctx)
	var resp *eventrequestapimodels.ApprovalView
	if status == models.AStateApproved {
		resp, err = c.approvals.Approve(id, userID, payload.ResponseNotes)
	} else {
		resp, err = c.approvals.Reject(id, userID, payload.ResponseNotes)
	}
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка ответа на согласование")
	}
	c.notifyOwner(ctx, *resp)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *approvalApiController) notifyOwner(ctx *fiber.Ctx, approval eventrequestapimodels.ApprovalView) {
	if !approval.Status.IsResponded() {
		return
	}
	request, err := c.eventRequests.Get(approval.EventRequestID)
	if err != nil {
		c.GetLogger(ctx).WithError(err).Warn("не удалось получить заявку для уведомления автора")
		return
	}
	notifyApprovalResponded(c.notifications, middleware.GetUser(ctx), request.CreatedBy, approval)
}
