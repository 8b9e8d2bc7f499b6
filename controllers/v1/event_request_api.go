package apiv1

import (
	"amia-backend/controllers"
	autofillhandler "amia-backend/lib/autofill"
	eventrequesthandler "amia-backend/lib/event-request"
	eventrequestapprovalhandler "amia-backend/lib/event-request-approval"
	notificationhandler "amia-backend/lib/notification"
	"amia-backend/middleware"
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	eventrequestapimodels "amia-backend/models/api/event-request"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

type eventRequestApiController struct {
	controllers.BaseAPIController
	eventRequests eventrequesthandler.Provider
	approvals     eventrequestapprovalhandler.Provider
	autoFill      autofillhandler.Provider
	notifications notificationhandler.Provider
}

func InitEventRequestApiRouters(app fiber.Router, eventRequests eventrequesthandler.Provider, approvals eventrequestapprovalhandler.Provider,
	autoFill autofillhandler.Provider, notifications notificationhandler.Provider) {
	controller := eventRequestApiController{
		eventRequests: eventRequests,
		approvals:     approvals,
		autoFill:      autoFill,
		notifications: notifications,
	}
	app.Route("event-requests", func(router fiber.Router) {
		router.Post("commands/auto-fill", controller.autoFillRequest)
		router.Post("", controller.create)
		router.Get("", controller.listMine)
		router.Get("all", controller.listAll)
		router.Get("with-approvals", controller.listWithApprovals)
		router.Get("with-approvals/export", controller.exportWithApprovals)
		router.Get("google/:googleEventId", controller.getByGoogleEventID)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Patch("", controller.update)
			idRoute.Delete("", controller.delete)
			idRoute.Get("with-approvers", controller.getWithApprovers)
			idRoute.Get("approval-history", controller.approvalHistory)
			idRoute.Post("approve", controller.approve)
			idRoute.Post("reject", controller.reject)
		})
	})
}

// @Summary Автозаполнение заявки
// @Tags Заявка на событие
// @Description Черновик заявки по текстовому описанию (YandexGPT), не сохраняется
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 eventrequestapimodels.AutoFillRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestCreateData}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/commands/auto-fill [post]
func (c *eventRequestApiController) autoFillRequest(ctx *fiber.Ctx) error {
	var payload eventrequestapimodels.AutoFillRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if payload.CurrentDate.IsZero() {
		payload.CurrentDate = time.Now()
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.autoFill.AutoFill(ctx.UserContext(), userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка автозаполнения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Создание
// @Tags Заявка на событие
// @Description Создание заявки, согласующие создаются в той же транзакции
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 eventrequestapimodels.EventRequestCreateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestWithApproversView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests [post]
func (c *eventRequestApiController) create(ctx *fiber.Ctx) error {
	var payload eventrequestapimodels.EventRequestCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.eventRequests.Create(userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания заявки")
	}
	notifyEventRequestChanged(c.notifications, middleware.GetUser(ctx), resp.ID, resp.Approvers, models.EventRequestCreated)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Мои заявки
// @Tags Заявка на событие
// @Description Заявки текущего пользователя, по дате начала
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"pending/approved/rejected"
// @Param   importance_level	query		int		false	"1..5"
// @Param   start_date_from		query		string	false	"RFC3339 или YYYY-MM-DD"
// @Param   start_date_to		query		string	false	"RFC3339 или YYYY-MM-DD"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestList}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests [get]
func (c *eventRequestApiController) listMine(ctx *fiber.Ctx) error {
	filter, err := c.parseFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	filter.CreatedBy = ""
	userID := middleware.GetUserID(ctx)
	list, err := c.eventRequests.ListMine(userID, filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.EventRequestList{
		EventRequests: list,
		Count:         len(list),
		Filters:       filter.ToMap(),
	}))
}

// @Summary Все заявки
// @Tags Заявка на событие
// @Description Все заявки, без фильтра по автору
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"pending/approved/rejected"
// @Param   importance_level	query		int		false	"1..5"
// @Param   start_date_from		query		string	false	"RFC3339 или YYYY-MM-DD"
// @Param   start_date_to		query		string	false	"RFC3339 или YYYY-MM-DD"
// @Param   created_by			query		string	false	"ид автора"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestList}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/all [get]
func (c *eventRequestApiController) listAll(ctx *fiber.Ctx) error {
	filter, err := c.parseFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, err := c.eventRequests.ListAll(filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(eventrequestapimodels.EventRequestList{
		EventRequests: list,
		Count:         len(list),
		Filters:       filter.ToMap(),
	}))
}

// @Summary Заявки со статусом согласования
// @Tags Заявка на событие
// @Description Заявки текущего пользователя со сводным статусом согласования, новые сверху
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"pending/approved/rejected"
// @Param   skip				query		int		false	"пропустить"
// @Param   take				query		int		false	"не более 100"
// @Success 200 {object} apimodels.ScrollerResponse{data=eventrequestapimodels.EventRequestWithApprovalsPage}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/with-approvals [get]
func (c *eventRequestApiController) listWithApprovals(ctx *fiber.Ctx) error {
	scroll, err := c.QueryPage(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	filter := eventrequestapimodels.WithApprovalsFilter{
		Scroll: scroll,
		Status: models.RequestStatus(ctx.Query("status")),
	}
	if err = filter.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	page, err := c.eventRequests.ListWithApprovalStatus(userID, filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявок с согласованиями")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(page, page.TotalCount))
}

// @Summary Выгрузка заявок со статусом согласования
// @Tags Заявка на событие
// @Description Выгрузка в xlsx
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"pending/approved/rejected"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/with-approvals/export [get]
func (c *eventRequestApiController) exportWithApprovals(ctx *fiber.Ctx) error {
	userID := middleware.GetUserID(ctx)
	buf, err := c.eventRequests.ExportWithApprovals(userID, models.RequestStatus(ctx.Query("status")))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки заявок")
	}
	fileName := fmt.Sprintf("event-requests-%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

// @Summary Получение по ид события Google Calendar
// @Tags Заявка на событие
// @Description Получение по ид события Google Calendar
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   googleEventId		path		string	true	"Google event ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/google/{googleEventId} [get]
func (c *eventRequestApiController) getByGoogleEventID(ctx *fiber.Ctx) error {
	googleEventID, err := c.GetIDByKey(ctx, "googleEventId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.eventRequests.GetByGoogleEventID(googleEventID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Получение по ИД
// @Tags Заявка на событие
// @Description Получение по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id} [get]
func (c *eventRequestApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.eventRequests.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Получение с согласующими
// @Tags Заявка на событие
// @Description Заявка и все ее согласования
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestWithApproversView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id}/with-approvers [get]
func (c *eventRequestApiController) getWithApprovers(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := c.eventRequests.GetWithApprovers(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary История согласования
// @Tags Заявка на событие
// @Description История согласования
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=[]eventrequestapimodels.ApprovalHistoryView}
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id}/approval-history [get]
func (c *eventRequestApiController) approvalHistory(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if _, err = c.eventRequests.Get(id); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	resp, err := c.approvals.History(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Обновление
// @Tags Заявка на событие
// @Description Частичное обновление, только автор заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 eventrequestapimodels.EventRequestEditData	true	"request body"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id} [patch]
func (c *eventRequestApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload eventrequestapimodels.EventRequestEditData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.eventRequests.Update(id, userID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления заявки")
	}
	c.notifyApprovers(ctx, id, models.EventRequestUpdated)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Удаление
// @Tags Заявка на событие
// @Description Удаление заявки вместе с согласованиями, только автор заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id} [delete]
func (c *eventRequestApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	// согласующих запоминаем до удаления, чтобы отправить уведомления
	approvers, err := c.approvals.ListByRequest(id)
	if err != nil {
		c.GetLogger(ctx).WithError(err).Warn("не удалось получить согласующих удаляемой заявки")
	}
	userID := middleware.GetUserID(ctx)
	_, err = c.eventRequests.Delete(id, userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления заявки")
	}
	notifyEventRequestChanged(c.notifications, middleware.GetUser(ctx), id, approvers, models.EventRequestDeleted)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Согласовать
// @Tags Заявка на событие
// @Description Перевести заявку в статус approved, только автор заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestView}
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id}/approve [post]
func (c *eventRequestApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.eventRequests.Approve(id, userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования заявки")
	}
	c.notifyApprovers(ctx, id, models.EventRequestUpdated)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отклонить
// @Tags Заявка на событие
// @Description Перевести заявку в статус rejected, только автор заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id					path		string	true	"rec ID"
// @Success 200 {object} apimodels.Response{data=eventrequestapimodels.EventRequestView}
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/event-requests/{id}/reject [post]
func (c *eventRequestApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := middleware.GetUserID(ctx)
	resp, err := c.eventRequests.Reject(id, userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения заявки")
	}
	c.notifyApprovers(ctx, id, models.EventRequestUpdated)
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *eventRequestApiController) notifyApprovers(ctx *fiber.Ctx, eventRequestID string, update models.EventRequestUpdate) {
	approvers, err := c.approvals.ListByRequest(eventRequestID)
	if err != nil {
		c.GetLogger(ctx).WithError(err).Warn("не удалось получить согласующих для уведомления")
		return
	}
	notifyEventRequestChanged(c.notifications, middleware.GetUser(ctx), eventRequestID, approvers, update)
}

func (c *eventRequestApiController) parseFilter(ctx *fiber.Ctx) (filter eventrequestapimodels.EventRequestFilter, err error) {
	filter.Status = models.RequestStatus(ctx.Query("status"))
	filter.CreatedBy = ctx.Query("created_by")
	if filter.ImportanceLevel, err = c.QueryInt(ctx, "importance_level"); err != nil {
		return filter, err
	}
	if filter.StartDateFrom, err = c.QueryTime(ctx, "start_date_from"); err != nil {
		return filter, err
	}
	if filter.StartDateTo, err = c.QueryTime(ctx, "start_date_to"); err != nil {
		return filter, err
	}
	return filter, filter.Validate()
}
