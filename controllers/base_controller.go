package controllers

import (
	apperrors "amia-backend/lib/utils/app-errors"
	"amia-backend/middleware"
	"amia-backend/models"
	apimodels "amia-backend/models/api"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := ctx.Params(key)
	if id == "" {
		return "", errors.Errorf("не указан параметр %v", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("user_id", middleware.GetUserID(ctx)).
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

// SendError код ответа по виду ошибки. Ошибки хранилища и неизвестные логируются, клиенту уходит msg.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, msg string) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindConflict:
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(apperrors.Message(err)))
	case apperrors.KindNotFound:
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(apperrors.Message(err)))
	case apperrors.KindPermission:
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(apperrors.Message(err)))
	}
	logger.WithError(err).Error(msg)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(msg))
}

func (c *BaseAPIController) QueryInt(ctx *fiber.Ctx, key string) (*int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.Errorf("параметр %v должен быть целым числом", key)
	}
	return &value, nil
}

func (c *BaseAPIController) QueryBool(ctx *fiber.Ctx, key string) (*bool, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.Errorf("параметр %v должен быть true или false", key)
	}
	return &value, nil
}

// QueryTime принимает RFC3339 или дату YYYY-MM-DD
func (c *BaseAPIController) QueryTime(ctx *fiber.Ctx, key string) (*time.Time, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, models.DateLayout} {
		value, err := time.Parse(layout, raw)
		if err == nil {
			return &value, nil
		}
	}
	return nil, errors.Errorf("параметр %v должен быть датой в формате RFC3339 или YYYY-MM-DD", key)
}

// QueryPage skip/take, отсутствующие параметры равны 0
func (c *BaseAPIController) QueryPage(ctx *fiber.Ctx) (page apimodels.Scroll, err error) {
	skip, err := c.QueryInt(ctx, "skip")
	if err != nil {
		return page, err
	}
	take, err := c.QueryInt(ctx, "take")
	if err != nil {
		return page, err
	}
	if skip != nil {
		page.Skip = *skip
	}
	if take != nil {
		page.Take = *take
	}
	return page, nil
}
