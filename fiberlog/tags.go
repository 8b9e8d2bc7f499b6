package fiberlog

import (
	authutils "amia-backend/lib/utils/auth-utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid      = "pid"
	TagLatency  = "latency"
	TagStatus   = "status"
	TagMethod   = "method"
	TagPath     = "path"
	TagURL      = "url"
	TagIP       = "ip"
	TagUA       = "user_agent"
	TagBody     = "body"
	TagResBody  = "res_body"
	TagQuery    = "query"
	TagUserID   = "user_id"
	RequestID   = "request_id"
	maxBodySize = 4096
)

// FuncTag значение поля лога для запроса
type FuncTag func(c *fiber.Ctx, d *data) interface{}

// data создается на каждый запрос
type data struct {
	pid   int
	start time.Time
	end   time.Time
}

func cut(raw []byte) string {
	if len(raw) > maxBodySize {
		return string(raw[:maxBodySize]) + "..."
	}
	return string(raw)
}

func getFuncTagMap(cfg Config) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid: func(_ *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagLatency: func(_ *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagStatus: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Response().StatusCode()
		},
		TagMethod: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Path()
		},
		TagURL: func(c *fiber.Ctx, _ *data) interface{} {
			return c.OriginalURL()
		},
		TagIP: func(c *fiber.Ctx, _ *data) interface{} {
			return c.IP()
		},
		TagUA: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Get(fiber.HeaderUserAgent)
		},
		TagBody: func(c *fiber.Ctx, _ *data) interface{} {
			if c.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON ||
				c.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSONCharsetUTF8 {
				return cut(c.Body())
			}
			return ""
		},
		TagResBody: func(c *fiber.Ctx, _ *data) interface{} {
			if string(c.Response().Header.ContentType()) == fiber.MIMEApplicationJSON ||
				string(c.Response().Header.ContentType()) == fiber.MIMEApplicationJSONCharsetUTF8 {
				return cut(c.Response().Body())
			}
			return ""
		},
		TagQuery: func(c *fiber.Ctx, _ *data) interface{} {
			return string(c.Request().URI().QueryString())
		},
		TagUserID: func(c *fiber.Ctx, _ *data) interface{} {
			return authutils.GetClaimString(c, "sub")
		},
		RequestID: func(c *fiber.Ctx, _ *data) interface{} {
			if id := c.Get(fiber.HeaderXRequestID); id != "" {
				return id
			}
			return c.GetRespHeader(fiber.HeaderXRequestID)
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}
