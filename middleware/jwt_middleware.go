package middleware

import (
	apimodels "amia-backend/models/api"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthorizationRequired заголовок "Authorization: Bearer <token>", проверяет HS256 токен (Supabase), claims кладутся в ctx.Locals("user")
func AuthorizationRequired(secret string) fiber.Handler {
	return authorization(secret, "header:Authorization")
}

// WsAuthorizationRequired браузер не передает заголовки при подключении websocket, токен можно указать в access_token
func WsAuthorizationRequired(secret string) fiber.Handler {
	return authorization(secret, "header:Authorization,query:access_token")
}

func authorization(secret, tokenLookup string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims:      jwt.MapClaims{},
		TokenLookup: tokenLookup,
		AuthScheme:  "Bearer",
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(secret),
		},
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("требуется авторизация"))
		},
	})
}

// UserRequired токен без sub не дает доступа к данным
func UserRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if GetUserID(ctx) == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("в токене отсутствует пользователь"))
		}
		return ctx.Next()
	}
}
