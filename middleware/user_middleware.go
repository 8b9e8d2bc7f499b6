package middleware

import (
	authutils "amia-backend/lib/utils/auth-utils"
	notificationapimodels "amia-backend/models/api/notification"

	"github.com/gofiber/fiber/v2"
)

func GetUserID(ctx *fiber.Ctx) string {
	return authutils.GetClaimString(ctx, "sub")
}

func GetUserEmail(ctx *fiber.Ctx) string {
	return authutils.GetClaimString(ctx, "email")
}

// GetUserName имя из user_metadata Supabase, если есть
func GetUserName(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	meta, ok := claims["user_metadata"].(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"full_name", "name"} {
		if name, ok := meta[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}

// GetUser автор действия для уведомлений
func GetUser(ctx *fiber.Ctx) notificationapimodels.User {
	return notificationapimodels.User{
		ID:    GetUserID(ctx),
		Name:  GetUserName(ctx),
		Email: GetUserEmail(ctx),
	}
}
