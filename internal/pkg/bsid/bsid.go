// Package bsid handles the owner key that identifies an anonymous box owner.
package bsid

import (
	"strings"

	"github.com/dchest/uniuri"
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/boxstats/internal/constant"
)

// New generates a random owner key.
func New() string {
	return uniuri.NewLen(constant.OwnerKeyLength)
}

// Extract returns the owner key sent with the request. The Authorization
// header takes precedence over the cookie. An empty string means none was sent.
func Extract(ctx *fiber.Ctx) string {
	authorization := strings.TrimSpace(ctx.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(authorization, constant.OwnerKeyAuthorizationRealm+" ") {
		if key := strings.TrimSpace(strings.TrimPrefix(authorization, constant.OwnerKeyAuthorizationRealm)); key != "" {
			return key
		}
	}

	return ctx.Cookies(constant.OwnerKeyCookieKey)
}

// Inject hands an owner key back to the client via cookie and response header.
func Inject(ctx *fiber.Ctx, ownerKey string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     constant.OwnerKeyCookieKey,
		Value:    ownerKey,
		MaxAge:   constant.OwnerKeyAuthMaxCookieAgeSec,
		Path:     "/",
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   ctx.Protocol() == "https",
		HTTPOnly: true,
	})

	ctx.Set(constant.OwnerKeySetHeader, ownerKey)
}
