package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/boxstats/internal/util/i18n"
	"exusiai.dev/boxstats/internal/util/rekuest"
)

func InjectI18n() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := i18n.Base(i18n.Match(c.Get(fiber.HeaderAcceptLanguage)))
		trans, _ := i18n.UT.GetTranslator(lang)
		rekuest.SetTranslator(c, trans)
		return c.Next()
	}
}
