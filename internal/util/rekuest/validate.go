package rekuest

import (
	"errors"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	ruTranslations "github.com/go-playground/validator/v10/translations/ru"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/util"
	"exusiai.dev/boxstats/internal/util/i18n"
)

const translatorLocalsKey = "T"

var Validate = util.NewValidator()

func init() {
	rutr, _ := i18n.UT.GetTranslator("ru")
	if err := ruTranslations.RegisterDefaultTranslations(Validate, rutr); err != nil {
		log.Warn().Err(err).Str("locale", "ru").Msg("could not register translation")
	}

	entr, _ := i18n.UT.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(Validate, entr); err != nil {
		log.Warn().Err(err).Str("locale", "en").Msg("could not register translation")
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

// SetTranslator stores the request's translator for validation messages.
func SetTranslator(ctx *fiber.Ctx, trans ut.Translator) {
	ctx.Locals(translatorLocalsKey, trans)
}

// TranslatorFromCtx returns the request's translator, or the fallback one
// when the i18n middleware did not run.
func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	if trans, ok := ctx.Locals(translatorLocalsKey).(ut.Translator); ok {
		return trans
	}
	return i18n.UT.GetFallback()
}

func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))
	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   fe.Translate(utt),
		})
	}
	return trans
}

func violations(ctx *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return bserr.ErrInvalidReq.Msg("invalid request: %s", err)
	}
	return bserr.NewInvalidViolations(translate(TranslatorFromCtx(ctx), ve))
}

// ValidBody parses the request body into dest, which must be a pointer, and
// validates it against its struct tags.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return bserr.ErrMalformedInput.Msg("invalid request body: %s", err)
	}

	return ValidStruct(ctx, dest)
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	if err := Validate.Struct(dest); err != nil {
		return violations(ctx, err)
	}

	return nil
}

func ValidVar(ctx *fiber.Ctx, field any, tag string) error {
	if err := Validate.Var(field, tag); err != nil {
		return violations(ctx, err)
	}

	return nil
}
