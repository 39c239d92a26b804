package i18n

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

// Supported lists the languages labels and validation messages are served
// in. The first one is the default.
var Supported = []language.Tag{language.Russian, language.English}

var (
	UT = ut.New(ru.New(), ru.New(), en.New())

	Matcher = language.NewMatcher(Supported)
)

// Match picks the supported language closest to an Accept-Language header
// value, falling back to the default one.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, index, confidence := Matcher.Match(tags...)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[index]
}

// Base returns the two letter code of a supported tag, e.g. "ru".
func Base(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
