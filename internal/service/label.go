package service

import (
	"golang.org/x/text/language"

	"exusiai.dev/boxstats/internal/model"
	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/util/i18n"
)

var boxTypeLabels = map[language.Tag]map[model.BoxType]string{
	language.Russian: {
		model.BoxTypeRegular:    "Сезонные контейнеры",
		model.BoxTypeTournament: "Турнирные контейнеры",
	},
	language.English: {
		model.BoxTypeRegular:    "Seasonal containers",
		model.BoxTypeTournament: "Tournament containers",
	},
}

type Label struct{}

func NewLabel() *Label {
	return &Label{}
}

// GetBoxTypeLabels returns the box type labels in the supported language
// closest to acceptLanguage.
func (s *Label) GetBoxTypeLabels(acceptLanguage string) *types.BoxTypeLabels {
	tag := i18n.Match(acceptLanguage)
	labels := boxTypeLabels[tag]

	result := &types.BoxTypeLabels{
		Language: i18n.Base(tag),
		Types:    make([]*types.BoxTypeLabel, 0, len(model.BoxTypes)),
	}
	for _, boxType := range model.BoxTypes {
		result.Types = append(result.Types, &types.BoxTypeLabel{
			Type:  boxType,
			Label: labels[boxType],
		})
	}
	return result
}
