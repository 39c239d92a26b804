package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "ru"},
		{"en-US,en;q=0.9", "en"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"de-DE,en;q=0.5", "en"},
		{"ja-JP", "ru"},
		{";;;garbage", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Base(Match(tt.header)))
		})
	}
}
