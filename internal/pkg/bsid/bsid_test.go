package bsid

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/boxstats/internal/constant"
)

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.Len(t, a, constant.OwnerKeyLength)
	assert.NotEqual(t, a, b)
}

func TestExtract(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString(Extract(ctx))
	})

	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"header", "BoxStatsID abc", "", "abc"},
		{"header wins over cookie", "BoxStatsID abc", "def", "abc"},
		{"cookie", "", "def", "def"},
		{"foreign realm falls back to cookie", "Bearer xyz", "def", "def"},
		{"empty realm value", "BoxStatsID ", "", ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", constant.OwnerKeyCookieKey+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestInject(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		Inject(ctx, "owner-key")
		return ctx.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "owner-key", resp.Header.Get(constant.OwnerKeySetHeader))
	assert.Contains(t, resp.Header.Get("Set-Cookie"), constant.OwnerKeyCookieKey+"=owner-key")
}
