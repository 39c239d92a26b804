package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/boxstats/internal/pkg/bserr"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(fibersentry.New(fibersentry.Config{}))
	app.Get("/", handler)
	return app
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"season not found", bserr.ErrSeasonNotFound.Msg("season %d not found", 3), fiber.StatusNotFound, bserr.CodeSeasonNotFound},
		{"duplicate box type", bserr.ErrDuplicateBoxType, fiber.StatusConflict, bserr.CodeDuplicateBoxType},
		{"wrapped", errors.Wrap(bserr.ErrNoSeasonsForUser, "stats"), fiber.StatusNotFound, bserr.CodeNoSeasonsForUser},
		{"negative delta", bserr.ErrNegativeDelta, fiber.StatusInternalServerError, bserr.CodeNegativeDelta},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "UNKNOWN_ERROR"},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError, bserr.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(b, &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestErrorHandlerExtras(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return bserr.NewInvalidViolations([]string{"boxes"})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Equal(t, bserr.CodeInvalidRequest, body["code"])
	assert.Equal(t, []any{"boxes"}, body["violations"])
}
