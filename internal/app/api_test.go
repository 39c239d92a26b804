package app_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/pkg/testentry"
)

type client struct {
	t        *testing.T
	app      *fiber.App
	ownerKey string
}

func (c *client) do(method, path, body string, headers map[string]string) (*http.Response, gjson.Result) {
	c.t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.ownerKey != "" {
		req.Header.Set(fiber.HeaderAuthorization, constant.OwnerKeyAuthorizationRealm+" "+c.ownerKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.app.Test(req, 10000)
	require.NoError(c.t, err)

	b, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, gjson.ParseBytes(b)
}

func TestAPIMeta(t *testing.T) {
	testentry.RequireIntegration(t)
	c := &client{t: t, app: testentry.Start(t)}

	t.Run("health", func(t *testing.T) {
		resp, _ := c.do(http.MethodGet, "/api/_/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bininfo", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/_/bininfo", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, j.Get("version").String())
	})

	t.Run("box type labels", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/meta/box-types", "", map[string]string{
			fiber.HeaderAcceptLanguage: "en-US,en;q=0.9",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "en", j.Get("language").String())
		assert.Equal(t, "regular", j.Get("types.0.type").String())
	})
}

func TestAPISeasons(t *testing.T) {
	testentry.RequireIntegration(t)
	c := &client{t: t, app: testentry.Start(t)}

	t.Run("unauthorized", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/accounts/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", j.Get("code").String())
	})

	resp, j := c.do(http.MethodPost, "/api/v1/accounts", "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, j.Raw)
	c.ownerKey = j.Get("ownerKey").String()
	require.Len(t, c.ownerKey, constant.OwnerKeyLength)
	assert.Equal(t, c.ownerKey, resp.Header.Get(constant.OwnerKeySetHeader))

	t.Run("no seasons yet", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/drops/stats/total/qualities", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NO_SEASONS_FOR_USER", j.Get("code").String())

		resp, j = c.do(http.MethodGet, "/api/v1/drops/seasons/completed", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "[]", j.Raw)
	})

	t.Run("ingestion", func(t *testing.T) {
		resp, j := c.do(http.MethodPost, "/api/v1/drops/seasons/new",
			`{"season_number":1,"boxes":[{"type":"regular","box_variant":"sport","items":[{"quality":"sport","quantity":20},{"quality":"special","quantity":2}]}]}`, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode, j.Raw)
		assert.True(t, j.Get("created").Bool())

		resp, j = c.do(http.MethodPost, "/api/v1/drops/seasons",
			`{"season_number":1,"boxes":[{"type":"regular","box_variant":"lux","items":[{"quality":"lux","quantity":1}]}]}`, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode, j.Raw)
		assert.Equal(t, "DUPLICATE_BOX_TYPE", j.Get("code").String())

		resp, j = c.do(http.MethodPost, "/api/v1/drops/seasons",
			`{"season_number":1,"boxes":[{"type":"tournament","items":[{"quality":"import","quantity":3}]}]}`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		assert.False(t, j.Get("created").Bool())

		resp, j = c.do(http.MethodPost, "/api/v1/drops/seasons",
			`{"season_number":2,"boxes":[{"type":"regular","box_variant":"sport","items":[{"quality":"sport","quantity":10}]}]}`, nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode, j.Raw)

		resp, j = c.do(http.MethodPost, "/api/v1/drops/seasons",
			`{"season_number":3,"boxes":[{"type":"regular","items":[{"quality":"sport","quantity":1}]}]}`, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, j.Raw)

		resp, j = c.do(http.MethodGet, "/api/v1/drops/seasons/completed", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "[1,2]", j.Raw)
	})

	t.Run("content view", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/drops/stats/total/qualities", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)

		regular := j.Get("regular")
		assert.Equal(t, int64(32), regular.Get("total.totalBoxes").Int())
		assert.Equal(t, int64(30), regular.Get(`total.qualities.#(quality=="sport").count`).Int())
		assert.Equal(t, int64(10), regular.Get(`lastSeason.qualities.#(quality=="sport").count`).Int())
		assert.Equal(t, int64(20), regular.Get(`prevSeasons.qualities.#(quality=="sport").count`).Int())
		assert.True(t, j.Get("tournament").Exists())
		assert.False(t, j.Get("tournament.lastSeason").Exists())

		etag := resp.Header.Get(fiber.HeaderETag)
		require.NotEmpty(t, etag)
		resp, _ = c.do(http.MethodGet, "/api/v1/drops/stats/total/qualities", "", map[string]string{
			fiber.HeaderIfNoneMatch: etag,
		})
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("single season views", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/drops/stats/seasons/2/qualities", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		assert.Equal(t, float64(100), j.Get("regular.chances.0.chance").Float())
		assert.False(t, j.Get("tournament").Exists())

		resp, j = c.do(http.MethodGet, "/api/v1/drops/stats/seasons/9/qualities", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "SEASON_NOT_FOUND", j.Get("code").String())

		resp, j = c.do(http.MethodGet, "/api/v1/drops/stats/seasons/1/probability", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		assert.Equal(t, "sport", j.Get("0.box_variant").String())

		resp, j = c.do(http.MethodGet, "/api/v1/drops/stats/total/seasons", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		assert.Equal(t, int64(22), j.Get("regular.0.count").Int())
	})

	t.Run("replace and delete", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/drops/seasons/2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		seasonID := j.Get("id").String()

		resp, j = c.do(http.MethodPatch, "/api/v1/drops/seasons/"+seasonID,
			`[{"type":"regular","box_variant":"golden","items":[{"quality":"exotic","quantity":1}]}]`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)

		resp, j = c.do(http.MethodPatch, "/api/v1/drops/seasons/"+seasonID, `{"boxes":[]}`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, j.Raw)
		assert.True(t, j.Get("deleted").Bool())

		resp, j = c.do(http.MethodGet, "/api/v1/drops/seasons/2", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "SEASON_NOT_FOUND", j.Get("code").String())
	})

	t.Run("idempotency", func(t *testing.T) {
		key := uniuri.NewLen(32)
		body := `{"season_number":7,"boxes":[{"type":"tournament","items":[{"quality":"lux","quantity":4}]}]}`
		headers := map[string]string{constant.IdempotencyKeyHeader: key}

		resp, j := c.do(http.MethodPost, "/api/v1/drops/seasons", body, headers)
		assert.Equal(t, http.StatusCreated, resp.StatusCode, j.Raw)
		assert.Equal(t, "saved", resp.Header.Get(constant.IdempotencyHeader))

		resp, j = c.do(http.MethodPost, "/api/v1/drops/seasons", body, headers)
		assert.Equal(t, http.StatusCreated, resp.StatusCode, j.Raw)
		assert.Equal(t, "hit", resp.Header.Get(constant.IdempotencyHeader))
	})

	t.Run("list", func(t *testing.T) {
		resp, j := c.do(http.MethodGet, "/api/v1/drops/seasons", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		numbers := []string{}
		for _, s := range j.Get("seasons").Array() {
			numbers = append(numbers, strconv.FormatInt(s.Get("season_number").Int(), 10))
		}
		assert.Equal(t, []string{"1", "7"}, numbers)
	})
}
