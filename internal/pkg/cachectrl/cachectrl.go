package cachectrl

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/zeebo/xxh3"
)

// Private marks a response as owner specific: shared caches must not store
// it and clients must revalidate before reuse.
func Private(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "private, no-cache")
	ctx.Set(fiber.HeaderVary, "Authorization, Cookie")
}

func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}

// ETag computes a strong ETag of body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxh3.Hash(body), 36) + `"`
}

// SendWithETag writes body as JSON with its ETag, or an empty 304 when the
// request's If-None-Match already names it.
func SendWithETag(ctx *fiber.Ctx, body []byte) error {
	etag := ETag(body)
	ctx.Set(fiber.HeaderETag, etag)

	if matches(ctx.Get(fiber.HeaderIfNoneMatch), etag) {
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return ctx.Send(body)
}

func matches(ifNoneMatch, etag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
