package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/pkg/bserr"
	"exusiai.dev/boxstats/internal/pkg/bsid"
	"exusiai.dev/boxstats/internal/pkg/flog"
	"exusiai.dev/boxstats/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is the maximum lifetime of an idempotency key.
	Lifetime time.Duration

	// KeyHeader is the name of the header that contains the idempotency key.
	KeyHeader string

	// KeepResponseHeaders is a list of headers that should be kept from the original response.
	// By default, all headers are kept.
	KeepResponseHeaders []string

	keepResponseHeadersMap map[string]struct{}

	// Storage is the storage backend for the idempotency key & its response data.
	Storage fiber.Storage

	RedSync *redsync.Redsync

	// Next defines a function to skip this middleware when returned true.
	Next func(c *fiber.Ctx) bool
}

type idempotencyResponse struct {
	StatusCode int                 `msgpack:"s"`
	Headers    map[string][]string `msgpack:"h"`
	Body       []byte              `msgpack:"b"`
}

// Idempotency replays the stored response of a previous request carrying
// the same key. Keys are scoped by owner, method and path so two owners
// picking the same key never see each other's responses. Failed requests
// are not stored and may be retried with the same key.
func Idempotency(config *IdempotencyConfig) fiber.Handler {
	config.keepResponseHeadersMap = make(map[string]struct{})
	for _, header := range config.KeepResponseHeaders {
		config.keepResponseHeadersMap[strings.ToLower(header)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if config.Next != nil && config.Next(c) {
			return c.Next()
		}

		key := c.Get(config.KeyHeader)
		if key == "" {
			if l := log.Trace(); l.Enabled() {
				l.
					Str("evt.name", "http.idempotency.no_key").
					Msg("idempotency key is missing. Skipping middleware.")
			}
			return c.Next()
		}

		if err := rekuest.Validate.Var(key, "max=128,alphanum"); err != nil {
			return bserr.ErrInvalidReq.Msg("invalid idempotency key: idempotency key can only be at most %d characters, consist of only alphanumeric characters", constant.IdempotencyKeyLengthLimit)
		}

		c.Locals(constant.IdempotencyKeyLocalsKey, key)
		storageKey := strings.Join([]string{bsid.Extract(c), c.Method(), c.Path(), key}, "|")

		if exist, err := checkWriteIdempotencyCachedMessage(c, config, storageKey); exist {
			return err
		}

		mutex := config.RedSync.NewMutex("mutex:idempotency-request:"+storageKey,
			redsync.WithExpiry(time.Minute),
			redsync.WithTries(5),
			redsync.WithRetryDelay(time.Millisecond*250),
		)
		if err := mutex.LockContext(c.UserContext()); err != nil {
			log.Err(err).
				Str("evt.name", "http.idempotency.lock.failed").
				Str("key", key).
				Msg("failed to lock idempotency key. Returning error.")
			return bserr.ErrInternalError.Msg("failed to lock idempotency key: the key is locked by another request; are you sending the same request concurrently or retrying with little or no backoff?")
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				log.Err(err).
					Str("evt.name", "http.idempotency.unlock.failed").
					Str("key", key).
					Msg("failed to unlock idempotency key.")
			}
		}()

		// another request holding the lock may have finished in the meantime
		if exist, err := checkWriteIdempotencyCachedMessage(c, config, storageKey); exist {
			return err
		}

		if err := c.Next(); err != nil {
			return err
		}

		responseBytes, err := marshalResponseToBytes(c, config)
		if err != nil {
			flog.ErrorFrom(c).
				Str("evt.name", "http.idempotency.response.marshal.failed").
				Err(err).
				Msg("error marshaling response to bytes. Skipping saving the idempotency response.")
			return err
		}

		if err := config.Storage.Set(storageKey, responseBytes, config.Lifetime); err != nil {
			flog.ErrorFrom(c).
				Str("evt.name", "http.idempotency.response.save.failed").
				Err(err).
				Msg("error saving the idempotency response.")
			return err
		}

		c.Set(constant.IdempotencyHeader, "saved")

		if l := log.Debug(); l.Enabled() {
			l.
				Str("evt.name", "http.idempotency.saved").
				Str("key", key).
				Msg("idempotency response saved")
		}

		return nil
	}
}

func marshalResponseToBytes(c *fiber.Ctx, conf *IdempotencyConfig) ([]byte, error) {
	response := idempotencyResponse{
		StatusCode: c.Response().StatusCode(),
		Headers:    make(map[string][]string),
		Body:       c.Response().Body(),
	}

	for header, values := range c.GetRespHeaders() {
		if conf.KeepResponseHeaders != nil {
			if _, ok := conf.keepResponseHeadersMap[strings.ToLower(header)]; !ok {
				continue
			}
		}
		response.Headers[header] = values
	}

	return msgpack.Marshal(response)
}

func unmarshalResponseToFiberResponse(c *fiber.Ctx, responseBytes []byte) error {
	var response idempotencyResponse
	if err := msgpack.Unmarshal(responseBytes, &response); err != nil {
		return err
	}

	c.Status(response.StatusCode)
	for header, values := range response.Headers {
		for i, value := range values {
			if i == 0 {
				c.Set(header, value)
			} else {
				c.Append(header, value)
			}
		}
	}
	c.Set(constant.IdempotencyHeader, "hit")

	if len(response.Body) > 0 {
		return c.Send(response.Body)
	}
	return nil
}

func checkWriteIdempotencyCachedMessage(c *fiber.Ctx, conf *IdempotencyConfig, key string) (bool, error) {
	response, err := conf.Storage.Get(key)
	if err == nil && response != nil {
		flog.DebugFrom(c).
			Str("evt.name", "http.idempotency.hit").
			Str("key", key).
			Msg("idempotency key found in storage")
		return true, unmarshalResponseToFiberResponse(c, response)
	}

	return false, nil
}
