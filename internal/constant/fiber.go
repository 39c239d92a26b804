package constant

import "time"

const (
	ContextKeyRequestID = "requestid"
	ContextKeyAccount   = "account"

	RequestIDHeader = "X-BoxStats-Request-ID"

	IdempotencyHeader    = "X-BoxStats-Idempotency"
	IdempotencyKeyHeader = "X-BoxStats-Idempotency-Key"

	IdempotencyKeyLocalsKey   = "idempotencyKey"
	IdempotencyKeyLengthLimit = 128

	SeasonWriteIdempotencyLifetime    = time.Hour * 24
	SeasonWriteIdempotencyRedisPrefix = "idempotency#seasonWrite"

	SeasonWriteLimiterRedisPrefix = "limiter#seasonWrite"
)
