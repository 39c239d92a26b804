package appconfig

import (
	"time"

	"exusiai.dev/boxstats/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9020"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFilePath is where the rotated JSON log file is written to.
	LogFilePath string `split_words:"true" default:"logs/app.log"`

	// LogFileMaxSizeMB is the size in megabytes a log file grows to before it is rotated.
	LogFileMaxSizeMB int `split_words:"true" default:"100"`

	// LogFileMaxBackups is the number of rotated log files to keep around.
	LogFileMaxBackups int `split_words:"true" default:"7"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// provide a more contextual message when encountered a panic. See internal/server/httpserver/http.go for the
	// actual implementation details.
	DevMode bool `split_words:"true"`

	// TracingEnabled to indicate whether to enable OpenTelemetry tracing.
	TracingEnabled bool `split_words:"true"`

	// TracingExporters to indicate which exporters to use for tracing.
	// Valid values are: jaeger, otlp, stdout (for debug).
	TracingExporters []string `split_words:"true" default:"jaeger"`

	// TracingSampleRate to indicate the sampling rate for tracing.
	// Valid values are: 0.0 (disabled), 1.0 (all traces), or a value between 0.0 and 1.0 (sampling rate).
	TracingSampleRate float64 `split_words:"true" default:"1.0"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// NatsURL is the URL of the NATS server. See https://pkg.go.dev/github.com/nats-io/nats.go#Connect
	// for more information on how to construct a NATS URL.
	NatsURL string `required:"true" split_words:"true" default:"nats://127.0.0.1:4222"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	// for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/2"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// AWSAccessKey and AWSSecretKey are the static credentials used for the season archive bucket.
	// Leaving them empty falls back to the default AWS credential chain.
	AWSAccessKey string `split_words:"true"`
	AWSSecretKey string `split_words:"true"`

	// AWSRegion is the region of the season archive bucket.
	AWSRegion string `split_words:"true" default:"us-east-1"`

	// ArchiveS3Bucket is the bucket the run-script archive_seasons uploads to.
	ArchiveS3Bucket string `split_words:"true" default:"boxstats-archive"`

	// ArchiveS3Prefix is prepended to every archived object key.
	ArchiveS3Prefix string `split_words:"true" default:"seasons/"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// HTTPServerReadTimeout and HTTPServerWriteTimeout bound every request, including its store round trips.
	HTTPServerReadTimeout  time.Duration `split_words:"true" default:"20s"`
	HTTPServerWriteTimeout time.Duration `split_words:"true" default:"20s"`

	// WriteRateLimit is the number of season writes a single client may issue per minute.
	WriteRateLimit int `split_words:"true" default:"120"`

	// StatsCacheTTL is how long a computed statistics view stays in Redis before it is recomputed.
	StatsCacheTTL time.Duration `split_words:"true" default:"30m"`

	// SeasonLockExpiry is the expiry of the distributed mutex that serializes writes to one season.
	SeasonLockExpiry time.Duration `split_words:"true" default:"10s"`

	// WorkerEnabled is a flag to indicate whether to enable the statistics warm-up worker.
	WorkerEnabled bool `split_words:"true" default:"true"`

	// WorkerConcurrency is the number of season events warmed in parallel.
	WorkerConcurrency int `split_words:"true" default:"2"`

	// WorkerTimeout describes the timeout for warming the statistics of a single owner.
	WorkerTimeout time.Duration `required:"true" split_words:"true" default:"30s"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
