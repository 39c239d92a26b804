package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"exusiai.dev/boxstats/internal/app/appconfig"
)

func Configure(conf *appconfig.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	_ = os.MkdirAll(filepath.Dir(conf.LogFilePath), os.ModePerm)

	fileWriter := &lumberjack.Logger{
		Filename:   conf.LogFilePath,
		MaxSize:    conf.LogFileMaxSizeMB,
		MaxBackups: conf.LogFileMaxBackups,
		Compress:   true,
	}

	var stdoutWriter io.Writer
	if conf.LogJsonStdout {
		stdoutWriter = os.Stdout
	} else {
		stdoutWriter = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339Nano,
		}
	}

	level := zerolog.DebugLevel
	if conf.DevMode {
		level = zerolog.TraceLevel
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(fileWriter, stdoutWriter)).
		With().
		Timestamp().
		Str("app.env", conf.AppContext.Env.String()).
		Logger().
		Level(level)

	// requests rejected before the logger middleware still log through the global logger
	zerolog.DefaultContextLogger = &log.Logger
}
