package logger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"
)

type fxLogger struct {
	l zerolog.Logger
}

// Fx routes fx lifecycle events into the global logger. Successful steps are
// logged at trace level so a normal boot stays quiet.
func Fx() fxevent.Logger {
	return &fxLogger{
		l: log.Logger.
			With().
			Str("evt.name", "fx.init").
			Logger(),
	}
}

func (f *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		f.result(e.Err).
			Str("callee", e.FunctionName).
			Str("caller", e.CallerName).
			Dur("runtime", e.Runtime).
			Msg("OnStart hook executed")
	case *fxevent.OnStopExecuted:
		f.result(e.Err).
			Str("callee", e.FunctionName).
			Str("caller", e.CallerName).
			Dur("runtime", e.Runtime).
			Msg("OnStop hook executed")
	case *fxevent.Provided:
		f.result(e.Err).
			Str("constructor", e.ConstructorName).
			Strs("types", e.OutputTypeNames).
			Msg("provided")
	case *fxevent.Invoked:
		f.result(e.Err).
			Str("function", e.FunctionName).
			Msg("invoked")
	case *fxevent.Started:
		f.result(e.Err).Msg("application started")
	case *fxevent.Stopped:
		f.result(e.Err).Msg("application stopped")
	case *fxevent.RollingBack:
		f.l.Error().Err(e.StartErr).Msg("start failed, rolling back")
	case *fxevent.RolledBack:
		f.result(e.Err).Msg("rolled back")
	}
}

func (f *fxLogger) result(err error) *zerolog.Event {
	if err != nil {
		return f.l.Error().Err(err)
	}
	return f.l.Trace()
}
