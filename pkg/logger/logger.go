package logx

import (
	"github.com/petaldesk/engine/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// serviceName tags every record so engine logs are attributable when they
// land next to other services' output.
const serviceName = "petaldesk-engine"

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

func Init(otps ...LoggerOpts) {
	switch env := safe(otps...).Environment; {
	case env.IsProduction():
		log.Logger = log.Logger.With().Str("service", serviceName).Logger().Level(zerolog.InfoLevel)
	case env == core.Testing:
		// keep test output readable, warnings and up only
		log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	default:
		log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().
			Timestamp().Caller().Str("service", serviceName).Logger().
			Level(zerolog.DebugLevel)
	}
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
