/*
Package logx wraps zerolog for the relay.

InitGlobalLogger picks console output for development and JSON otherwise.
Long-lived parts of the server take a tagged child from Component; one-off
call sites use the Info/Warn/Error/Fatal helpers with key/value pairs.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger replaces the global zerolog logger.
// Development logs at Debug to a human-readable console on stderr; everything else
// logs at Info as JSON on stdout. Timestamps are Unix seconds and every entry
// carries its caller.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child logger tagged component=name.
// It snapshots the global logger, so call it after InitGlobalLogger.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// checkFields drops an odd-length field list, which zerolog's Fields would reject.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msgf("Logx call (%s) received odd number of fields: %v. Fields ignored.", level, fields)
		return nil
	}
	return fields
}

// emit finishes ev on behalf of one of the level helpers below.
func emit(ev *zerolog.Event, level string, err error, msg string, fields []any) {
	if err != nil {
		ev = ev.Err(err)
	}

	ev.Fields(checkFields(level, fields)).
		CallerSkipFrame(2).
		Msg(msg)
}

func Info(msg string, fields ...any) {
	emit(Logger().Info(), "Info", nil, msg, fields)
}

func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), "Warn", nil, msg, fields)
}

// Error logs msg at Error level with err attached.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error(), "Error", err, msg, fields)
}

// Fatal logs like Error, then exits the process with status 1.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal(), "Fatal", err, msg, fields)
}
