package logger

import (
	"fmt"

	"github.com/boundless-xyz/risc0-solana/pkg/utilities/timeutil"
	"github.com/rs/zerolog"
)

// Sink receives a copy of every message written through a Logger.
type Sink func(msg string, level zerolog.Level, timestamp timeutil.TimeUTC)

func AddSinkToLoggerInstance(loggerInstance *Logger, sink Sink) {
	loggerInstance.sink = sink
}

func (l *Logger) activateSinkFormatted(level zerolog.Level, format string, v ...interface{}) {
	if l.sink == nil {
		return
	}
	l.activateSink(level, fmt.Sprintf(format, v...))
}

func (l *Logger) activateSink(level zerolog.Level, msg string) {
	if l.sink != nil && level >= l.zl.GetLevel() {
		l.sink(msg, level, timeutil.NowUTC())
	}
}
