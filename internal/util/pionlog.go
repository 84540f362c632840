package util

import (
	"fmt"

	"github.com/pion/logging"
)

// pionLoggerFactory routes pion's scoped loggers into the pterm logger so ICE,
// DTLS and SCTP diagnostics share one timestamped stream with ours.
type pionLoggerFactory struct{}

// NewPionLoggerFactory returns a logging.LoggerFactory for webrtc.SettingEngine.
func NewPionLoggerFactory() logging.LoggerFactory {
	return pionLoggerFactory{}
}

func (pionLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &pionLogger{prefix: "pion/" + scope + ": "}
}

// pionLogger maps pion levels onto ours. Trace is dropped, and pion's info
// level is demoted to debug because it is far too chatty for a CLI.
type pionLogger struct {
	prefix string
}

var _ logging.LeveledLogger = (*pionLogger)(nil)

func (l *pionLogger) Trace(string)                  {}
func (l *pionLogger) Tracef(string, ...interface{}) {}

func (l *pionLogger) Debug(msg string) { l.debug(msg) }
func (l *pionLogger) Debugf(format string, args ...interface{}) {
	l.debug(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Info(msg string) { l.debug(msg) }
func (l *pionLogger) Infof(format string, args ...interface{}) {
	l.debug(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Warn(msg string) { LogWarning("%s%s", l.prefix, msg) }
func (l *pionLogger) Warnf(format string, args ...interface{}) {
	LogWarning("%s%s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *pionLogger) Error(msg string) { LogError("%s%s", l.prefix, msg) }
func (l *pionLogger) Errorf(format string, args ...interface{}) {
	LogError("%s%s", l.prefix, fmt.Sprintf(format, args...))
}

func (l *pionLogger) debug(msg string) {
	if !DebugEnabled() {
		return
	}
	LogDebug("%s%s", l.prefix, msg)
}
