// Package logging adapts logrus to the consumer-side logger interfaces the
// service and storage packages accept. Those packages never import a logging
// library; they log through a four-method interface and a nil logger
// disables logging entirely.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logrus wraps a logrus logger behind the Debug/Info/Warn/Error shape with
// alternating key/value args.
type Logrus struct {
	logger *logrus.Logger
}

// New creates a logrus-backed logger at the given level. Unknown level
// strings fall back to info.
func New(level string) *Logrus {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}

	logger.SetLevel(parsed)

	return &Logrus{logger: logger}
}

// NewWith wraps an already configured logrus logger.
func NewWith(logger *logrus.Logger) *Logrus {
	return &Logrus{logger: logger}
}

func (l *Logrus) Debug(msg string, args ...any) {
	l.logger.WithFields(fields(args)).Debug(msg)
}

func (l *Logrus) Info(msg string, args ...any) {
	l.logger.WithFields(fields(args)).Info(msg)
}

func (l *Logrus) Warn(msg string, args ...any) {
	l.logger.WithFields(fields(args)).Warn(msg)
}

func (l *Logrus) Error(msg string, args ...any) {
	l.logger.WithFields(fields(args)).Error(msg)
}

// fields converts alternating key/value args into logrus fields. A trailing
// key without a value is kept under "arg".
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		f[key] = args[i+1]
	}

	if len(args)%2 == 1 {
		f["arg"] = args[len(args)-1]
	}

	return f
}
