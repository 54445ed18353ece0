package logger

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	RequestIdKey contextKey = "request_id_ctx"
	RequestId    string     = "request_id"

	// LevelEnv selects the log level by name (debug, info, warn, ...)
	LevelEnv = "SANKALAN_LOG_LEVEL"
	// FormatEnv selects "text" output, anything else logs JSON
	FormatEnv = "SANKALAN_LOG_FORMAT"
	// DebugModeEnv turns on debug logging when LevelEnv is unset
	DebugModeEnv = "DEBUG_MODE"
)

// WithRequestId Create a copy of context with requestid added
func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, RequestIdKey, Logger(ctx).WithFields(logrus.Fields{RequestId: requestId}))
}

// Logger Return a reference of logrus.Entry with request_id set field
func Logger(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if ctxLogger, ok := ctx.Value(RequestIdKey).(*logrus.Entry); ok {
			return ctxLogger
		}
	}

	return logrus.NewEntry(logrus.StandardLogger())
}

// AddValueToContextLogger adds new key-value in the existing logger present in context
func AddValueToContextLogger(ctx context.Context, key string, value interface{}) context.Context {
	log := Logger(ctx)
	return context.WithValue(ctx, RequestIdKey, log.WithField(key, value))
}

// Init configures the standard logger from the environment. Logs go to
// stderr so command output on stdout stays clean.
func Init() {
	configure(logrus.StandardLogger(), os.Stderr)
}

func configure(log *logrus.Logger, out io.Writer) {
	log.Out = out
	log.SetLevel(getLevel())
	if strings.EqualFold(os.Getenv(FormatEnv), "text") {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	} else {
		log.Formatter = &logrus.JSONFormatter{}
	}
}

func getLevel() logrus.Level {
	if name := os.Getenv(LevelEnv); name != "" {
		if level, err := logrus.ParseLevel(name); err == nil {
			return level
		}
	}
	if debugMode, _ := strconv.ParseBool(os.Getenv(DebugModeEnv)); debugMode {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
