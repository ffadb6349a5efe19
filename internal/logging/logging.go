// Package logging builds the process-wide zap logger and installs it as the
// otelzap global so components can log through otelzap.Ctx(ctx).
package logging

import (
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config returns the zap configuration used by the CLI. Logs go to stderr so
// they never mix with the generated message on stdout.
func Config(debug bool) zap.Config {
	level := zap.WarnLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !debug
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// Init builds the logger and replaces the zap and otelzap globals. The returned
// function restores the previous globals and flushes.
func Init(debug bool) (func(), error) {
	if os.Getenv("COMMITGEN_DEBUG") == "1" {
		debug = true
	}
	logger, err := Config(debug).Build()
	if err != nil {
		return func() {}, err
	}
	undoZap := zap.ReplaceGlobals(logger)
	undoOtel := otelzap.ReplaceGlobals(otelzap.New(logger))
	return func() {
		_ = logger.Sync()
		undoOtel()
		undoZap()
	}, nil
}
