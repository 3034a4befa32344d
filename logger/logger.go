// Package logger provides structured logging for formbridge built on zap.
//
// Components receive a *zap.SugaredLogger through their constructors; the
// package-level Logger exists for the CLI entry point and defaults to a no-op
// logger so library consumers who never call Initialize get silence rather
// than a nil pointer.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the process-wide sugared logger used by the CLI.
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected JSON encoding.
	JSONOutput bool
	// Verbosity records the flag count Initialize was called with, for
	// callers that gate extra output on ShouldLogTrace.
	Verbosity int
)

func init() {
	// Safe no-op logger at package load time so the logger is usable
	// before Initialize() is called.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger.
// jsonOutput selects machine-readable JSON lines; otherwise a human console
// encoder writing to stderr is used, keeping stdout free for command output.
func Initialize(jsonOutput bool, verbosity int) error {
	core, err := buildCore(jsonOutput, VerbosityToLevel(verbosity))
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput
	Verbosity = verbosity
	Logger = zap.New(core).Sugar()
	return nil
}

// New returns a named sugared logger at the given verbosity without touching
// the global Logger. Intended for embedding the engine in a host process that
// manages its own logging.
func New(name string, verbosity int) (*zap.SugaredLogger, error) {
	core, err := buildCore(false, VerbosityToLevel(verbosity))
	if err != nil {
		return nil, err
	}
	return zap.New(core).Sugar().Named(name), nil
}

// Nop returns a no-op sugared logger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func buildCore(jsonOutput bool, level zapcore.Level) (zapcore.Core, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	return zapcore.NewCore(enc, sink, level), nil
}

// Sync flushes any buffered log entries. Best effort; stderr sync failures
// are expected on some platforms and ignored by callers.
func Sync() error {
	return Logger.Sync()
}
