// Package telemetry builds pulsewatch's structured logger and a
// non-blocking audit trail for published statistics.
package telemetry

import (
	"fmt"
	"os"

	"github.com/agilira/lethe"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide structured logger. Console output goes
// to stderr at the given level; a second, size-rotated core writes the same
// events (JSON-encoded) to logDir/pulsewatch.log via lethe, so operators get
// a bounded on-disk trail without pulsewatch ever reading it back.
func NewLogger(level zapcore.Level, logDir string) (*zap.Logger, error) {
	rotator, err := lethe.New(logDir+"/pulsewatch.log", 100, 5)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open rotating log: %w", err)
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level),
	)

	return zap.New(core, zap.AddCaller()), nil
}
