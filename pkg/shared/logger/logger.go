package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
)

// NewLogger creates a logger. The SCANIO_LOG_LEVEL variable takes precedence
// over the configured level.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	var logCfg config.Logger
	if cfg != nil {
		logCfg = cfg.Logger
	}
	level := logCfg.Level
	if levelEnv := os.Getenv("SCANIO_LOG_LEVEL"); levelEnv != "" {
		level = levelEnv
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     config.BoolOr(logCfg.DisableTime, true),
		JSONFormat:      config.BoolOr(logCfg.JSONFormat, false),
		IncludeLocation: config.BoolOr(logCfg.IncludeLocation, false),
		Output:          os.Stdout,
		Level:           getLogLevel(strings.ToUpper(level)),
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
