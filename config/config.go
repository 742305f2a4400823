package config

import (
	"github.com/procshim/cgiway/runtime"
	"github.com/procshim/cgiway/util/conf"
)

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Runtime is the worker runtime configuration
	Runtime runtime.Config `conf:"runtime"`
}

// DefaultConfig holds the default values for the layered config.
var DefaultConfig = conf.DefaultConfig{
	"log_level":  "info",
	"log_format": "production",
}

var runtimeDefaults = conf.DefaultConfig{
	"max_workers":  1,
	"send_timeout": "30s",
	"stop_timeout": "5s",
}

func init() {
	for key, val := range conf.MergeDefaults("runtime", runtimeDefaults) {
		DefaultConfig[key] = val
	}
}
