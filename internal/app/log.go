package app

import (
	"github.com/rs/zerolog"

	"codekg/internal/applog"
	"codekg/internal/config"
)

func applogLogger(cfg *config.Config) (zerolog.Logger, error) {
	return applog.New(cfg.LogDir(), cfg.LogLevel)
}
