package commands

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightadvisor/internal/advisor"
	"github.com/dharmasatrya/flightadvisor/internal/config"
	"github.com/dharmasatrya/flightadvisor/internal/logger"
)

var v = viper.New()

// Viper returns the configuration shared by all commands.
func Viper() *viper.Viper {
	return v
}

func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, zl, nil
}

func newBuilder(cfg config.Config, zl *zap.Logger) *advisor.Builder {
	return advisor.NewBuilder(cfg, advisor.NewLimiter(cfg), zl)
}
