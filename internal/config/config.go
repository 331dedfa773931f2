package config

import (
	"go.uber.org/zap"
)

// InitLogger logger production یا development را بر اساس APP_ENV می‌سازد
func InitLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment() // برای توسعه
	}
	if err != nil {
		return nil, err
	}
	logger.Info("✅ Zap logger initialized", zap.String("env", env))
	return logger, nil
}
