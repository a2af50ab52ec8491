package logger

import "go.uber.org/zap"

// New builds a production JSON logger, or a human-readable one in development.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
