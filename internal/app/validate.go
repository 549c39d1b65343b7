package app

import (
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/config"
)

// ValidateConfig loads and validates a config file, returning the resolved
// configuration so callers can print it.
func ValidateConfig(path string, logger *zap.Logger) (domain.Config, error) {
	return config.NewLoader(logger).Load(path)
}

// WriteDefaultConfig writes the annotated default config file. force
// overwrites an existing file.
func WriteDefaultConfig(path string, force bool) error {
	return config.WriteDefault(path, force)
}
