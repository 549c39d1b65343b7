//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"netpress/internal/domain"
)

func InitializeRuntime(ctx context.Context, cfg domain.Config, logger *zap.Logger) (*Runtime, error) {
	wire.Build(RuntimeSet)
	return nil, nil
}
