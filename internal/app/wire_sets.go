//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var RuntimeSet = wire.NewSet(
	BuildRuntime,
)
