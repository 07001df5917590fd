//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ecs/internal/config"
	"github.com/zeusync/ecs/internal/core/system"
)

func InitializeWorld(cfg *config.Config) (*system.World, error) {
	wire.Build(RuntimeSet)
	return nil, nil
}
