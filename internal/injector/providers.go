package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/ecs/internal/components"
	"github.com/zeusync/ecs/internal/config"
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/internal/core/scheduler"
	"github.com/zeusync/ecs/internal/core/system"
)

var RuntimeSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideScheduler,
	ProvideKinds,
	system.NewWorld,
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.NewWithConfig(log.Config{
		Level:    log.ParseLevel(cfg.Logging.Level),
		Encoding: cfg.Logging.Encoding,
	})
}

func ProvideScheduler(logger log.Log, cfg *config.Config) *scheduler.Deferred {
	return scheduler.New(logger, cfg.Runtime.SchedulerCapacity)
}

// ProvideKinds returns a registry holding every built-in component kind.
func ProvideKinds() (*models.KindRegistry, error) {
	kinds := models.NewKindRegistry()
	if err := components.Register(kinds); err != nil {
		return nil, err
	}
	return kinds, nil
}
