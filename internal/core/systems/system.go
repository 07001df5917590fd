package systems

import (
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
)

// Scheduler defers callbacks to the next flush point of the frame loop.
type Scheduler interface {
	Schedule(label string, fn func())
}

// Context is what a System needs from the runtime that owns it.
type Context interface {
	Bus() bus.EventBus
	Scheduler() Scheduler
	Logger() log.Log
}

// Processor is the classification predicate every concrete system supplies.
// The remaining hooks are optional: a Processor implements whichever it needs.
type Processor interface {
	ShouldProcessEntity(e *models.Entity) bool
}

// Updater runs once per member during Tick.
type Updater interface {
	OnUpdate(e *models.Entity)
}

// LateUpdater runs once per member during LateTick.
type LateUpdater interface {
	OnLateUpdate(e *models.Entity)
}

// EntityAddedHook runs synchronously when an entity joins the system.
type EntityAddedHook interface {
	OnEntityAdded(e *models.Entity)
}

// LateEntityAddedHook runs one flush after OnEntityAdded, once every other
// system has observed the same add.
type LateEntityAddedHook interface {
	OnLateEntityAdded(e *models.Entity)
}

// EntityRemovedHook runs right before an entity leaves the system.
type EntityRemovedHook interface {
	OnEntityRemoved(e *models.Entity)
}

// DestroyHook runs during the deferred teardown of a system.
type DestroyHook interface {
	OnDestroy()
}

// ProcessorFunc adapts a plain predicate to Processor.
type ProcessorFunc func(e *models.Entity) bool

func (f ProcessorFunc) ShouldProcessEntity(e *models.Entity) bool { return f(e) }

// Matching accepts entities carrying every tag and at least the listed kinds.
func Matching(tags []string, kinds ...models.Kind) ProcessorFunc {
	tags = append([]string(nil), tags...)
	kinds = append([]models.Kind(nil), kinds...)
	return func(e *models.Entity) bool {
		for _, t := range tags {
			if !e.HasTag(t) {
				return false
			}
		}
		return e.HasKinds(kinds...)
	}
}
