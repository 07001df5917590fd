// Package system hosts the runtime context: the world that owns the signal
// bus, the deferred scheduler, the archetype table and the ordered system
// list, and drives them once per frame.
package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/zeusync/ecs/internal/config"
	"github.com/zeusync/ecs/internal/core/events"
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/internal/core/observability/metrics"
	"github.com/zeusync/ecs/internal/core/scheduler"
	"github.com/zeusync/ecs/internal/core/systems"
	"github.com/zeusync/ecs/pkg/sequence"
)

var _ systems.Context = (*World)(nil)

// maxShutdownPasses bounds the flushes Shutdown runs to drain teardown chains.
const maxShutdownPasses = 8

// World is single-threaded: every method must be called from the goroutine
// that drives Step.
type World struct {
	log        log.Log
	bus        bus.EventBus
	scheduler  *scheduler.Deferred
	archetypes *models.ArchetypeTable
	kinds      *models.KindRegistry

	systems []*systems.System
	byName  map[string]*systems.System

	entities map[models.EntityID]*models.Entity
	order    []*models.Entity

	metrics *metrics.Collector

	frame  uint64
	closed bool
}

func NewWorld(logger log.Log, b bus.EventBus, s *scheduler.Deferred, kinds *models.KindRegistry) *World {
	if logger == nil {
		logger = log.Nop()
	}
	if b == nil {
		b = bus.New()
	}
	if s == nil {
		s = scheduler.New(logger, 0)
	}
	if kinds == nil {
		kinds = models.NewKindRegistry()
	}
	return &World{
		log:        logger.With(log.String("component", "world")),
		bus:        b,
		scheduler:  s,
		archetypes: models.NewArchetypeTable(),
		kinds:      kinds,
		byName:     make(map[string]*systems.System),
		entities:   make(map[models.EntityID]*models.Entity),
	}
}

func (w *World) Bus() bus.EventBus                  { return w.bus }
func (w *World) Scheduler() systems.Scheduler       { return w.scheduler }
func (w *World) Deferred() *scheduler.Deferred      { return w.scheduler }
func (w *World) Logger() log.Log                    { return w.log }
func (w *World) Archetypes() *models.ArchetypeTable { return w.archetypes }
func (w *World) Kinds() *models.KindRegistry        { return w.kinds }
func (w *World) Frame() uint64                      { return w.frame }
func (w *World) Metrics() *metrics.Collector        { return w.metrics }

// EnableMetrics records bus traffic and per-frame timings into c.
func (w *World) EnableMetrics(c *metrics.Collector) {
	if c == nil || w.metrics != nil {
		return
	}
	w.metrics = c
	w.bus.AddObserver(metrics.NewBusObserver(c))
}

// AddSystem creates, initializes and appends a system. Systems tick in the
// order they were added.
func (w *World) AddSystem(name string, proc systems.Processor) (*systems.System, error) {
	if w.closed {
		return nil, ErrWorldClosed
	}
	if _, exists := w.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSystemExists, name)
	}
	s, err := systems.New(name, proc, w)
	if err != nil {
		return nil, err
	}
	if err = s.Initialize(); err != nil {
		return nil, err
	}
	s.OnDestroyed(w.forget)
	w.systems = append(w.systems, s)
	w.byName[name] = s
	w.log.Info("system added", log.String("system", name))
	return s, nil
}

// RemoveSystem schedules the system's teardown. It leaves the tick order once
// the teardown ran.
func (w *World) RemoveSystem(name string) error {
	s, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	s.Destroy()
	return nil
}

func (w *World) forget(s *systems.System) {
	delete(w.byName, s.Name())
	for i, existing := range w.systems {
		if existing == s {
			w.systems = append(w.systems[:i:i], w.systems[i+1:]...)
			break
		}
	}
	w.log.Info("system removed", log.String("system", s.Name()))
}

// ApplyConfig sets the log level and toggles systems named in cfg. Unknown
// system names are logged and ignored.
func (w *World) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.Logging.Level != "" {
		w.log.SetLevel(log.ParseLevel(cfg.Logging.Level))
	}
	for name := range cfg.Systems {
		active, ok := cfg.SystemActive(name)
		if !ok {
			continue
		}
		s, found := w.byName[name]
		if !found {
			w.log.Warn("config names unknown system", log.String("system", name))
			continue
		}
		if s.IsActive() != active {
			s.SetActive(active)
			w.log.Info("system toggled", log.String("system", name), log.Bool("active", active))
		}
	}
}

func (w *World) System(name string) (*systems.System, bool) {
	s, ok := w.byName[name]
	return s, ok
}

// Systems returns the systems in tick order.
func (w *World) Systems() []*systems.System {
	return append([]*systems.System(nil), w.systems...)
}

// NewEntity builds an unregistered entity bound to this world's archetype
// table. Register it with Spawn.
func (w *World) NewEntity(name string) *models.Entity {
	return models.NewEntity(name, models.WithArchetypeTable(w.archetypes))
}

// CreateEntity builds an entity from components and tags, registers it, and
// publishes EntityCreated.
func (w *World) CreateEntity(name string, cs []models.Component, tags ...string) (*models.Entity, error) {
	e := w.NewEntity(name)
	for _, c := range cs {
		if _, err := e.AddComponent(c); err != nil {
			return nil, fmt.Errorf("create entity %s: %w", name, err)
		}
	}
	for _, t := range tags {
		if err := e.AddTag(t); err != nil {
			return nil, fmt.Errorf("create entity %s: %w", name, err)
		}
	}
	return e, w.Spawn(e)
}

// Spawn registers e and publishes EntityCreated. Spawning a registered entity
// again only republishes the signal.
func (w *World) Spawn(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if w.closed {
		return ErrWorldClosed
	}
	if e.IsDestroyed() {
		return models.ErrEntityDestroyed
	}
	if _, ok := w.entities[e.ID()]; !ok {
		w.entities[e.ID()] = e
		w.order = append(w.order, e)
	}
	return w.bus.Publish(events.EntityCreated{Entity: e})
}

// CloneEntity deep-copies e under a new identity and spawns the copy.
func (w *World) CloneEntity(e *models.Entity) (*models.Entity, error) {
	if e == nil {
		return nil, ErrNilEntity
	}
	clone, err := e.Clone()
	if err != nil {
		return nil, err
	}
	return clone, w.Spawn(clone)
}

// MarkModified publishes EntityModified for a registered entity.
func (w *World) MarkModified(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if _, ok := w.entities[e.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, e)
	}
	return w.bus.Publish(events.EntityModified{Entity: e})
}

// Modify applies fn to e and publishes EntityModified if fn succeeds.
func (w *World) Modify(e *models.Entity, fn func(*models.Entity) error) error {
	if e == nil {
		return ErrNilEntity
	}
	if _, ok := w.entities[e.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, e)
	}
	if err := fn(e); err != nil {
		return err
	}
	return w.bus.Publish(events.EntityModified{Entity: e})
}

// DestroyEntity unregisters e and publishes EntityDeleted. Systems remove it
// at the next flush; the entity itself is destroyed right after them.
func (w *World) DestroyEntity(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if _, ok := w.entities[e.ID()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, e)
	}
	delete(w.entities, e.ID())
	for i, existing := range w.order {
		if existing == e {
			w.order = append(w.order[:i:i], w.order[i+1:]...)
			break
		}
	}
	err := w.bus.Publish(events.EntityDeleted{Entity: e})
	w.scheduler.Schedule("world.destroy_entity", e.Destroy)
	return err
}

func (w *World) Entity(id models.EntityID) (*models.Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities returns registered entities in spawn order.
func (w *World) Entities() []*models.Entity {
	return append([]*models.Entity(nil), w.order...)
}

// Query iterates registered entities in spawn order. The iterator reads a
// snapshot, so spawning or destroying while iterating is safe.
func (w *World) Query() *sequence.Iterator[*models.Entity] {
	return sequence.From(w.Entities())
}

func (w *World) EntitiesWithTag(tag string) []*models.Entity {
	return w.Query().Filter(func(e *models.Entity) bool { return e.HasTag(tag) }).Collect()
}

// CountByArchetype groups registered entities by archetype name. Entities
// without an archetype are counted under the empty name.
func (w *World) CountByArchetype() map[string]int {
	groups := sequence.GroupBy(w.Query(), func(e *models.Entity) string {
		if a := e.Archetype(); a != nil {
			return a.Name()
		}
		return ""
	})
	out := make(map[string]int, len(groups))
	for name, es := range groups {
		out[name] = len(es)
	}
	return out
}

// Step runs one frame: flush pending callbacks, then Tick every system, then
// LateTick every system.
func (w *World) Step() error {
	if w.closed {
		return ErrWorldClosed
	}
	start := time.Now()
	err := w.scheduler.Flush()
	if err != nil {
		w.log.Error("flush failed", log.Uint64("frame", w.frame), log.Error(err))
	}
	flushed := time.Now()
	order := w.Systems()
	for _, s := range order {
		s.Tick()
	}
	for _, s := range order {
		s.LateTick()
	}
	w.frame++
	if w.metrics != nil {
		w.record(order, flushed.Sub(start), time.Since(flushed))
	}
	return err
}

func (w *World) record(order []*systems.System, flush, tick time.Duration) {
	w.metrics.Counter("world.frames", nil).Inc()
	w.metrics.Histogram("world.flush_us", nil).Observe(float64(flush.Microseconds()))
	w.metrics.Histogram("world.tick_us", nil).Observe(float64(tick.Microseconds()))
	w.metrics.Gauge("world.entities", nil).Set(float64(len(w.order)))
	w.metrics.Gauge("scheduler.pending", nil).Set(float64(w.scheduler.Pending()))
	for _, s := range order {
		w.metrics.Gauge("system.members", map[string]string{"system": s.Name()}).Set(float64(s.Len()))
	}
}

// Run calls Step at frameRate frames per second until ctx is done. Callback
// failures are logged by Step and do not stop the loop.
func (w *World) Run(ctx context.Context, frameRate int) error {
	if frameRate <= 0 {
		return ErrInvalidRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	w.log.Info("frame loop started", log.Int("fps", frameRate))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("frame loop stopped", log.Uint64("frames", w.frame))
			return nil
		case <-ticker.C:
			if err := w.Step(); errors.Is(err, ErrWorldClosed) {
				return err
			}
		}
	}
}

// Shutdown destroys every system and drains the scheduler.
func (w *World) Shutdown() error {
	if w.closed {
		return nil
	}
	for _, s := range w.Systems() {
		s.Destroy()
	}
	err := w.scheduler.FlushAll(maxShutdownPasses)
	if pending := w.scheduler.Pending(); pending > 0 {
		err = multierr.Append(err, fmt.Errorf("shutdown left %d scheduled callbacks", pending))
	}
	w.closed = true
	w.log.Info("world shut down", log.Uint64("frames", w.frame))
	return err
}
