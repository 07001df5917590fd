package systems

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/zeusync/ecs/internal/core/events"
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
)

// System keeps the membership list of one Processor and drives its per-frame
// Tick/LateTick over that list.
//
// An entity moves Unclassified -> check scheduled -> member -> removed. The
// membership list changes only inside scheduler callbacks; Tick and LateTick
// always iterate a list nobody mutates underneath them.
type System struct {
	name  string
	proc  Processor
	bus   bus.EventBus
	sched Scheduler
	log   log.Log

	inactive   bool
	members    []*models.Entity
	memberSet  map[*models.Entity]struct{}
	archetypes map[string]*models.Archetype

	subs       []bus.Subscription
	destroyFns []func(*System)

	initialized bool
	destroying  bool
	destroyed   bool
	iterating   int

	labels labels
}

type labels struct {
	classify, add, remove, lateAdd, deleted, destroy string
}

func New(name string, proc Processor, ctx Context) (*System, error) {
	switch {
	case name == "":
		return nil, ErrEmptyName
	case proc == nil:
		return nil, ErrNilProcessor
	case ctx == nil:
		return nil, ErrNilContext
	}
	logger := ctx.Logger()
	if logger == nil {
		logger = log.Nop()
	}
	return &System{
		name:       name,
		proc:       proc,
		bus:        ctx.Bus(),
		sched:      ctx.Scheduler(),
		log:        logger.With(log.String("system", name)),
		memberSet:  make(map[*models.Entity]struct{}),
		archetypes: make(map[string]*models.Archetype),
		labels: labels{
			classify: name + ".classify",
			add:      name + ".add",
			remove:   name + ".remove",
			lateAdd:  name + ".late_add",
			deleted:  name + ".deleted",
			destroy:  name + ".destroy",
		},
	}, nil
}

// Initialize subscribes the system to the entity lifecycle signals. The
// returned handles are released by Destroy.
func (s *System) Initialize() error {
	if s.initialized {
		return ErrAlreadyInitialized
	}

	var subs []bus.Subscription
	subscribe := func(sub bus.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs = append(subs, sub)
		return nil
	}
	err := multierr.Combine(
		subscribe(bus.SubscribeTo(s.bus, func(ev events.EntityCreated) error {
			return s.OnEntityCreatedOrModified(ev.Entity)
		})),
		subscribe(bus.SubscribeTo(s.bus, func(ev events.EntityModified) error {
			return s.OnEntityCreatedOrModified(ev.Entity)
		})),
		subscribe(bus.SubscribeTo(s.bus, func(ev events.EntityDeleted) error {
			return s.OnEntityDeleted(ev.Entity)
		})),
	)
	if err != nil {
		for _, sub := range subs {
			_ = sub.Cancel()
		}
		return fmt.Errorf("initialize system %s: %w", s.name, err)
	}

	s.subs = subs
	s.initialized = true
	s.log.Debug("system initialized")
	return nil
}

// OnEntityCreatedOrModified schedules a classification check for e unless e
// is already a member.
func (s *System) OnEntityCreatedOrModified(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if s.Contains(e) {
		return nil
	}
	s.sched.Schedule(s.labels.classify, func() { s.classify(e) })
	return nil
}

// OnEntityDeleted schedules the removal of e. Removal is never synchronous.
func (s *System) OnEntityDeleted(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	s.sched.Schedule(s.labels.deleted, func() { s.removeEntity(e) })
	return nil
}

// RequestAdd schedules e to join the system without consulting the predicate.
func (s *System) RequestAdd(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	s.sched.Schedule(s.labels.add, func() { s.addEntity(e) })
	return nil
}

// RequestRemove schedules e to leave the system.
func (s *System) RequestRemove(e *models.Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	s.sched.Schedule(s.labels.remove, func() { s.removeEntity(e) })
	return nil
}

// classify runs at flush time. A known archetype admits the entity without
// evaluating the predicate; the archetype cache is not re-validated.
func (s *System) classify(e *models.Entity) {
	if s.destroyed {
		return
	}
	archetype := e.Archetype()
	if archetype == nil {
		s.log.Debug("entity not classifiable yet", log.Stringer("entity", e))
		return
	}
	if _, known := s.archetypes[archetype.Name()]; known {
		s.addEntity(e)
		return
	}

	valid := s.proc.ShouldProcessEntity(e)
	member := s.Contains(e)
	switch {
	case member && !valid:
		s.removeEntity(e)
	case valid && !member:
		s.archetypes[archetype.Name()] = archetype
		s.addEntity(e)
	}
}

func (s *System) addEntity(e *models.Entity) {
	if s.iterating > 0 {
		s.sched.Schedule(s.labels.add, func() { s.addEntity(e) })
		return
	}
	if s.Contains(e) {
		return
	}
	s.members = append(s.members, e)
	s.memberSet[e] = struct{}{}
	s.log.Debug("entity added", log.Stringer("entity", e))

	if hook, ok := s.proc.(EntityAddedHook); ok {
		hook.OnEntityAdded(e)
	}
	if hook, ok := s.proc.(LateEntityAddedHook); ok {
		s.sched.Schedule(s.labels.lateAdd, func() { hook.OnLateEntityAdded(e) })
	}
}

func (s *System) removeEntity(e *models.Entity) {
	if s.iterating > 0 {
		s.sched.Schedule(s.labels.remove, func() { s.removeEntity(e) })
		return
	}
	if !s.Contains(e) {
		return
	}
	if hook, ok := s.proc.(EntityRemovedHook); ok {
		hook.OnEntityRemoved(e)
	}
	for i, m := range s.members {
		if m == e {
			copy(s.members[i:], s.members[i+1:])
			s.members[len(s.members)-1] = nil
			s.members = s.members[:len(s.members)-1]
			break
		}
	}
	delete(s.memberSet, e)
	s.log.Debug("entity removed", log.Stringer("entity", e))
}

// Tick calls OnUpdate for every member in list order. Inactive systems skip it.
func (s *System) Tick() {
	if s.inactive || s.destroyed {
		return
	}
	u, ok := s.proc.(Updater)
	if !ok {
		return
	}
	s.iterating++
	defer func() { s.iterating-- }()
	for _, e := range s.members {
		u.OnUpdate(e)
	}
}

// LateTick calls OnLateUpdate for every member in list order.
func (s *System) LateTick() {
	if s.inactive || s.destroyed {
		return
	}
	u, ok := s.proc.(LateUpdater)
	if !ok {
		return
	}
	s.iterating++
	defer func() { s.iterating-- }()
	for _, e := range s.members {
		u.OnLateUpdate(e)
	}
}

// SetActive pauses or resumes ticking. Scheduled bookkeeping and signal
// subscriptions keep running while the system is paused.
func (s *System) SetActive(active bool) { s.inactive = !active }

func (s *System) IsActive() bool { return !s.inactive }

// Destroy schedules the teardown: the DestroyHook, destroyed listeners, the
// SystemDestroyed signal, and the release of every subscription. Members are
// left in place and receive no removal hook.
func (s *System) Destroy() {
	if s.destroying {
		return
	}
	s.destroying = true
	s.sched.Schedule(s.labels.destroy, s.teardown)
}

func (s *System) teardown() {
	if hook, ok := s.proc.(DestroyHook); ok {
		hook.OnDestroy()
	}
	for _, fn := range s.destroyFns {
		fn(s)
	}

	var errs error
	for _, sub := range s.subs {
		errs = multierr.Append(errs, sub.Cancel())
	}
	s.subs = nil
	s.destroyed = true

	errs = multierr.Append(errs, s.bus.Publish(events.SystemDestroyed{Name: s.name}))
	if errs != nil {
		s.log.Warn("system teardown reported errors", log.Error(errs))
	}
	s.log.Debug("system destroyed", log.Int("members", len(s.members)))
}

// OnDestroyed registers fn to run during teardown.
func (s *System) OnDestroyed(fn func(*System)) {
	if fn != nil {
		s.destroyFns = append(s.destroyFns, fn)
	}
}

// RegisterArchetype seeds the fast path: entities of archetype a join on
// their next classification without the predicate being evaluated.
func (s *System) RegisterArchetype(a *models.Archetype) {
	if a != nil {
		s.archetypes[a.Name()] = a
	}
}

func (s *System) KnowsArchetype(name string) bool {
	_, ok := s.archetypes[name]
	return ok
}

func (s *System) Name() string        { return s.name }
func (s *System) Processor() Processor { return s.proc }
func (s *System) IsDestroyed() bool    { return s.destroyed }
func (s *System) Len() int             { return len(s.members) }

func (s *System) Contains(e *models.Entity) bool {
	_, ok := s.memberSet[e]
	return ok
}

// Entities returns a copy of the membership list in processing order.
func (s *System) Entities() []*models.Entity {
	return append([]*models.Entity(nil), s.members...)
}

func (s *System) String() string {
	return fmt.Sprintf("System(%s members=%d active=%t)", s.name, len(s.members), !s.inactive)
}
