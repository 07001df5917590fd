// Package sandbox wires a handful of concrete systems and entities into a
// world so the runtime can be driven end to end.
package sandbox

import (
	"fmt"

	"github.com/zeusync/ecs/internal/components"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/internal/core/system"
	"github.com/zeusync/ecs/internal/core/systems"
)

const (
	MovementName = "movement"
	RegenName    = "regen"
	ReaperName   = "reaper"

	TagEnemy = "enemy"
)

// MovementSystem moves every entity with a Transform and a Velocity by its
// velocity once per tick.
type MovementSystem struct {
	log   log.Log
	moved int
}

func NewMovementSystem(logger log.Log) *MovementSystem {
	return &MovementSystem{log: logger.With(log.String("system", MovementName))}
}

func (m *MovementSystem) ShouldProcessEntity(e *models.Entity) bool {
	return e.HasKinds(components.KindTransform, components.KindVelocity)
}

func (m *MovementSystem) OnUpdate(e *models.Entity) {
	tr, _ := models.Get[*components.Transform](e)
	v, _ := models.Get[*components.Velocity](e)
	if tr == nil || v == nil {
		return
	}
	dx, dy := v.Vector()
	if dx == 0 && dy == 0 {
		return
	}
	tr.Translate(dx, dy)
	m.moved++
}

func (m *MovementSystem) OnLateUpdate(e *models.Entity) {
	tr, ok := models.Get[*components.Transform](e)
	if !ok || !tr.IsDirty() {
		return
	}
	x, y := tr.Position()
	m.log.Debug("entity moved",
		log.Stringer("entity", e),
		log.Float64("x", x),
		log.Float64("y", y),
	)
	tr.SetDirty(false)
}

// Moved counts translations applied so far.
func (m *MovementSystem) Moved() int { return m.moved }

// RegenSystem heals living enemies by Rate points per tick.
type RegenSystem struct {
	Rate   int
	healed int
}

func NewRegenSystem(rate int) *RegenSystem {
	return &RegenSystem{Rate: rate}
}

func (r *RegenSystem) ShouldProcessEntity(e *models.Entity) bool {
	return e.HasTag(TagEnemy) && e.HasKinds(components.KindHealth)
}

func (r *RegenSystem) OnUpdate(e *models.Entity) {
	h, ok := models.Get[*components.Health](e)
	if !ok || h.IsDead() || h.Current() == h.Max() {
		return
	}
	before := h.Current()
	r.healed += h.Heal(r.Rate) - before
}

func (r *RegenSystem) Healed() int { return r.healed }

// ReaperSystem destroys entities whose health reached zero. Destruction goes
// through the world, so every system drops the entity at the next flush.
type ReaperSystem struct {
	world  *system.World
	log    log.Log
	reaped []string
}

func NewReaperSystem(w *system.World) *ReaperSystem {
	return &ReaperSystem{world: w, log: w.Logger().With(log.String("system", ReaperName))}
}

func (r *ReaperSystem) ShouldProcessEntity(e *models.Entity) bool {
	return e.HasKinds(components.KindHealth)
}

func (r *ReaperSystem) OnLateUpdate(e *models.Entity) {
	h, ok := models.Get[*components.Health](e)
	if !ok || !h.IsDead() {
		return
	}
	if _, registered := r.world.Entity(e.ID()); !registered {
		return
	}
	if err := r.world.DestroyEntity(e); err != nil {
		r.log.Warn("destroy failed", log.Stringer("entity", e), log.Error(err))
		return
	}
	r.reaped = append(r.reaped, e.Name())
	r.log.Info("entity reaped", log.Stringer("entity", e))
}

func (r *ReaperSystem) Reaped() []string { return append([]string(nil), r.reaped...) }

// Systems groups the sandbox processors registered with a world.
type Systems struct {
	Movement *MovementSystem
	Regen    *RegenSystem
	Reaper   *ReaperSystem
}

// Install adds the sandbox systems to w in tick order.
func Install(w *system.World) (*Systems, error) {
	s := &Systems{
		Movement: NewMovementSystem(w.Logger()),
		Regen:    NewRegenSystem(1),
		Reaper:   NewReaperSystem(w),
	}
	for _, entry := range []struct {
		name string
		proc systems.Processor
	}{
		{MovementName, s.Movement},
		{RegenName, s.Regen},
		{ReaperName, s.Reaper},
	} {
		if _, err := w.AddSystem(entry.name, entry.proc); err != nil {
			return nil, fmt.Errorf("install %s: %w", entry.name, err)
		}
	}
	return s, nil
}
