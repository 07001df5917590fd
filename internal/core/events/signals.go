// Package events declares the entity lifecycle signals systems subscribe to.
package events

import (
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
)

const (
	TypeEntityCreated   = "entity.created"
	TypeEntityModified  = "entity.modified"
	TypeEntityDeleted   = "entity.deleted"
	TypeSystemDestroyed = "system.destroyed"
)

var (
	_ bus.Event = EntityCreated{}
	_ bus.Event = EntityModified{}
	_ bus.Event = EntityDeleted{}
	_ bus.Event = SystemDestroyed{}
)

// EntityCreated is published once an entity is registered with a world.
type EntityCreated struct {
	Entity *models.Entity
}

func (EntityCreated) Type() string { return TypeEntityCreated }

// EntityModified is published after an entity's composition or data changed.
type EntityModified struct {
	Entity *models.Entity
}

func (EntityModified) Type() string { return TypeEntityModified }

// EntityDeleted is published before an entity is destroyed.
type EntityDeleted struct {
	Entity *models.Entity
}

func (EntityDeleted) Type() string { return TypeEntityDeleted }

// SystemDestroyed is published when a system finished its teardown.
type SystemDestroyed struct {
	Name string
}

func (SystemDestroyed) Type() string { return TypeSystemDestroyed }
