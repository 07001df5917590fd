package sandbox

import (
	"fmt"

	"github.com/zeusync/ecs/internal/components"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/system"
)

type blueprint struct {
	name  string
	tags  []string
	build func() []models.Component
}

var blueprints = []blueprint{
	{
		name: "player",
		tags: []string{"player"},
		build: func() []models.Component {
			return []models.Component{
				components.NewTransform(0, 0),
				components.NewVelocity(1, 0),
				components.NewHealth(100),
				components.NewLabel("Hero"),
			}
		},
	},
	{
		name: "orc",
		tags: []string{TagEnemy},
		build: func() []models.Component {
			h := components.NewHealth(30)
			h.Damage(10)
			return []models.Component{h, components.NewTransform(8, 3)}
		},
	},
	{
		name: "bat",
		tags: []string{TagEnemy, "flying"},
		build: func() []models.Component {
			h := components.NewHealth(6)
			h.Damage(6)
			return []models.Component{h, components.NewTransform(4, 9), components.NewVelocity(0, -1)}
		},
	},
	{
		name: "rock",
		build: func() []models.Component {
			return []models.Component{components.NewTransform(2, 2)}
		},
	},
}

// Populate spawns the sandbox entities into w: a moving player, a wounded
// orc, a bat that spawns dead, and a static rock.
func Populate(w *system.World) ([]*models.Entity, error) {
	out := make([]*models.Entity, 0, len(blueprints))
	for _, bp := range blueprints {
		e, err := w.CreateEntity(bp.name, bp.build(), bp.tags...)
		if err != nil {
			return nil, fmt.Errorf("populate %s: %w", bp.name, err)
		}
		out = append(out, e)
	}
	return out, nil
}
