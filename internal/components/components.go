// Package components holds the concrete component kinds shipped with the
// runtime.
package components

import "github.com/zeusync/ecs/internal/core/models"

// Register adds every built-in kind to r.
func Register(r *models.KindRegistry) error {
	for _, proto := range []models.Component{
		NewHealth(0),
		NewTransform(0, 0),
		NewVelocity(0, 0),
		NewLabel(""),
	} {
		if err := r.Register(proto); err != nil {
			return err
		}
	}
	return nil
}
