package storage

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/pkg/encoding"
)

// EntityRecord is the persisted form of an entity.
type EntityRecord struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Active     bool              `yaml:"active"`
	Tags       []string          `yaml:"tags,omitempty"`
	Components []ComponentRecord `yaml:"components,omitempty"`
}

// ComponentRecord holds the kind and the serialized state of one component.
type ComponentRecord struct {
	Kind  models.Kind `yaml:"kind"`
	State yaml.Node   `yaml:"state"`
}

type Snapshot struct {
	Frame    uint64         `yaml:"frame"`
	Entities []EntityRecord `yaml:"entities"`
}

// Capture serializes e and every attached component in attach order.
func Capture(e *models.Entity) (EntityRecord, error) {
	if e == nil {
		return EntityRecord{}, models.ErrNilEntity
	}
	if e.IsDestroyed() {
		return EntityRecord{}, models.ErrEntityDestroyed
	}
	rec := EntityRecord{
		ID:     e.ID().String(),
		Name:   e.Name(),
		Active: e.IsActive(),
		Tags:   e.Tags(),
	}
	for _, c := range e.Components() {
		data, err := c.Serialize()
		if err != nil {
			return EntityRecord{}, fmt.Errorf("capture %s/%s: %w", e, c.Kind(), err)
		}
		var doc yaml.Node
		if err = yaml.Unmarshal(data, &doc); err != nil {
			return EntityRecord{}, fmt.Errorf("capture %s/%s: %w", e, c.Kind(), err)
		}
		state := doc
		if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
			state = *doc.Content[0]
		}
		rec.Components = append(rec.Components, ComponentRecord{Kind: c.Kind(), State: state})
	}
	return rec, nil
}

// Restore rebuilds an entity from rec, keeping its identity. Components are
// instantiated through kinds.
func Restore(rec EntityRecord, kinds *models.KindRegistry, opts ...models.EntityOption) (*models.Entity, error) {
	id, err := models.ParseEntityID(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadEntityID, rec.ID)
	}
	e := models.NewEntity(rec.Name, append(opts, models.WithID(id))...)
	e.SetActive(rec.Active)
	for _, t := range rec.Tags {
		if err = e.AddTag(t); err != nil {
			return nil, err
		}
	}
	for _, cr := range rec.Components {
		data, merr := yaml.Marshal(&cr.State)
		if merr != nil {
			return nil, fmt.Errorf("restore %s/%s: %w", rec.Name, cr.Kind, merr)
		}
		c, derr := kinds.Decode(cr.Kind, data)
		if derr != nil {
			return nil, fmt.Errorf("restore %s: %w", rec.Name, derr)
		}
		if _, err = e.AddComponent(c); err != nil {
			return nil, fmt.Errorf("restore %s: %w", rec.Name, err)
		}
	}
	return e, nil
}

func CaptureAll(frame uint64, entities []*models.Entity) (Snapshot, error) {
	snap := Snapshot{Frame: frame, Entities: make([]EntityRecord, 0, len(entities))}
	for _, e := range entities {
		rec, err := Capture(e)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Entities = append(snap.Entities, rec)
	}
	return snap, nil
}

func Encode(snap Snapshot) ([]byte, error) {
	return encoding.EncodeYAML(snap)
}

func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := encoding.DecodeYAML(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveSnapshot encodes snap and stores it under key.
func SaveSnapshot(ctx context.Context, store Store, key string, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return store.Save(ctx, key, data)
}

func LoadSnapshot(ctx context.Context, store Store, key string) (Snapshot, error) {
	data, err := store.Load(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(data)
}
