package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ecs/internal/components"
	"github.com/zeusync/ecs/internal/core/models"
)

func TestSafeSetInactiveIsSilent(t *testing.T) {
	h := components.NewHealth(100)
	notified := 0
	h.OnDirty(func(models.Component, bool) { notified++ })

	h.SetActive(false)
	h.SetDirty(false)
	notified = 0

	for i := 0; i < 5; i++ {
		assert.Equal(t, 100, h.SetCurrent(i))
	}
	assert.Equal(t, 100, h.Current())
	assert.False(t, h.IsDirty())
	assert.Zero(t, notified)
}

func TestSafeSetActiveNotifiesOncePerCall(t *testing.T) {
	h := components.NewHealth(100)
	var subjects []models.Component
	h.OnDirty(func(c models.Component, dirty bool) {
		assert.True(t, dirty)
		subjects = append(subjects, c)
	})

	h.SetActive(false)
	h.SetActive(true)
	assert.Empty(t, subjects, "SetActive marks dirty without notifying")
	assert.True(t, h.IsDirty())

	h.SetCurrent(40)
	h.SetCurrent(30)
	assert.Equal(t, 30, h.Current())
	require.Len(t, subjects, 2)
	assert.Same(t, h, subjects[0])
}

func TestDirtyListenerCancel(t *testing.T) {
	h := components.NewHealth(10)
	calls := 0
	cancel := h.OnDirty(func(models.Component, bool) { calls++ })
	h.SetCurrent(5)
	cancel()
	h.SetCurrent(4)
	assert.Equal(t, 1, calls)
}

func TestDeserializeLeavesDirtyUntouched(t *testing.T) {
	src := components.NewHealth(50)
	src.SetCurrent(20)
	data, err := src.Serialize()
	require.NoError(t, err)

	dst := components.NewHealth(0)
	notified := false
	dst.OnDirty(func(models.Component, bool) { notified = true })
	require.NoError(t, dst.Deserialize(data))

	assert.Equal(t, 20, dst.Current())
	assert.Equal(t, 50, dst.Max())
	assert.False(t, dst.IsDirty())
	assert.False(t, notified)
}

func TestDeserializeRestoresActiveFlag(t *testing.T) {
	src := components.NewTransform(1, 2)
	src.SetActive(false)
	data, err := src.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(data), "active: false")

	dst := components.NewTransform(0, 0)
	require.NoError(t, dst.Deserialize(data))
	assert.False(t, dst.IsActive())
	x, y := dst.Position()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	h := components.NewHealth(1)
	assert.Error(t, h.Deserialize([]byte("active: true\nfields:\n  hp: 3\n")))
}

func TestDestroyNotifiesThenDetaches(t *testing.T) {
	e := models.NewEntity("e")
	h := components.NewHealth(10)
	_, err := e.AddComponent(h)
	require.NoError(t, err)

	var stillAttached bool
	h.OnDestroyed(func(c models.Component) {
		stillAttached = e.HasComponent(c)
	})
	h.Destroy()

	assert.True(t, stillAttached, "notification fires before detach")
	assert.False(t, e.HasComponent(h))
	assert.Nil(t, h.Entity())

	h.Destroy()
	_, err = e.AddComponent(h)
	assert.ErrorIs(t, err, models.ErrComponentDestroyed)
}

func TestCloneComponentIsDeep(t *testing.T) {
	h := components.NewHealth(100)
	h.Damage(10)

	c, err := models.CloneComponent(h)
	require.NoError(t, err)
	clone := c.(*components.Health)
	assert.Equal(t, 90, clone.Current())

	clone.Damage(10)
	assert.Equal(t, 90, h.Current())
	assert.Nil(t, clone.Entity())
}

func TestKindRegistryUnknownKind(t *testing.T) {
	reg := models.NewKindRegistry()
	_, err := reg.New("Nope")
	assert.ErrorIs(t, err, models.ErrUnknownKind)
	assert.ErrorIs(t, reg.Register(nil), models.ErrNilComponent)
	assert.False(t, reg.Has(components.KindHealth))
}
