package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ecs/internal/components"
	"github.com/zeusync/ecs/internal/core/events"
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/models"
	"github.com/zeusync/ecs/internal/core/observability/log"
	"github.com/zeusync/ecs/internal/core/scheduler"
)

type testContext struct {
	bus   bus.EventBus
	sched *scheduler.Deferred
}

func newTestContext() *testContext {
	return &testContext{bus: bus.New(), sched: scheduler.New(log.Nop(), 0)}
}

func (c *testContext) Bus() bus.EventBus    { return c.bus }
func (c *testContext) Scheduler() Scheduler { return c.sched }
func (c *testContext) Logger() log.Log      { return log.Nop() }

func (c *testContext) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, c.sched.Flush())
}

// recorder logs every hook invocation in order.
type recorder struct {
	pred    func(*models.Entity) bool
	checks  int
	log     []string
	updates []*models.Entity
	late    []*models.Entity
	onTick  func(*models.Entity)
}

func (r *recorder) ShouldProcessEntity(e *models.Entity) bool {
	r.checks++
	return r.pred(e)
}

func (r *recorder) OnUpdate(e *models.Entity) {
	r.updates = append(r.updates, e)
	if r.onTick != nil {
		r.onTick(e)
	}
}

func (r *recorder) OnLateUpdate(e *models.Entity)      { r.late = append(r.late, e) }
func (r *recorder) OnEntityAdded(e *models.Entity)     { r.log = append(r.log, "added:"+e.Name()) }
func (r *recorder) OnLateEntityAdded(e *models.Entity) { r.log = append(r.log, "late:"+e.Name()) }
func (r *recorder) OnEntityRemoved(e *models.Entity)   { r.log = append(r.log, "removed:"+e.Name()) }
func (r *recorder) OnDestroy()                         { r.log = append(r.log, "destroy") }

func (r *recorder) count(entry string) int {
	n := 0
	for _, l := range r.log {
		if l == entry {
			n++
		}
	}
	return n
}

func enemyWithHealth() func(*models.Entity) bool {
	return Matching([]string{"enemy"}, components.KindHealth)
}

func newSystem(t *testing.T, ctx *testContext, proc Processor) *System {
	t.Helper()
	s, err := New("test", proc, ctx)
	require.NoError(t, err)
	require.NoError(t, s.Initialize())
	return s
}

func spawn(t *testing.T, ctx *testContext, name string, tags []string, cs ...models.Component) *models.Entity {
	t.Helper()
	e := models.NewEntity(name)
	for _, c := range cs {
		_, err := e.AddComponent(c)
		require.NoError(t, err)
	}
	for _, tag := range tags {
		require.NoError(t, e.AddTag(tag))
	}
	require.NoError(t, ctx.bus.Publish(events.EntityCreated{Entity: e}))
	return e
}

func TestNewValidatesArguments(t *testing.T) {
	ctx := newTestContext()
	_, err := New("", ProcessorFunc(func(*models.Entity) bool { return true }), ctx)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = New("x", nil, ctx)
	assert.ErrorIs(t, err, ErrNilProcessor)
	_, err = New("x", ProcessorFunc(func(*models.Entity) bool { return true }), nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInitializeOnlyOnce(t *testing.T) {
	ctx := newTestContext()
	s := newSystem(t, ctx, &recorder{pred: enemyWithHealth()})
	assert.ErrorIs(t, s.Initialize(), ErrAlreadyInitialized)
	assert.Equal(t, 1, ctx.bus.Subscribers(events.TypeEntityCreated))
	assert.Equal(t, 1, ctx.bus.Subscribers(events.TypeEntityModified))
	assert.Equal(t, 1, ctx.bus.Subscribers(events.TypeEntityDeleted))
}

func TestNilEntityFailsFast(t *testing.T) {
	ctx := newTestContext()
	s := newSystem(t, ctx, &recorder{pred: enemyWithHealth()})

	assert.ErrorIs(t, s.OnEntityCreatedOrModified(nil), ErrNilEntity)
	assert.ErrorIs(t, s.OnEntityDeleted(nil), ErrNilEntity)
	assert.ErrorIs(t, s.RequestAdd(nil), ErrNilEntity)
	assert.ErrorIs(t, s.RequestRemove(nil), ErrNilEntity)
	assert.ErrorIs(t, ctx.bus.Publish(events.EntityModified{}), ErrNilEntity)
	assert.Zero(t, ctx.sched.Pending())
}

func TestEnemyScenario(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)

	e1 := spawn(t, ctx, "E1", nil, components.NewHealth(100))
	ctx.flush(t)
	assert.False(t, s.Contains(e1), "missing tag")

	require.NoError(t, e1.AddTag("enemy"))
	require.NoError(t, ctx.bus.Publish(events.EntityModified{Entity: e1}))
	ctx.flush(t)
	assert.True(t, s.Contains(e1))
	assert.Equal(t, 1, rec.count("added:E1"))
	assert.Zero(t, rec.count("late:E1"))

	ctx.flush(t)
	assert.Equal(t, 1, rec.count("added:E1"))
	assert.Equal(t, 1, rec.count("late:E1"))
	assert.True(t, s.KnowsArchetype("Health|enemy"))
}

func TestMemberSchedulesNothing(t *testing.T) {
	ctx := newTestContext()
	s := newSystem(t, ctx, &recorder{pred: enemyWithHealth()})
	e := spawn(t, ctx, "E", []string{"enemy"}, components.NewHealth(1))
	require.NoError(t, ctx.sched.FlushAll(4))
	require.True(t, s.Contains(e))

	before := ctx.sched.Stats().Scheduled
	for i := 0; i < 10; i++ {
		require.NoError(t, s.OnEntityCreatedOrModified(e))
		require.NoError(t, ctx.bus.Publish(events.EntityModified{Entity: e}))
	}
	assert.Equal(t, before, ctx.sched.Stats().Scheduled)
	assert.Zero(t, ctx.sched.Pending())
}

func TestUnclassifiableEntityIsSkipped(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: func(*models.Entity) bool { return true }}
	s := newSystem(t, ctx, rec)

	e := spawn(t, ctx, "empty", nil)
	ctx.flush(t)
	assert.False(t, s.Contains(e))
	assert.Zero(t, rec.checks, "predicate is not evaluated without an archetype")

	require.NoError(t, e.AddTag("anything"))
	require.NoError(t, ctx.bus.Publish(events.EntityModified{Entity: e}))
	ctx.flush(t)
	assert.True(t, s.Contains(e))
}

func TestKnownArchetypeBypassesPredicate(t *testing.T) {
	ctx := newTestContext()
	alive := func(e *models.Entity) bool {
		h, ok := models.Get[*components.Health](e)
		return ok && e.HasTag("enemy") && !h.IsDead()
	}
	rec := &recorder{pred: alive}
	s := newSystem(t, ctx, rec)

	first := spawn(t, ctx, "alive", []string{"enemy"}, components.NewHealth(10))
	ctx.flush(t)
	require.True(t, s.Contains(first))
	checks := rec.checks

	corpse := spawn(t, ctx, "corpse", []string{"enemy"}, components.NewHealth(0))
	require.False(t, alive(corpse))
	ctx.flush(t)

	assert.True(t, s.Contains(corpse), "cached archetype admits a predicate failure")
	assert.Equal(t, checks, rec.checks, "predicate never ran for the cached archetype")
}

func TestRegisterArchetypeSeedsFastPath(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: func(*models.Entity) bool { return false }}
	s := newSystem(t, ctx, rec)
	s.RegisterArchetype(models.NewArchetype([]models.Kind{components.KindTransform}, nil))
	s.RegisterArchetype(nil)

	e := spawn(t, ctx, "mover", nil, components.NewTransform(0, 0))
	ctx.flush(t)
	assert.True(t, s.Contains(e))
	assert.Zero(t, rec.checks)
}

func TestPredicateFailureRemovesPendingMember(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: func(*models.Entity) bool { return false }}
	s := newSystem(t, ctx, rec)

	e := models.NewEntity("forced")
	require.NoError(t, e.AddTag("x"))
	require.NoError(t, s.RequestAdd(e))
	require.NoError(t, s.OnEntityCreatedOrModified(e))
	ctx.flush(t)

	assert.False(t, s.Contains(e))
	assert.Equal(t, []string{"added:forced", "removed:forced"}, rec.log)
}

func TestTickSeesStableMembership(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)

	a := spawn(t, ctx, "a", []string{"enemy"}, components.NewHealth(1))
	ctx.flush(t)
	b := models.NewEntity("b")
	require.NoError(t, b.AddTag("enemy"))

	require.NoError(t, s.RequestAdd(b))
	require.NoError(t, s.RequestRemove(a))
	s.Tick()
	s.LateTick()
	assert.Equal(t, []*models.Entity{a}, rec.updates)
	assert.Equal(t, []*models.Entity{a}, rec.late)

	ctx.flush(t)
	rec.updates = nil
	s.Tick()
	assert.Equal(t, []*models.Entity{b}, rec.updates)
}

func TestMutationDuringTickIsDeferred(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)

	a := spawn(t, ctx, "a", []string{"enemy"}, components.NewHealth(1))
	c := spawn(t, ctx, "c", []string{"enemy"}, components.NewHealth(1))
	ctx.flush(t)
	b := models.NewEntity("b")
	require.NoError(t, b.AddTag("enemy"))

	require.NoError(t, s.RequestAdd(b))
	require.NoError(t, s.RequestRemove(c))
	rec.onTick = func(*models.Entity) {
		// a misbehaving update draining the queue mid-iteration
		_ = ctx.sched.Flush()
	}
	s.Tick()
	assert.Equal(t, []*models.Entity{a, c}, rec.updates)
	assert.Equal(t, []*models.Entity{a, c}, s.Entities())

	rec.onTick = nil
	require.NoError(t, ctx.sched.FlushAll(4))
	assert.Equal(t, []*models.Entity{a, b}, s.Entities())
}

func TestLateAddFollowsAddAcrossSystems(t *testing.T) {
	ctx := newTestContext()
	var order []string
	mk := func(name string) *System {
		rec := &orderRecorder{name: name, order: &order}
		s, err := New(name, rec, ctx)
		require.NoError(t, err)
		require.NoError(t, s.Initialize())
		return s
	}
	mk("first")
	mk("second")

	spawn(t, ctx, "e", []string{"any"})
	for i := 0; i < 5; i++ {
		ctx.flush(t)
	}
	assert.Equal(t, []string{"first.added", "second.added", "first.late", "second.late"}, order)
}

type orderRecorder struct {
	name  string
	order *[]string
}

func (o *orderRecorder) ShouldProcessEntity(*models.Entity) bool { return true }
func (o *orderRecorder) OnEntityAdded(*models.Entity) {
	*o.order = append(*o.order, o.name+".added")
}
func (o *orderRecorder) OnLateEntityAdded(*models.Entity) {
	*o.order = append(*o.order, o.name+".late")
}

func TestInactiveSystemKeepsBookkeeping(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)

	a := spawn(t, ctx, "a", []string{"enemy"}, components.NewHealth(1))
	ctx.flush(t)
	s.SetActive(false)
	assert.False(t, s.IsActive())

	b := spawn(t, ctx, "b", []string{"enemy"}, components.NewHealth(1))
	require.NoError(t, ctx.bus.Publish(events.EntityDeleted{Entity: a}))
	ctx.flush(t)
	s.Tick()
	s.LateTick()

	assert.Empty(t, rec.updates)
	assert.Empty(t, rec.late)
	assert.Equal(t, []*models.Entity{b}, s.Entities())

	s.SetActive(true)
	s.Tick()
	assert.Equal(t, []*models.Entity{b}, rec.updates)
}

func TestDeletionIsDeferred(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)
	e := spawn(t, ctx, "e", []string{"enemy"}, components.NewHealth(1))
	ctx.flush(t)

	require.NoError(t, s.OnEntityDeleted(e))
	assert.True(t, s.Contains(e))
	ctx.flush(t)
	assert.False(t, s.Contains(e))
	assert.Equal(t, 1, rec.count("removed:e"))

	require.NoError(t, s.OnEntityDeleted(e))
	ctx.flush(t)
	assert.Equal(t, 1, rec.count("removed:e"), "removing an absent entity is a no-op")
}

func TestDestroyReleasesSubscriptionsAndKeepsMembers(t *testing.T) {
	ctx := newTestContext()
	rec := &recorder{pred: enemyWithHealth()}
	s := newSystem(t, ctx, rec)
	e := spawn(t, ctx, "e", []string{"enemy"}, components.NewHealth(1))
	ctx.flush(t)

	var destroyedNames []string
	_, err := bus.SubscribeTo(ctx.bus, func(ev events.SystemDestroyed) error {
		destroyedNames = append(destroyedNames, ev.Name)
		return nil
	})
	require.NoError(t, err)
	notified := 0
	s.OnDestroyed(func(sys *System) {
		assert.Same(t, s, sys)
		notified++
	})

	s.Destroy()
	s.Destroy()
	assert.False(t, s.IsDestroyed(), "teardown is deferred")
	require.NoError(t, ctx.sched.FlushAll(4))

	assert.True(t, s.IsDestroyed())
	assert.Equal(t, 1, notified)
	assert.Equal(t, []string{"test"}, destroyedNames)
	assert.Equal(t, 1, rec.count("destroy"))
	assert.Zero(t, rec.count("removed:e"))
	assert.Equal(t, 1, s.Len(), "members are not detached on teardown")
	assert.Zero(t, ctx.bus.Subscribers(events.TypeEntityCreated))
	assert.Zero(t, ctx.bus.Subscribers(events.TypeEntityModified))
	assert.Zero(t, ctx.bus.Subscribers(events.TypeEntityDeleted))

	spawn(t, ctx, "late", []string{"enemy"}, components.NewHealth(1))
	assert.Zero(t, ctx.sched.Pending())
	rec.updates = nil
	s.Tick()
	assert.Empty(t, rec.updates)
}

func TestMatching(t *testing.T) {
	p := Matching([]string{"enemy", "boss"}, components.KindHealth)
	e := models.NewEntity("e")
	_, _ = e.AddComponent(components.NewHealth(1))
	_ = e.AddTag("enemy")
	assert.False(t, p.ShouldProcessEntity(e))
	_ = e.AddTag("boss")
	assert.True(t, p.ShouldProcessEntity(e))
}
