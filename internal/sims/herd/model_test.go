package herd

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herding/internal/core"
	"herding/internal/logging"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 24
	cfg.Height = 24
	cfg.Population = 90
	cfg.Seed = 99
	return cfg
}

func wrappedDelta(g *core.OccupancyGrid, from, to core.Point) core.Point {
	return g.Wrap(core.Point{X: to.X - from.X, Y: to.Y - from.Y})
}

func TestInvariantsHoldAcrossTicks(t *testing.T) {
	cfg := smallConfig()
	m, err := NewModel(cfg)
	require.NoError(t, err)

	for tick := 1; tick <= 300; tick++ {
		before := m.Animals()

		rep, err := m.Tick()
		require.NoError(t, err)
		require.Equal(t, tick, rep.Tick)

		after := m.Animals()
		require.Equal(t, cfg.Population, m.grid.Count(), "tick %d: occupancy count", tick)

		seen := map[core.Point]int{}
		for id, a := range after {
			if other, dup := seen[a.pos]; dup {
				t.Fatalf("tick %d: animals %d and %d share %v", tick, other, id, a.pos)
			}
			seen[a.pos] = id
			got, ok := m.grid.At(a.pos)
			require.True(t, ok)
			require.Equal(t, id, got)
		}

		moves := map[GroupID]GroupMove{}
		for _, mv := range rep.Moves {
			moves[mv.Group] = mv
		}
		for id := range before {
			prev, wasGrouped := before[id].group.Group()
			if !wasGrouped {
				continue
			}
			cur, ok := after[id].group.Group()
			require.True(t, ok, "tick %d: animal %d lost its group", tick, id)
			require.Equal(t, prev, cur, "tick %d: animal %d changed group", tick, id)

			delta := wrappedDelta(m.grid, before[id].pos, after[id].pos)
			mv, moved := moves[cur]
			switch {
			case !moved:
				require.Equal(t, core.Point{}, delta, "tick %d: newest group %d moved", tick, cur)
			case mv.Collided:
				require.Equal(t, core.Point{}, delta)
			default:
				require.Equal(t, mv.Displacement, delta, "tick %d: group %d member %d", tick, cur, id)
			}
		}
	}
	assert.Positive(t, m.sched.Minted(), "a dense world should form groups")
}

func TestResetDeterministic(t *testing.T) {
	m, err := NewModel(smallConfig())
	require.NoError(t, err)
	initial := m.Animals()

	for i := 0; i < 10; i++ {
		m.Step()
	}
	assert.Equal(t, 10, m.Ticks())

	m.Reset(0)
	assert.Equal(t, initial, m.Animals())
	assert.Equal(t, 0, m.Ticks())
	assert.Equal(t, GroupID(0), m.sched.Minted())

	m.Reset(777)
	seeded := m.Animals()
	m.Reset(777)
	assert.Equal(t, seeded, m.Animals())
	assert.NotEqual(t, initial, seeded)
}

func TestSameSeedSameHistory(t *testing.T) {
	a, err := NewModel(smallConfig())
	require.NoError(t, err)
	b, err := NewModel(smallConfig())
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		ra, err := a.Tick()
		require.NoError(t, err)
		rb, err := b.Tick()
		require.NoError(t, err)
		require.Equal(t, ra, rb)
	}
}

func TestPopulationIndependentOfGridSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Population = 10, 12, 7
	m, err := NewModel(cfg)
	require.NoError(t, err)
	assert.Len(t, m.Animals(), 7)
	assert.Equal(t, core.Size{W: 10, H: 12}, m.Size())

	def, err := NewModel(DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, def.Animals(), 40)
	assert.Equal(t, core.Size{W: 100, H: 100}, def.Size())
}

func TestFullGridPopulates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Population = 3, 3, 9
	m, err := NewModel(cfg)
	require.NoError(t, err)
	assert.Equal(t, 9, m.grid.Count())

	rep, err := m.Tick()
	require.NoError(t, err)
	assert.NotEmpty(t, rep.Blocked)
	assert.Equal(t, 9, m.grid.Count())
}

func TestNewModelRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Population = 2, 2, 5
	_, err := NewModel(cfg)
	assert.True(t, errors.Is(err, ErrOvercrowded), "got %v", err)

	cfg = DefaultConfig()
	cfg.Width = 0
	_, err = NewModel(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MoveAttempts = 0
	_, err = NewModel(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":             "30",
		"h":             "20",
		"population":    "12",
		"seed":          "5",
		"move_attempts": "bogus",
	})
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
	assert.Equal(t, 12, cfg.Population)
	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, DefaultConfig().MoveAttempts, cfg.MoveAttempts)

	assert.Equal(t, cfg, FromMap(cfg.ToMap()))
	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestRegisteredFactory(t *testing.T) {
	sim, err := core.Build("herd", map[string]string{"w": "8", "h": "6", "population": "5"})
	require.NoError(t, err)
	m, ok := sim.(*Model)
	require.True(t, ok)
	assert.Equal(t, core.Size{W: 8, H: 6}, m.Size())
	assert.Len(t, m.Animals(), 5)

	_, err = core.Build("herd", map[string]string{"w": "2", "h": "2", "population": "9"})
	assert.ErrorIs(t, err, ErrOvercrowded)
}

func TestMetricsRecordTicks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	again, err := NewCollector(reg)
	require.NoError(t, err)
	assert.Same(t, c.Ticks, again.Ticks)

	m := arrange(t, 2, 2, 0, []placement{
		{at: core.Point{X: 0, Y: 0}},
		{at: core.Point{X: 1, Y: 1}},
	}, WithMetrics(c))
	_, err = m.Tick()
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GroupsFormed))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.FreeAnimals))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Groups))

	fields, err := Summarize(reg)
	require.NoError(t, err)
	byKey := map[string]any{}
	for _, f := range fields {
		byKey[f.Key] = f.Value
	}
	assert.Equal(t, 1.0, byKey["herd_ticks_total"])
	assert.Equal(t, uint64(1), byKey["herd_tick_duration_seconds_count"])
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Observe(TickReport{}, 0, 0, 0)
}

func TestConcurrentTicksAreSerialized(t *testing.T) {
	m, err := NewModel(smallConfig(), WithLogger(logging.Noop()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = m.Tick()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, m.Ticks())
	assert.Equal(t, 90, m.grid.Count())
}

func TestGroupsListsMembersInOrder(t *testing.T) {
	m := arrange(t, 6, 6, 4, []placement{
		{at: core.Point{X: 0, Y: 0}, group: 2},
		{at: core.Point{X: 3, Y: 3}},
		{at: core.Point{X: 1, Y: 0}, group: 2},
		{at: core.Point{X: 5, Y: 5}, group: 4},
	})
	assert.Equal(t, []Group{
		{ID: 2, Members: []int{0, 2}},
		{ID: 4, Members: []int{3}},
	}, m.Groups())
}

func TestParametersSnapshot(t *testing.T) {
	m := arrange(t, 6, 6, 4, []placement{
		{at: core.Point{X: 0, Y: 0}, group: 2},
		{at: core.Point{X: 3, Y: 3}},
	})
	snap := m.Parameters()
	p, ok := snap.Lookup("free")
	require.True(t, ok)
	assert.Equal(t, "1", p.Value)
	p, ok = snap.Lookup("minted")
	require.True(t, ok)
	assert.Equal(t, "4", p.Value)
	_, ok = snap.Lookup("missing")
	assert.False(t, ok)
}
