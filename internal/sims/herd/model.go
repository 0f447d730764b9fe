package herd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"herding/internal/core"
	"herding/internal/logging"
)

// Option customizes a Model at construction.
type Option func(*Model)

// WithLogger routes model logs to log.
func WithLogger(log logging.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics records every tick on c.
func WithMetrics(c *Collector) Option {
	return func(m *Model) { m.metrics = c }
}

// WithDisplacements replaces the random group vectors with src.
func WithDisplacements(src DisplacementSource) Option {
	return func(m *Model) { m.displace = src }
}

// Model owns the grid, the animals and the scheduler of one herd world.
type Model struct {
	mu sync.Mutex

	cfg     Config
	grid    *core.OccupancyGrid
	rng     *core.RNG
	sched   *Scheduler
	animals []*Animal
	display []uint8

	displace DisplacementSource
	log      logging.Logger
	metrics  *Collector
}

// NewModel validates cfg and populates a fresh world from cfg.Seed.
func NewModel(cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		cfg:     cfg,
		grid:    core.NewOccupancyGrid(cfg.Width, cfg.Height),
		rng:     core.NewRNG(cfg.Seed),
		display: make([]uint8, cfg.Width*cfg.Height),
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = NewScheduler(m.grid, m.rng, m.displace, cfg.MoveAttempts)
	if err := m.populate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the simulation identifier.
func (m *Model) Name() string { return "herd" }

// Size reports the grid dimensions.
func (m *Model) Size() core.Size { return m.grid.Size() }

// Config returns the configuration the model was built with.
func (m *Model) Config() Config { return m.cfg }

// Cells exposes the display buffer: 0 empty, 1 free animal, 2+ grouped.
func (m *Model) Cells() []uint8 { return m.display }

// Ticks returns how many ticks have completed since the last reset.
func (m *Model) Ticks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sched.Ticks()
}

// Reset repopulates the world from seed; zero falls back to the config seed.
func (m *Model) Reset(seed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	effective := seed
	if effective == 0 {
		effective = m.cfg.Seed
	}
	m.rng.Reseed(effective)
	m.grid.Clear()
	m.sched.reset()
	if err := m.populate(); err != nil {
		m.log.Error(context.Background(), "reset failed", logging.Err(err))
	}
}

// populate places the configured population on distinct empty cells by
// rejection sampling.
func (m *Model) populate() error {
	m.animals = make([]*Animal, 0, m.cfg.Population)
	for i := 0; i < m.cfg.Population; i++ {
		var p core.Point
		for {
			p = m.rng.Point(m.grid.W, m.grid.H)
			if m.grid.Empty(p) {
				break
			}
		}
		a := &Animal{id: i, pos: p}
		if err := m.grid.Place(a.id, p); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
		m.animals = append(m.animals, a)
	}
	m.rebuildDisplay()
	return nil
}

// Tick advances the world by one step and reports every animal's group.
// Concurrent callers are serialized.
func (m *Model) Tick() (TickReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	rep, err := m.sched.Step(m.animals)
	if err != nil {
		return rep, fmt.Errorf("tick %d: %w", rep.Tick, err)
	}
	elapsed := time.Since(start)
	m.rebuildDisplay()

	ctx := context.Background()
	for _, b := range rep.Blocked {
		m.log.Warn(ctx, "free animal blocked", logging.Int("tick", rep.Tick), logging.Int("animal", b.Animal), logging.String("at", b.At.String()))
	}
	for _, mv := range rep.Moves {
		if mv.Collided {
			m.log.Warn(ctx, "group move cancelled", logging.Int("tick", rep.Tick), logging.Int("group", int(mv.Group)), logging.String("displacement", mv.Displacement.String()))
		}
	}
	free, groups := m.census()
	m.log.Debug(ctx, rep.Line(), logging.Int("formed", len(rep.Formed)), logging.Int("free", free), logging.Int("groups", groups))
	m.metrics.Observe(rep, elapsed, free, groups)
	return rep, nil
}

// Step satisfies core.Sim; errors are logged rather than returned.
func (m *Model) Step() {
	if _, err := m.Tick(); err != nil {
		m.log.Error(context.Background(), "tick failed", logging.Err(err))
	}
}

// Animals returns a snapshot of every animal in insertion order.
func (m *Model) Animals() []Animal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Animal, len(m.animals))
	for i, a := range m.animals {
		out[i] = *a
	}
	return out
}

// Groups returns the non-empty groups in id order.
func (m *Model) Groups() []Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups()
}

func (m *Model) groups() []Group {
	index := groupIndex(m.animals, m.sched.Minted())
	var out []Group
	for id, members := range index {
		if len(members) == 0 {
			continue
		}
		g := Group{ID: GroupID(id), Members: make([]int, len(members))}
		for i, a := range members {
			g.Members[i] = a.id
		}
		out = append(out, g)
	}
	return out
}

func (m *Model) census() (free, groups int) {
	for _, a := range m.animals {
		if a.Free() {
			free++
		}
	}
	return free, len(m.groups())
}

func init() {
	core.Register("herd", func(cfg map[string]string) (core.Sim, error) {
		return NewModel(FromMap(cfg))
	})
}
