package herd

import (
	"errors"
	"fmt"
	"strings"

	"herding/internal/core"
)

// ErrCollision is reported when a group's shifted cells overlap another animal.
var ErrCollision = errors.New("group collision")

// Displacements are the rigid moves a group may take in one tick.
var Displacements = [4]core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}

// DisplacementSource picks the shared vector for group id in the current tick.
type DisplacementSource func(id GroupID) core.Point

// RandomDisplacements draws uniformly from Displacements.
func RandomDisplacements(rng *core.RNG) DisplacementSource {
	return func(GroupID) core.Point {
		return Displacements[rng.IntN(len(Displacements))]
	}
}

// FixedDisplacement moves every group by d.
func FixedDisplacement(d core.Point) DisplacementSource {
	return func(GroupID) core.Point { return d }
}

// Group is the set of animals sharing one id, members in insertion order.
type Group struct {
	ID      GroupID
	Members []int
}

// BlockedMove records a free animal that could not find an empty neighbor.
type BlockedMove struct {
	Animal int
	At     core.Point
}

// GroupMove records the vector drawn for one group.
type GroupMove struct {
	Group        GroupID
	Displacement core.Point
	Members      int
	Collided     bool
}

// TickReport summarizes what happened during one tick.
type TickReport struct {
	Tick        int
	Formed      []GroupID
	Blocked     []BlockedMove
	Moves       []GroupMove
	Memberships []Membership
}

// Collisions counts group moves that were cancelled.
func (r TickReport) Collisions() int {
	n := 0
	for _, mv := range r.Moves {
		if mv.Collided {
			n++
		}
	}
	return n
}

// Line formats the per-animal group ids, "-" for free animals.
func (r TickReport) Line() string {
	parts := make([]string, len(r.Memberships))
	for i, m := range r.Memberships {
		parts[i] = m.String()
	}
	return fmt.Sprintf("tick %d: %s", r.Tick, strings.Join(parts, " "))
}

// Scheduler runs the two-phase tick over a shared animal slice.
type Scheduler struct {
	grid     *core.OccupancyGrid
	rng      *core.RNG
	displace DisplacementSource
	attempts int

	minted GroupID
	ticks  int
}

// NewScheduler builds a scheduler over grid. A nil displace draws vectors
// from rng.
func NewScheduler(grid *core.OccupancyGrid, rng *core.RNG, displace DisplacementSource, attempts int) *Scheduler {
	if displace == nil {
		displace = RandomDisplacements(rng)
	}
	return &Scheduler{grid: grid, rng: rng, displace: displace, attempts: attempts}
}

// Minted returns how many group ids have been handed out.
func (s *Scheduler) Minted() GroupID { return s.minted }

// Ticks returns how many ticks have completed.
func (s *Scheduler) Ticks() int { return s.ticks }

func (s *Scheduler) reset() {
	s.minted = 0
	s.ticks = 0
}

func (s *Scheduler) mint() GroupID {
	s.minted++
	return s.minted
}

// Step advances every animal by one tick. Free animals walk first in slice
// order; then each group id below the counter snapshot moves rigidly. The
// newest id is skipped until a newer group is minted.
func (s *Scheduler) Step(animals []*Animal) (TickReport, error) {
	rep := TickReport{Tick: s.ticks + 1}

	for _, a := range animals {
		if !a.Free() {
			continue
		}
		if err := a.Move(s.grid, s.rng, s.attempts); err != nil {
			if !errors.Is(err, ErrMoveBlocked) {
				return rep, err
			}
			rep.Blocked = append(rep.Blocked, BlockedMove{Animal: a.id, At: a.pos})
		}
		rep.Formed = append(rep.Formed, s.probe(a, animals)...)
	}

	n := s.minted
	members := groupIndex(animals, n)
	for g := GroupID(1); g < n; g++ {
		d := s.displace(g)
		mv := GroupMove{Group: g, Displacement: d, Members: len(members[g])}
		if err := s.shiftGroup(members[g], d); err != nil {
			if !errors.Is(err, ErrCollision) {
				return rep, err
			}
			mv.Collided = true
		}
		rep.Moves = append(rep.Moves, mv)
	}

	s.ticks++
	rep.Memberships = make([]Membership, len(animals))
	for i, a := range animals {
		rep.Memberships[i] = a.group
	}
	return rep, nil
}

// probe merges a with its occupied neighbors in scan order. A free neighbor
// founds a new group with a; a grouped neighbor hands its id to a. The last
// neighbor scanned decides a's final id.
func (s *Scheduler) probe(a *Animal, animals []*Animal) []GroupID {
	var formed []GroupID
	for _, p := range s.grid.Neighborhood(a.pos) {
		id, ok := s.grid.At(p)
		if !ok {
			continue
		}
		n := animals[id]
		if g, grouped := n.group.Group(); grouped {
			a.join(g)
			continue
		}
		g := s.mint()
		a.join(g)
		n.join(g)
		formed = append(formed, g)
	}
	return formed
}

// shiftGroup translates every member by d as one body. Members are lifted
// before landing so they never block each other; if any landing cell is held
// by a non-member the group is put back where it was.
func (s *Scheduler) shiftGroup(members []*Animal, d core.Point) error {
	if len(members) == 0 || d == (core.Point{}) {
		return nil
	}
	if len(members) == 1 {
		if err := members[0].Shift(s.grid, d); err != nil {
			if errors.Is(err, core.ErrOccupied) {
				return fmt.Errorf("%w: %v", ErrCollision, err)
			}
			return err
		}
		return nil
	}

	for _, a := range members {
		if _, err := s.grid.Remove(a.pos); err != nil {
			return fmt.Errorf("lift animal %d: %w", a.id, err)
		}
	}
	blocked := false
	for _, a := range members {
		if !s.grid.Empty(s.grid.Translate(a.pos, d)) {
			blocked = true
			break
		}
	}
	if blocked {
		d = core.Point{}
	}
	for _, a := range members {
		a.pos = s.grid.Translate(a.pos, d)
		if err := s.grid.Place(a.id, a.pos); err != nil {
			return fmt.Errorf("land animal %d: %w", a.id, err)
		}
	}
	if blocked {
		return ErrCollision
	}
	return nil
}

// groupIndex buckets animals by group id in one pass. Index 0 is unused.
func groupIndex(animals []*Animal, n GroupID) [][]*Animal {
	members := make([][]*Animal, n+1)
	for _, a := range animals {
		if g, ok := a.group.Group(); ok && g <= n {
			members[g] = append(members[g], a)
		}
	}
	return members
}
