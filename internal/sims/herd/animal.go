package herd

import (
	"errors"
	"fmt"
	"strconv"

	"herding/internal/core"
)

// ErrMoveBlocked is returned when a free animal finds no empty neighbor
// within its attempt budget.
var ErrMoveBlocked = errors.New("move blocked")

// GroupID identifies a group. Valid ids start at 1.
type GroupID int

// Membership is either unassigned or a member of one group. The zero value
// is unassigned, and there is no way back to it once an id is set.
type Membership struct {
	id GroupID
}

// Member returns a membership in group id.
func Member(id GroupID) Membership { return Membership{id: id} }

// Group returns the group id and whether one is assigned.
func (m Membership) Group() (GroupID, bool) { return m.id, m.id > 0 }

// Free reports whether no group is assigned.
func (m Membership) Free() bool { return m.id <= 0 }

// String renders "-" for free animals and the group id otherwise.
func (m Membership) String() string {
	if m.Free() {
		return "-"
	}
	return strconv.Itoa(int(m.id))
}

// Animal is a single agent on the grid.
type Animal struct {
	id    int
	pos   core.Point
	group Membership
}

// ID returns the stable animal id.
func (a *Animal) ID() int { return a.id }

// Pos returns the current cell.
func (a *Animal) Pos() core.Point { return a.pos }

// Membership returns the current group membership.
func (a *Animal) Membership() Membership { return a.group }

// Free reports whether the animal still walks on its own.
func (a *Animal) Free() bool { return a.group.Free() }

func (a *Animal) join(id GroupID) {
	if id <= 0 {
		return
	}
	a.group = Member(id)
}

// Move walks one step to a random empty orthogonal neighbor. Neighbors are
// sampled uniformly with replacement; after attempts misses the animal stays
// put and ErrMoveBlocked is returned.
func (a *Animal) Move(grid *core.OccupancyGrid, rng *core.RNG, attempts int) error {
	moves := grid.Neighborhood(a.pos)
	if attempts <= 0 {
		attempts = 1
	}
	if len(moves) > 0 {
		for i := 0; i < attempts; i++ {
			next := rng.Pick(moves)
			if !grid.Empty(next) {
				continue
			}
			if err := grid.Move(a.pos, next); err != nil {
				return fmt.Errorf("animal %d: %w", a.id, err)
			}
			a.pos = next
			return nil
		}
	}
	return fmt.Errorf("animal %d at %v: %w", a.id, a.pos, ErrMoveBlocked)
}

// Shift relocates the animal by d with toroidal wrapping. The target must be
// empty; rigid group moves lift every member first so members never block
// each other.
func (a *Animal) Shift(grid *core.OccupancyGrid, d core.Point) error {
	next := grid.Translate(a.pos, d)
	if err := grid.Move(a.pos, next); err != nil {
		return fmt.Errorf("animal %d: %w", a.id, err)
	}
	a.pos = next
	return nil
}
