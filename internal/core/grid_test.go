package core

import (
	"errors"
	"slices"
	"testing"
)

func TestWrapAtMaxX(t *testing.T) {
	g := NewOccupancyGrid(5, 4)
	got := g.Translate(Point{X: 4, Y: 2}, Point{X: 1, Y: 0})
	if got != (Point{X: 0, Y: 2}) {
		t.Fatalf("translate (4,2)+(1,0) = %v, want (0,2)", got)
	}
	got = g.Translate(Point{X: 0, Y: 0}, Point{X: -1, Y: -1})
	if got != (Point{X: 4, Y: 3}) {
		t.Fatalf("translate (0,0)+(-1,-1) = %v, want (4,3)", got)
	}
	if got := g.Wrap(Point{X: 11, Y: -9}); got != (Point{X: 1, Y: 3}) {
		t.Fatalf("wrap (11,-9) = %v, want (1,3)", got)
	}
}

func TestNeighborhoodScanOrder(t *testing.T) {
	g := NewOccupancyGrid(5, 5)
	got := g.Neighborhood(Point{X: 2, Y: 2})
	want := []Point{{2, 1}, {1, 2}, {3, 2}, {2, 3}}
	if !slices.Equal(got, want) {
		t.Fatalf("neighborhood = %v, want %v", got, want)
	}

	got = g.Neighborhood(Point{X: 0, Y: 0})
	want = []Point{{0, 4}, {4, 0}, {1, 0}, {0, 1}}
	if !slices.Equal(got, want) {
		t.Fatalf("corner neighborhood = %v, want %v", got, want)
	}
}

func TestNeighborhoodDeduplicatesOnTinyGrids(t *testing.T) {
	g := NewOccupancyGrid(2, 2)
	got := g.Neighborhood(Point{X: 0, Y: 0})
	want := []Point{{0, 1}, {1, 0}}
	if !slices.Equal(got, want) {
		t.Fatalf("2x2 neighborhood = %v, want %v", got, want)
	}

	g = NewOccupancyGrid(1, 3)
	got = g.Neighborhood(Point{X: 0, Y: 1})
	want = []Point{{0, 0}, {0, 2}}
	if !slices.Equal(got, want) {
		t.Fatalf("1x3 neighborhood = %v, want %v", got, want)
	}
}

func TestPlaceMoveRemove(t *testing.T) {
	g := NewOccupancyGrid(3, 3)
	if err := g.Place(0, Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := g.Place(7, Point{X: 1, Y: 1}); !errors.Is(err, ErrOccupied) {
		t.Fatalf("double place err = %v, want ErrOccupied", err)
	}
	if id, ok := g.At(Point{X: 1, Y: 1}); !ok || id != 0 {
		t.Fatalf("at (1,1) = %d,%v, want 0,true", id, ok)
	}

	if err := g.Place(3, Point{X: 2, Y: 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := g.Move(Point{X: 1, Y: 1}, Point{X: 2, Y: 1}); !errors.Is(err, ErrOccupied) {
		t.Fatalf("move onto occupant err = %v, want ErrOccupied", err)
	}
	if err := g.Move(Point{X: 1, Y: 1}, Point{X: 1, Y: 0}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if !g.Empty(Point{X: 1, Y: 1}) {
		t.Fatal("source cell should be empty after move")
	}
	if id, ok := g.At(Point{X: 1, Y: 3}); !ok || id != 0 {
		t.Fatalf("wrapped lookup (1,3) = %d,%v, want 0,true", id, ok)
	}
	if err := g.Move(Point{X: 0, Y: 0}, Point{X: 0, Y: 1}); !errors.Is(err, ErrVacant) {
		t.Fatalf("move from vacant err = %v, want ErrVacant", err)
	}

	if id, err := g.Remove(Point{X: 2, Y: 1}); err != nil || id != 3 {
		t.Fatalf("remove = %d,%v, want 3,nil", id, err)
	}
	if _, err := g.Remove(Point{X: 2, Y: 1}); !errors.Is(err, ErrVacant) {
		t.Fatalf("second remove err = %v, want ErrVacant", err)
	}
	if n := g.Count(); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	g.Clear()
	if n := g.Count(); n != 0 {
		t.Fatalf("count after clear = %d, want 0", n)
	}
}

func TestRegistryBuild(t *testing.T) {
	Register("test-empty", func(map[string]string) (Sim, error) {
		return nil, errors.New("boom")
	})
	defer delete(sims, "test-empty")

	if _, err := Build("test-empty", nil); err == nil {
		t.Fatal("expected factory error to surface")
	}
	if _, err := Build("no-such-sim", nil); err == nil {
		t.Fatal("expected unknown sim error")
	}
	if !slices.Contains(Names(), "test-empty") {
		t.Fatalf("names %v missing test-empty", Names())
	}
}
