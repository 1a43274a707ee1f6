package grid

import (
	"testing"

	"github.com/nathoo/tacticore/types"
)

func openMap(w, h int) types.GridMap {
	return types.GridMap{Width: w, Height: h, Obstacles: map[types.Position]bool{}}
}

func TestDistance_Chebyshev(t *testing.T) {
	cases := []struct {
		a, b types.Position
		want int
	}{
		{types.Position{X: 0, Y: 0}, types.Position{X: 0, Y: 0}, 0},
		{types.Position{X: 0, Y: 0}, types.Position{X: 3, Y: 0}, 3},
		{types.Position{X: 0, Y: 0}, types.Position{X: 3, Y: 3}, 3}, // diagonal is free
		{types.Position{X: 2, Y: 5}, types.Position{X: 4, Y: 1}, 4},
		{types.Position{X: 5, Y: 5}, types.Position{X: 1, Y: 4}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := Distance(c.b, c.a); got != c.want {
			t.Errorf("Distance(%v, %v) = %d, want %d (symmetry)", c.b, c.a, got, c.want)
		}
	}
}

func TestHasLineOfEffect(t *testing.T) {
	var o Oracle
	m := openMap(10, 10)
	a := types.Position{X: 0, Y: 0}
	b := types.Position{X: 6, Y: 0}

	if !o.HasLineOfEffect(a, b, m) {
		t.Error("open map blocked a straight line")
	}

	m.Obstacles[types.Position{X: 3, Y: 0}] = true
	if o.HasLineOfEffect(a, b, m) {
		t.Error("obstacle on the line did not block")
	}

	// Endpoints never block their own line.
	m2 := openMap(10, 10)
	m2.Obstacles[b] = true
	if !o.HasLineOfEffect(a, b, m2) {
		t.Error("the target cell itself blocked the line")
	}
}

func TestHasLineOfEffect_Diagonal(t *testing.T) {
	var o Oracle
	m := openMap(10, 10)
	m.Obstacles[types.Position{X: 2, Y: 2}] = true
	if o.HasLineOfEffect(types.Position{X: 0, Y: 0}, types.Position{X: 4, Y: 4}, m) {
		t.Error("obstacle on the diagonal did not block")
	}
}

func TestHasCover(t *testing.T) {
	var o Oracle
	m := openMap(10, 10)
	attacker := types.Position{X: 0, Y: 3}
	target := types.Position{X: 6, Y: 3}

	if o.HasCover(attacker, target, m) {
		t.Error("cover reported on an open map")
	}

	// Obstacle on the line right next to the target grants cover.
	m.Obstacles[types.Position{X: 5, Y: 3}] = true
	if !o.HasCover(attacker, target, m) {
		t.Error("adjacent line obstacle did not grant cover")
	}

	// An obstacle halfway down the line is no cover, it blocks instead.
	m2 := openMap(10, 10)
	m2.Obstacles[types.Position{X: 3, Y: 3}] = true
	if o.HasCover(attacker, target, m2) {
		t.Error("mid-line obstacle counted as cover")
	}
}

func TestFindPath_StraightLine(t *testing.T) {
	var o Oracle
	m := openMap(8, 8)
	path, ok := o.FindPath(types.Position{X: 0, Y: 0}, types.Position{X: 3, Y: 3}, m, nil, 500)
	if !ok {
		t.Fatal("no path on an open map")
	}
	if len(path) != 3 {
		t.Errorf("path length = %d, want 3 (diagonal steps)", len(path))
	}
	if path[len(path)-1] != (types.Position{X: 3, Y: 3}) {
		t.Errorf("path ends at %v", path[len(path)-1])
	}
}

func TestFindPath_RoutesAroundWall(t *testing.T) {
	var o Oracle
	m := openMap(8, 8)
	// Vertical wall at x=3 with a gap at y=0.
	for y := 1; y < 8; y++ {
		m.Obstacles[types.Position{X: 3, Y: y}] = true
	}
	path, ok := o.FindPath(types.Position{X: 0, Y: 4}, types.Position{X: 6, Y: 4}, m, nil, 500)
	if !ok {
		t.Fatal("no path around the wall")
	}
	for _, p := range path {
		if m.Obstacles[p] {
			t.Fatalf("path passes through obstacle %v", p)
		}
	}
	if len(path) < 7 {
		t.Errorf("path length = %d, the detour should cost more than the straight line", len(path))
	}
}

func TestFindPath_BlockedCells(t *testing.T) {
	var o Oracle
	m := openMap(5, 1)
	blocked := map[types.Position]bool{{X: 2, Y: 0}: true}
	if _, ok := o.FindPath(types.Position{X: 0, Y: 0}, types.Position{X: 4, Y: 0}, m, blocked, 500); ok {
		t.Error("path crossed an occupied cell on a one-lane map")
	}
	if _, ok := o.FindPath(types.Position{X: 0, Y: 0}, types.Position{X: 2, Y: 0}, m, blocked, 500); ok {
		t.Error("path ended on an occupied cell")
	}
}

func TestFindPath_SameCellAndBudget(t *testing.T) {
	var o Oracle
	m := openMap(20, 20)
	p := types.Position{X: 4, Y: 4}
	if path, ok := o.FindPath(p, p, m, nil, 10); !ok || path != nil {
		t.Error("start == end should be an empty path")
	}
	// A tiny node budget must give up, not loop forever.
	if _, ok := o.FindPath(types.Position{X: 0, Y: 0}, types.Position{X: 19, Y: 19}, m, nil, 5); ok {
		t.Error("path found within an impossible node budget")
	}
}

func TestNeighbors(t *testing.T) {
	m := openMap(3, 3)
	if got := len(Neighbors(types.Position{X: 1, Y: 1}, m)); got != 8 {
		t.Errorf("center neighbors = %d, want 8", got)
	}
	if got := len(Neighbors(types.Position{X: 0, Y: 0}, m)); got != 3 {
		t.Errorf("corner neighbors = %d, want 3", got)
	}
	m.Obstacles[types.Position{X: 1, Y: 0}] = true
	if got := len(Neighbors(types.Position{X: 0, Y: 0}, m)); got != 2 {
		t.Errorf("corner neighbors with obstacle = %d, want 2", got)
	}
}
