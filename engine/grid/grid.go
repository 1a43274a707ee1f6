// Package grid is the default spatial oracle: Chebyshev distance,
// Bresenham line of effect, cover detection, and bounded breadth-first
// pathfinding over the battle map. All functions are pure; iteration
// orders are fixed so results are deterministic.
package grid

import "github.com/nathoo/tacticore/types"

// Distance returns the Chebyshev distance between two cells. Diagonal
// movement costs the same as orthogonal.
func Distance(a, b types.Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Oracle is the default SpatialOracle implementation. Stateless.
type Oracle struct{}

// Distance returns the Chebyshev distance between two cells.
func (Oracle) Distance(a, b types.Position) int {
	return Distance(a, b)
}

// HasLineOfEffect reports whether a straight line from a to b is clear of
// obstacles. Endpoints never block their own line.
func (Oracle) HasLineOfEffect(a, b types.Position, m types.GridMap) bool {
	for _, p := range line(a, b) {
		if p == a || p == b {
			continue
		}
		if m.Obstacles[p] {
			return false
		}
	}
	return true
}

// HasCover reports whether the target has half cover from the attacker:
// an obstacle cell on the attack line adjacent to the target.
func (Oracle) HasCover(attacker, target types.Position, m types.GridMap) bool {
	for _, p := range line(attacker, target) {
		if p == attacker || p == target {
			continue
		}
		if m.Obstacles[p] && Distance(p, target) <= 1 {
			return true
		}
	}
	return false
}

// FindPath returns a path from start to end (excluding start, including
// end) using breadth-first search over the eight neighbors, or false if
// no path exists within the node budget. blocked cells cannot be entered;
// end itself must not be blocked.
func (Oracle) FindPath(start, end types.Position, m types.GridMap, blocked map[types.Position]bool, budget int) ([]types.Position, bool) {
	if start == end {
		return nil, true
	}
	if !inBounds(end, m) || m.Obstacles[end] || blocked[end] {
		return nil, false
	}

	type node struct {
		pos  types.Position
		prev int
	}
	nodes := []node{{pos: start, prev: -1}}
	seen := map[types.Position]bool{start: true}

	for i := 0; i < len(nodes) && len(nodes) < budget; i++ {
		for _, n := range neighbors(nodes[i].pos) {
			if seen[n] || !inBounds(n, m) || m.Obstacles[n] || blocked[n] {
				continue
			}
			seen[n] = true
			nodes = append(nodes, node{pos: n, prev: i})
			if n == end {
				// Walk back to build the path.
				var path []types.Position
				for j := len(nodes) - 1; j > 0; j = nodes[j].prev {
					path = append(path, nodes[j].pos)
				}
				reverse(path)
				return path, true
			}
		}
	}
	return nil, false
}

// Neighbors returns the in-bounds, non-obstacle cells adjacent to p, in a
// fixed order.
func Neighbors(p types.Position, m types.GridMap) []types.Position {
	var out []types.Position
	for _, n := range neighbors(p) {
		if inBounds(n, m) && !m.Obstacles[n] {
			out = append(out, n)
		}
	}
	return out
}

// neighbors returns the eight adjacent cells in fixed scan order.
func neighbors(p types.Position) []types.Position {
	return []types.Position{
		{X: p.X - 1, Y: p.Y - 1}, {X: p.X, Y: p.Y - 1}, {X: p.X + 1, Y: p.Y - 1},
		{X: p.X - 1, Y: p.Y}, {X: p.X + 1, Y: p.Y},
		{X: p.X - 1, Y: p.Y + 1}, {X: p.X, Y: p.Y + 1}, {X: p.X + 1, Y: p.Y + 1},
	}
}

// line returns the cells on a Bresenham line from a to b, inclusive.
func line(a, b types.Position) []types.Position {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy

	var cells []types.Position
	x, y := a.X, a.Y
	for {
		cells = append(cells, types.Position{X: x, Y: y})
		if x == b.X && y == b.Y {
			return cells
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func inBounds(p types.Position, m types.GridMap) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func reverse(p []types.Position) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
