package engine

// CountCells counts the cells of a given state in the grid
func CountCells(grid [][]Cell, cell Cell) int {
	count := 0
	for _, row := range grid {
		for _, c := range row {
			if c == cell {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// LineOfFire reports whether a projectile fired from `from` in direction d
// would reach `to` without crossing a wall. An invalid direction never does.
func LineOfFire(state *GameState, from Position, d Direction, to Position) bool {
	if !d.Valid() {
		return false
	}
	pos := from
	for {
		pos = pos.Step(d)
		if !state.InBounds(pos.X, pos.Y) || state.Grid[pos.Y][pos.X] != Empty {
			return false
		}
		if pos == to {
			return true
		}
	}
}

// ReachableFrom returns every cell a tank at start could reach if all
// destructible walls were shot away
func ReachableFrom(grid [][]Cell, start Position) map[Position]bool {
	seen := map[Position]bool{}
	if start.Y < 0 || start.Y >= len(grid) || start.X < 0 || start.X >= len(grid[start.Y]) {
		return seen
	}
	queue := []Position{start}
	seen[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := cur.Step(d)
			if next.Y < 0 || next.Y >= len(grid) || next.X < 0 || next.X >= len(grid[next.Y]) {
				continue
			}
			if seen[next] || grid[next.Y][next.X] == IndestructibleWall {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Grid = make([][]Cell, len(gs.Grid))
	for y, row := range gs.Grid {
		out.Grid[y] = append([]Cell(nil), row...)
	}
	out.Projectiles = append([]Projectile{}, gs.Projectiles...)
	out.History = append([]ActionEntry{}, gs.History...)
	if gs.Board != nil {
		out.Board = append([]string(nil), gs.Board...)
	}
	return &out
}
