package models

import (
	"errors"
	"fmt"
)

// Coord addresses a grid cell by row and column, (0,0) being the top left cell.
type Coord struct {
	Row, Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid is the square navigation world of a single solve: its size, the start and goal
// cells, and the set of impassable obstacle cells. A Grid is not modified once built.
// Note that the start cell is not part of the reward model, it only matters to the
// policy extraction.
type Grid struct {
	N         int
	Start     Coord
	Goal      Coord
	obstacles map[Coord]struct{}
	// obstacle coordinates in the order given, duplicates removed
	obstacleList []Coord
}

// Grid cell types
const (
	OBSTACLE = 'W'
	FREE     = 'o'
	START    = '-'
	GOAL     = '+'
)

// MaxGridSize bounds n so that a single solve stays cheap enough to serve synchronously.
const MaxGridSize = 64

var (
	// ErrGridSize is returned for a grid dimension outside [1, MaxGridSize].
	ErrGridSize = errors.New("invalid grid size")
	// ErrOutOfBounds is returned when a start, goal, or obstacle coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// NewGrid validates the inputs and returns the grid. This is the validation the solver
// itself never performs: the reinforcement package assumes every coordinate is in range.
func NewGrid(n int, start, goal Coord, obstacles []Coord) (*Grid, error) {
	if n < 1 || n > MaxGridSize {
		return nil, fmt.Errorf("%w: n=%d, must be in [1,%d]", ErrGridSize, n, MaxGridSize)
	}

	grid := &Grid{
		N:         n,
		Start:     start,
		Goal:      goal,
		obstacles: make(map[Coord]struct{}, len(obstacles)),
	}
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("%w: start %v", ErrOutOfBounds, start)
	}
	if !grid.InBounds(goal) {
		return nil, fmt.Errorf("%w: goal %v", ErrOutOfBounds, goal)
	}

	for _, obs := range obstacles {
		if !grid.InBounds(obs) {
			return nil, fmt.Errorf("%w: obstacle %v", ErrOutOfBounds, obs)
		}
		// The goal wins over an obstacle listed on the same cell.
		if _, seen := grid.obstacles[obs]; seen || obs == goal {
			continue
		}
		grid.obstacles[obs] = struct{}{}
		grid.obstacleList = append(grid.obstacleList, obs)
	}

	return grid, nil
}

// InBounds reports whether c lies within [0,n)².
func (grid *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < grid.N && c.Col >= 0 && c.Col < grid.N
}

// IsObstacle reports whether c is one of the grid's obstacles.
func (grid *Grid) IsObstacle(c Coord) bool {
	_, ok := grid.obstacles[c]
	return ok
}

// Obstacles returns the distinct obstacle cells in the order they were given.
func (grid *Grid) Obstacles() []Coord {
	out := make([]Coord, len(grid.obstacleList))
	copy(out, grid.obstacleList)
	return out
}

// Classify returns the cell type of c. An obstacle on the start cell wins over the start.
func (grid *Grid) Classify(c Coord) rune {
	switch {
	case c == grid.Goal:
		return GOAL
	case grid.IsObstacle(c):
		return OBSTACLE
	case c == grid.Start:
		return START
	default:
		return FREE
	}
}

// Clamp bounds both coordinates of c independently to [0, n-1]; the grid edge acts as a wall.
func (grid *Grid) Clamp(c Coord) Coord {
	return Coord{
		Row: clamp(c.Row, 0, grid.N-1),
		Col: clamp(c.Col, 0, grid.N-1),
	}
}

// Move returns the clamped cell reached by taking action from c, ignoring obstacles.
func (grid *Grid) Move(c Coord, action Action) Coord {
	di, dj := action.Delta()
	return grid.Clamp(Coord{Row: c.Row + di, Col: c.Col + dj})
}

// Successor returns the deterministic successor of taking action in c: the clamped move,
// or c itself when the move would land on an obstacle.
func (grid *Grid) Successor(c Coord, action Action) Coord {
	target := grid.Move(c, action)
	if grid.IsObstacle(target) {
		return c
	}
	return target
}

// Visit calls fn for every cell of the grid in row-major order.
func (grid *Grid) Visit(fn func(c Coord)) {
	for i := 0; i < grid.N; i++ {
		for j := 0; j < grid.N; j++ {
			fn(Coord{Row: i, Col: j})
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
