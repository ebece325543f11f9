package reinforcement

import (
	"math"

	. "gridnav/models"
)

// ExtractPolicy derives the policy matrix from converged values. The goal and obstacles
// get their terminal markers, the start cell gets StartDirection, and every other cell
// gets the action with the greatest one-step lookahead value. Lookahead uses the same
// formula as the sweeps, goal bonus included. Comparison is strict, so the first
// action in enumeration order wins ties.
func ExtractPolicy(
	grid *Grid,
	values, rewards [][]float64,
	cfg Config,
) (policy [][]string) {
	policy = make([][]string, grid.N)
	for i := range policy {
		policy[i] = make([]string, grid.N)
	}

	grid.Visit(func(c Coord) {
		var symbol string
		switch {
		case c == grid.Goal:
			symbol = GoalMarker
		case grid.IsObstacle(c):
			symbol = ObstacleMarker
		case c == grid.Start:
			symbol = StartDirection(grid).Symbol()
		default:
			symbol = greedyAction(grid, rewards, values, cfg, c).Symbol()
		}
		policy[c.Row][c.Col] = symbol
	})
	return
}

func greedyAction(
	grid *Grid,
	rewards, values [][]float64,
	cfg Config,
	c Coord,
) (best Action) {
	bestVal := math.Inf(-1)
	for _, action := range Actions {
		if val := actionValue(grid, rewards, values, cfg, c, action); val > bestVal {
			bestVal = val
			best = action
		}
	}
	return
}

// StartDirection points the start cell toward the goal along the axis of greater distance,
// horizontally on a tie. It is not value driven. If that move (after clamping) would hit
// an obstacle, the remaining actions are tried in enumeration order and the first whose
// clamped target is not an obstacle is returned. A start fully surrounded by obstacles
// gets the colliding direction back.
// NOTE: a clamped target equal to the start itself counts as "not an obstacle", so a
// start on the edge may be pointed into the wall.
func StartDirection(grid *Grid) Action {
	start, goal := grid.Start, grid.Goal

	var preferred Action
	if absInt(start.Row-goal.Row) > absInt(start.Col-goal.Col) {
		preferred = Up
		if start.Row < goal.Row {
			preferred = Down
		}
	} else {
		preferred = Left
		if start.Col < goal.Col {
			preferred = Right
		}
	}

	if !grid.IsObstacle(grid.Move(start, preferred)) {
		return preferred
	}

	for _, action := range Actions {
		if action == preferred {
			continue
		}
		if !grid.IsObstacle(grid.Move(start, action)) {
			return action
		}
	}
	return preferred
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
