package reinforcement

import (
	"math"

	. "gridnav/models"
)

// BuildRewards returns the reward matrix of the grid: every cell gets the step reward,
// then the obstacle penalty is applied, then the goal reward. Applying the goal last
// means the goal wins if it is also listed as an obstacle.
func BuildRewards(grid *Grid, cfg Config) (rewards [][]float64) {
	rewards = newMatrix(grid.N, cfg.StepReward)
	for _, obs := range grid.Obstacles() {
		rewards[obs.Row][obs.Col] = cfg.ObstacleReward
	}
	rewards[grid.Goal.Row][grid.Goal.Col] = cfg.GoalReward
	return
}

// SweepFunc is a progress hook called synchronously after every sweep with the sweep
// count, that sweep's largest value change, and a copy of the values. It should
// return quickly; the solver does not proceed until it does.
type SweepFunc func(sweep int, delta float64, values [][]float64)

// ValueIteration runs in-place Bellman-optimality sweeps in row-major order until the
// largest change of a sweep falls below cfg.Theta, or cfg.MaxIter sweeps have run.
// Updates are written immediately, so later cells of a sweep read values already
// updated earlier in the same sweep (Gauss-Seidel). Goal and obstacle cells are pinned
// to their rewards and do not count toward the sweep's delta.
// Non-convergence is not an error: the values at the cap are returned with converged=false.
// onSweep may be nil.
func ValueIteration(
	grid *Grid,
	rewards [][]float64,
	cfg Config,
	onSweep SweepFunc,
) (values [][]float64, sweeps int, converged bool) {
	values = newMatrix(grid.N, 0)

	for {
		delta := 0.0
		sweeps++
		grid.Visit(func(c Coord) {
			if c == grid.Goal {
				values[c.Row][c.Col] = rewards[c.Row][c.Col]
				return
			}
			if grid.IsObstacle(c) {
				values[c.Row][c.Col] = rewards[c.Row][c.Col]
				return
			}

			old := values[c.Row][c.Col]
			best := math.Inf(-1)
			for _, action := range Actions {
				best = math.Max(best, actionValue(grid, rewards, values, cfg, c, action))
			}
			values[c.Row][c.Col] = best
			delta = math.Max(delta, math.Abs(old-best))
		})

		if onSweep != nil {
			onSweep(sweeps, delta, copyMatrix(values))
		}

		if delta < cfg.Theta {
			converged = true
			return
		}
		if sweeps >= cfg.MaxIter {
			return
		}
	}
}

// actionValue is the one-step lookahead value of taking action in c under the current values.
// Landing on the goal adds the goal bonus to the goal's value before discounting.
func actionValue(
	grid *Grid,
	rewards, values [][]float64,
	cfg Config,
	c Coord,
	action Action,
) float64 {
	target := grid.Successor(c, action)
	successorVal := values[target.Row][target.Col]
	if target == grid.Goal {
		successorVal += cfg.GoalBonus
	}
	return rewards[c.Row][c.Col] + cfg.Gamma*successorVal
}

func newMatrix(n int, fill float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		if fill != 0 {
			for j := range m[i] {
				m[i][j] = fill
			}
		}
	}
	return m
}

func copyMatrix(src [][]float64) [][]float64 {
	dst := make([][]float64, len(src))
	for i := range src {
		dst[i] = append([]float64(nil), src[i]...)
	}
	return dst
}
