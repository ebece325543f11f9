package reinforcement

import (
	. "gridnav/models"
)

// Result is the output of a single solve. Every matrix is freshly allocated per solve
// and indexed [row][col].
type Result struct {
	Values    [][]float64
	Policy    [][]string
	Rewards   [][]float64
	Sweeps    int
	Converged bool
}

// Solve computes the optimal values and policy of the grid: rewards, then value
// iteration, then policy extraction. It holds no state across calls, and the grid is
// assumed valid (see models.NewGrid).
func Solve(grid *Grid, cfg Config) *Result {
	return SolveWithProgress(grid, cfg, nil)
}

// SolveWithProgress is Solve with a per-sweep progress hook; onSweep may be nil.
func SolveWithProgress(grid *Grid, cfg Config, onSweep SweepFunc) *Result {
	rewards := BuildRewards(grid, cfg)
	values, sweeps, converged := ValueIteration(grid, rewards, cfg, onSweep)
	return &Result{
		Values:    values,
		Policy:    ExtractPolicy(grid, values, rewards, cfg),
		Rewards:   rewards,
		Sweeps:    sweeps,
		Converged: converged,
	}
}
