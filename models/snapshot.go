package models

// Snapshot is the progress of a solve after some sweep, as published to live views.
// Policy is only set on the final snapshot, once the values have converged or the
// sweep cap was reached.
type Snapshot struct {
	Sweep     int
	Delta     float64
	Values    [][]float64
	Policy    [][]string
	Final     bool
	Converged bool
}
