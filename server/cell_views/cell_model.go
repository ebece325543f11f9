// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	"gridnav/models"
)

// Cell is the per-cell view-model of a grid snapshot, so that templates and view
// updates can be written against flat fields rather than the solver's matrices.
// As a rule of thumb, Cell fields should be immediately usable as view parameters.
// X is the column and Y the row, which is already the svg orientation: row 0 at the top.
type Cell struct {
	X, Y  int
	Value float64
	// Arrow is the policy symbol, empty until the policy is known.
	Arrow string
	Fill  string
}

// Frame is a converted snapshot: the cells plus the progress of the solve.
type Frame struct {
	Cells     [][]Cell
	Sweep     int
	Delta     float64
	Final     bool
	Converged bool
}

// NewConverter returns a function converting snapshots of the given grid into frames.
// The grid supplies the cell types, which snapshots do not carry.
func NewConverter(grid *models.Grid) func(models.Snapshot) Frame {
	return func(snapshot models.Snapshot) Frame {
		return Convert(grid, snapshot)
	}
}

// Convert transforms a snapshot into a Frame for consumption by the views.
func Convert(grid *models.Grid, snapshot models.Snapshot) Frame {
	cells := make([][]Cell, grid.N)
	grid.Visit(func(c models.Coord) {
		if cells[c.Row] == nil {
			cells[c.Row] = make([]Cell, grid.N)
		}
		cell := Cell{
			X:     c.Col,
			Y:     c.Row,
			Value: snapshot.Values[c.Row][c.Col],
			Fill:  getFill(grid.Classify(c)),
		}
		if snapshot.Policy != nil {
			cell.Arrow = snapshot.Policy[c.Row][c.Col]
		}
		cells[c.Row][c.Col] = cell
	})

	return Frame{
		Cells:     cells,
		Sweep:     snapshot.Sweep,
		Delta:     snapshot.Delta,
		Final:     snapshot.Final,
		Converged: snapshot.Converged,
	}
}

// Initial returns the frame shown before any solve: zero values, no policy.
func Initial(grid *models.Grid) Frame {
	values := make([][]float64, grid.N)
	for i := range values {
		values[i] = make([]float64, grid.N)
	}
	return Convert(grid, models.Snapshot{Values: values})
}

func getFill(cellType rune) (fill string) {
	switch cellType {
	case models.OBSTACLE:
		fill = "dimgray"
	case models.FREE:
		fill = "white"
	case models.START:
		fill = "lightblue"
	case models.GOAL:
		fill = "lightgreen"
	}
	return
}
