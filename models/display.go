package models

import (
	"fmt"
	"io"
)

// Console views of a solved grid, used by the -demo mode. Unlike the svg views these
// print row 0 at the top, matching the matrix orientation of the solver.

// ShowGrid prints the cell types, for visual reference.
func ShowGrid(w io.Writer, grid *Grid) {
	for i := 0; i < grid.N; i++ {
		for j := 0; j < grid.N; j++ {
			fmt.Fprintf(w, "%c ", grid.Classify(Coord{Row: i, Col: j}))
		}
		fmt.Fprintln(w)
	}
}

// ShowValues prints the value matrix and its total.
func ShowValues(w io.Writer, values [][]float64) {
	fmt.Fprintln(w, "Values:")
	total := 0.0
	for _, row := range values {
		fmt.Fprint(w, " ")
		for _, val := range row {
			fmt.Fprintf(w, "%7.2f ", val)
			total += val
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total: %.2f\n", total)
}

// ShowPolicy prints the policy matrix.
func ShowPolicy(w io.Writer, policy [][]string) {
	fmt.Fprintln(w, "Policy:")
	for _, row := range policy {
		fmt.Fprint(w, " ")
		for _, symbol := range row {
			fmt.Fprintf(w, "%s ", symbol)
		}
		fmt.Fprintln(w)
	}
}
