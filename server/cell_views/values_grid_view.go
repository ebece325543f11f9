package cell_views

import (
	"fmt"
	"html/template"

	"gridnav/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the cell height/width in pixels.
const cellDim = 64

// ValuesGrid shows the grid with each cell's current value and, once known, its policy arrow.
type ValuesGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewValuesGrid(
	done <-chan struct{},
	frames <-chan Frame,
) (vg *ValuesGrid) {
	vg = &ValuesGrid{id: "valuesgrid"}
	vg.updates = channerics.Convert(done, frames, vg.onUpdate)
	return
}

func (vg *ValuesGrid) Updates() <-chan []fastview.EleUpdate {
	return vg.updates
}

func valueTextId(cell Cell) string {
	return fmt.Sprintf("%d-%d-value-text", cell.Y, cell.X)
}

func arrowTextId(cell Cell) string {
	return fmt.Sprintf("%d-%d-policy-arrow", cell.Y, cell.X)
}

// Returns the set of view updates needed for the view to reflect the frame.
func (vg *ValuesGrid) onUpdate(frame Frame) (ops []fastview.EleUpdate) {
	for _, row := range frame.Cells {
		for _, cell := range row {
			ops = append(ops, fastview.EleUpdate{
				EleId: valueTextId(cell),
				Ops: []fastview.Op{
					{Key: "textContent", Value: fmt.Sprintf("%.2f", cell.Value)},
				},
			})
			if cell.Arrow == "" {
				continue
			}
			ops = append(ops, fastview.EleUpdate{
				EleId: arrowTextId(cell),
				Ops: []fastview.Op{
					{Key: "textContent", Value: cell.Arrow},
				},
			})
		}
	}
	return
}

// Parse defines the svg grid template, whose data is a Frame.
func (vg *ValuesGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = vg.id
	_, err = t.Funcs(template.FuncMap{
		"valueTextId": valueTextId,
		"arrowTextId": arrowTextId,
	}).Parse(
		`{{ define "` + name + `" }}
		<div id="state_values">
			{{ $cell_width := ` + fmt.Sprintf("%d", cellDim) + ` }}
			{{ $cell_height := $cell_width }}
			{{ $n := len .Cells }}
			{{ $half := div $cell_width 2 }}
			<svg id="` + vg.id + `"
				width="{{ add (mult $cell_width $n) 1 }}px"
				height="{{ add (mult $cell_height $n) 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $row := .Cells }}
					{{ range $cell := $row }}
					<g>
						<rect
							x="{{ mult $cell.X $cell_width }}"
							y="{{ mult $cell.Y $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="{{ $cell.Fill }}"
							stroke="black"
							stroke-width="1"/>
						<text id="{{ valueTextId $cell }}"
							x="{{ add (mult $cell.X $cell_width) $half }}"
							y="{{ add (mult $cell.Y $cell_height) (sub $half 10) }}"
							fill="blue"
							dominant-baseline="text-top" text-anchor="middle"
							>{{ printf "%.2f" $cell.Value }}</text>
						<text id="{{ arrowTextId $cell }}"
							x="{{ add (mult $cell.X $cell_width) $half }}"
							y="{{ add (mult $cell.Y $cell_height) (add $half 14) }}"
							dominant-baseline="central" text-anchor="middle"
							>{{ $cell.Arrow }}</text>
					</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
