package cell_views

import (
	"fmt"
	"html/template"

	"gridnav/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Progress shows the sweep count, the last sweep's delta, and the solve status.
type Progress struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewProgress(
	done <-chan struct{},
	frames <-chan Frame,
) (pv *Progress) {
	pv = &Progress{id: "progress"}
	pv.updates = channerics.Convert(done, frames, pv.onUpdate)
	return
}

func (pv *Progress) Updates() <-chan []fastview.EleUpdate {
	return pv.updates
}

func status(frame Frame) string {
	switch {
	case !frame.Final && frame.Sweep == 0:
		return "idle"
	case !frame.Final:
		return "solving"
	case frame.Converged:
		return "converged"
	default:
		return "sweep cap reached"
	}
}

func (pv *Progress) onUpdate(frame Frame) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		{
			EleId: pv.id + "-sweep",
			Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%d", frame.Sweep)}},
		},
		{
			EleId: pv.id + "-delta",
			Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%.6f", frame.Delta)}},
		},
		{
			EleId: pv.id + "-status",
			Ops:   []fastview.Op{{Key: "textContent", Value: status(frame)}},
		},
	}
}

func (pv *Progress) Parse(
	t *template.Template,
) (name string, err error) {
	name = pv.id
	_, err = t.Funcs(template.FuncMap{"status": status}).Parse(
		`{{ define "` + name + `" }}
		<div id="` + pv.id + `">
			sweep <span id="` + pv.id + `-sweep">{{ .Sweep }}</span>,
			delta <span id="` + pv.id + `-delta">{{ printf "%.6f" .Delta }}</span>,
			<span id="` + pv.id + `-status">{{ status . }}</span>
		</div>
		{{ end }}`)
	return
}
