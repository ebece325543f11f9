package root_view

import (
	"context"
	"html/template"
	"time"

	"gridnav/models"
	"gridnav/server/cell_views"
	"gridnav/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// RootView is the main page: the container for all the view components and the
// wiring for their channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView creates the main page and the views it contains for a single grid,
// fed by the snapshots of its solve. All channels close once snapshots closes or
// ctx is cancelled.
func NewRootView(
	ctx context.Context,
	grid *models.Grid,
	snapshots <-chan models.Snapshot,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[models.Snapshot, cell_views.Frame]().
		WithContext(ctx).
		WithModel(snapshots, cell_views.NewConverter(grid)).
		WithView(func(
			done <-chan struct{},
			frames <-chan cell_views.Frame) fastview.ViewComponent {
			return cell_views.NewValuesGrid(done, frames)
		}).
		WithView(func(
			done <-chan struct{},
			frames <-chan cell_views.Frame) fastview.ViewComponent {
			return cell_views.NewProgress(done, frames)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with the form and websocket bootstrap code,
// and returns its name. It also sets up the func-map that child components depend on.
// The page data is a Page.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	var bodySpec string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec += `{{ template "` + tname + `" .Frame }}`
	}

	name = "mainpage"
	_, err = rt.Parse(`{{ define "` + name + `" }}` + pageHead + `
		<body>
			<form method="GET" action="/">
				n <input name="n" size="2" value="{{ .Form.N }}">
				start <input name="start" size="4" value="{{ .Form.Start }}">
				goal <input name="goal" size="4" value="{{ .Form.Goal }}">
				obstacles <input name="obstacles" size="30" value="{{ .Form.Obstacles }}">
				<input type="submit" value="Solve">
			</form>
			{{ if .Error }}<p id="error" style="color:red;">{{ .Error }}</p>{{ end }}
			<div id="request" data-request="{{ .RequestJSON }}"></div>
			` + bodySpec + `
		</body></html>
	{{ end }}`)
	return
}

// Page is the data of the main page template.
type Page struct {
	Form  Form
	Frame cell_views.Frame
	// RequestJSON is sent as-is over the websocket to start the live solve; empty for none.
	RequestJSON string
	Error       string
}

// Form echoes the grid fields back into the page's form.
type Form struct {
	N                      int
	Start, Goal, Obstacles string
}

// The bootstrap code by which the page requests a solve and the server pushes
// element updates to the views via websocket.
const pageHead = `
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				window.onload = function () {
					const request = document.getElementById("request").dataset.request;
					if (!request) {
						return;
					}
					const ws = new WebSocket("ws://" + window.location.host + "/ws");
					ws.onopen = function (event) {
						ws.send(request);
					};

					ws.onerror = function (event) {
						console.log('WebSocket error: ', event);
					};

					ws.onmessage = function (event) {
						const items = JSON.parse(event.data);
						if (!Array.isArray(items)) {
							console.log(items);
							return;
						}
						for (const update of items) {
							const ele = document.getElementById(update.EleId);
							if (!ele) {
								continue;
							}
							for (const op of update.Ops) {
								if (op.Key === "textContent") {
									ele.textContent = op.Value;
								} else {
									ele.setAttribute(op.Key, op.Value);
								}
							}
						}
					};
				};
			</script>
		</head>`

// fanIn aggregates the views' ele-update channels into a single batched channel.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		time.Millisecond*20)
}

// batchify batches within the passed time frame before sending, over-writing previously
// received values for the same ele-id. Every batch carries the latest value of every
// element seen so far, so any batch supersedes all earlier ones and downstream may drop
// all but the latest. Unsent changes are flushed when the source closes.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		var order []string
		dirty := false
		send := func() bool {
			select {
			case output <- orderedVals(data, order):
				dirty = false
				return true
			case <-done:
				return false
			}
		}

		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				if _, ok := data[update.EleId]; !ok {
					order = append(order, update.EleId)
				}
				data[update.EleId] = update
				dirty = true
			}

			if time.Since(last) > rate && dirty {
				if !send() {
					return
				}
				last = time.Now()
			}
		}

		if dirty {
			send()
		}
	}()

	return output
}

// orderedVals returns the map's values in first-seen key order.
func orderedVals(mp map[string]fastview.EleUpdate, order []string) []fastview.EleUpdate {
	sliced := make([]fastview.EleUpdate, 0, len(order))
	for _, key := range order {
		sliced = append(sliced, mp[key])
	}
	return sliced
}
