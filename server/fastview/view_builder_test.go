package fastview

import (
	"context"
	"fmt"
	"html/template"
	"testing"

	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

// testView publishes one update per view-model string.
type testView struct {
	id      string
	updates <-chan []EleUpdate
}

func newTestView(id string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vms <-chan string) ViewComponent {
		tv := &testView{id: id}
		tv.updates = channerics.Convert(done, vms, func(vm string) []EleUpdate {
			return []EleUpdate{{EleId: tv.id, Ops: []Op{{Key: "textContent", Value: vm}}}}
		})
		return tv
	}
}

func (tv *testView) Updates() <-chan []EleUpdate {
	return tv.updates
}

func (tv *testView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + tv.id + `" }}<p id="` + tv.id + `">{{ . }}</p>{{ end }}`)
	return tv.id, err
}

func TestViewBuilder(t *testing.T) {
	Convey("When views are built", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Convey("When no views were added", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(make(chan int), func(x int) string { return fmt.Sprint(x) }).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("When no model was given", func() {
			_, err := NewViewBuilder[int, string]().
				WithView(newTestView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("When the builder succeeds, every view receives every converted item", func() {
			input := make(chan int)
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, func(x int) string { return fmt.Sprintf("#%d", x) }).
				WithView(newTestView("a")).
				WithView(newTestView("b")).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)

			go func() {
				defer close(input)
				input <- 7
			}()

			merged := channerics.Merge(ctx.Done(), views[0].Updates(), views[1].Updates())
			got := map[string]string{}
			for updates := range merged {
				for _, update := range updates {
					got[update.EleId] = update.Ops[0].Value
				}
			}
			So(got, ShouldResemble, map[string]string{"a": "#7", "b": "#7"})
		})
	})
}
