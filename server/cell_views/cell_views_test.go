package cell_views

import (
	"bytes"
	"html/template"
	"testing"

	"gridnav/models"
	"gridnav/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

var testFuncs = template.FuncMap{
	"add":  func(i, j int) int { return i + j },
	"sub":  func(i, j int) int { return i - j },
	"mult": func(i, j int) int { return i * j },
	"div":  func(i, j int) int { return i / j },
}

func testGrid() *models.Grid {
	grid, err := models.NewGrid(2, models.Coord{Row: 0, Col: 0}, models.Coord{Row: 1, Col: 1},
		[]models.Coord{{Row: 0, Col: 1}})
	if err != nil {
		panic(err)
	}
	return grid
}

func TestConvert(t *testing.T) {
	Convey("When a snapshot is converted", t, func() {
		grid := testGrid()
		snapshot := models.Snapshot{
			Sweep:  3,
			Delta:  0.25,
			Values: [][]float64{{1, -10}, {2, 20}},
		}

		frame := Convert(grid, snapshot)
		So(frame.Sweep, ShouldEqual, 3)
		So(frame.Final, ShouldBeFalse)
		So(frame.Cells[1][0], ShouldResemble, Cell{X: 0, Y: 1, Value: 2, Fill: "white"})
		So(frame.Cells[0][1].Fill, ShouldEqual, "dimgray")
		So(frame.Cells[1][1].Fill, ShouldEqual, "lightgreen")
		So(frame.Cells[0][0].Fill, ShouldEqual, "lightblue")
		So(frame.Cells[0][0].Arrow, ShouldBeEmpty)

		Convey("With a policy, the arrows are set", func() {
			snapshot.Policy = [][]string{{"↓", "X"}, {"→", "E"}}
			snapshot.Final = true
			frame := Convert(grid, snapshot)
			So(frame.Cells[0][0].Arrow, ShouldEqual, "↓")
			So(frame.Cells[1][1].Arrow, ShouldEqual, "E")
		})
	})
}

func TestViews(t *testing.T) {
	Convey("When the views are updated", t, func() {
		grid := testGrid()
		frame := Convert(grid, models.Snapshot{Sweep: 1, Values: [][]float64{{1.234, -10}, {2, 20}}})

		Convey("The values grid updates values, and arrows only once known", func() {
			vg := &ValuesGrid{id: "valuesgrid"}
			ops := vg.onUpdate(frame)
			So(len(ops), ShouldEqual, 4)
			So(ops[0], ShouldResemble, fastview.EleUpdate{
				EleId: "0-0-value-text",
				Ops:   []fastview.Op{{Key: "textContent", Value: "1.23"}},
			})

			frame.Cells[0][0].Arrow = "↓"
			ops = vg.onUpdate(frame)
			So(len(ops), ShouldEqual, 5)
			So(ops[1].EleId, ShouldEqual, "0-0-policy-arrow")
		})

		Convey("The progress view reports the solve status", func() {
			So(status(Frame{}), ShouldEqual, "idle")
			So(status(Frame{Sweep: 2}), ShouldEqual, "solving")
			So(status(Frame{Sweep: 9, Final: true, Converged: true}), ShouldEqual, "converged")
			So(status(Frame{Sweep: 1000, Final: true}), ShouldEqual, "sweep cap reached")

			pv := &Progress{id: "progress"}
			ops := pv.onUpdate(frame)
			So(ops[0].Ops[0].Value, ShouldEqual, "1")
			So(ops[2].Ops[0].Value, ShouldEqual, "solving")
		})

		Convey("The templates render the initial frame", func() {
			t := template.New("root").Funcs(testFuncs)
			vg := &ValuesGrid{id: "valuesgrid"}
			name, err := vg.Parse(t)
			So(err, ShouldBeNil)

			buf := &bytes.Buffer{}
			So(t.ExecuteTemplate(buf, name, Initial(grid)), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, `id="1-1-value-text"`)
			So(buf.String(), ShouldContainSubstring, `fill="lightgreen"`)
		})
	})
}
