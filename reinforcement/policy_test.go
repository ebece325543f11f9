package reinforcement

import (
	"testing"

	. "gridnav/models"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSolve(t *testing.T) {
	Convey("When a grid is solved", t, func() {
		cfg := DefaultConfig()

		Convey("When there are no obstacles", func() {
			grid := mustGrid(3, Coord{Row: 0, Col: 0}, Coord{Row: 2, Col: 2})
			result := Solve(grid, cfg)

			So(result.Converged, ShouldBeTrue)
			So(result.Policy[2][2], ShouldEqual, GoalMarker)
			// Equal distances break toward the horizontal.
			So(result.Policy[0][0], ShouldEqual, "→")
			So(result.Policy[1][2], ShouldEqual, "↓")
			So(result.Policy[2][1], ShouldEqual, "→")
		})

		Convey("When an obstacle blocks the direct route", func() {
			grid := mustGrid(3, Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 2}, Coord{Row: 0, Col: 1})
			result := Solve(grid, cfg)

			So(result.Values[0][1], ShouldEqual, -10.0)
			So(result.Values[0][2], ShouldEqual, 20.0)
			So(result.Policy[0][1], ShouldEqual, ObstacleMarker)
			So(result.Policy[0][2], ShouldEqual, GoalMarker)
			So(result.Policy[1][2], ShouldEqual, "↑")
			So(result.Policy[1][1], ShouldEqual, "→")
			So(result.Policy[1][0], ShouldEqual, "→")
			So(result.Policy[2][2], ShouldEqual, "↑")
			// Right is blocked; up clamps back onto the start, which is not an obstacle.
			So(result.Policy[0][0], ShouldEqual, "↑")

			Convey("No greedy cell walks into the obstacle", func() {
				for i, row := range result.Policy {
					for j, symbol := range row {
						action, ok := ParseSymbol(symbol)
						if !ok || (Coord{Row: i, Col: j}) == grid.Start {
							continue
						}
						So(grid.Move(Coord{Row: i, Col: j}, action), ShouldNotResemble, Coord{Row: 0, Col: 1})
					}
				}
			})
		})

		Convey("When stepping onto the goal beats a higher valued neighbor only through the bonus", func() {
			grid := mustGrid(2, Coord{Row: 1, Col: 0}, Coord{Row: 1, Col: 1})
			result := Solve(grid, cfg)

			So(result.Values[0][1], ShouldAlmostEqual, 22.0, 1e-3)
			So(result.Policy[0][1], ShouldEqual, "↓")
		})

		Convey("When the start is the goal", func() {
			grid := mustGrid(2, Coord{Row: 1, Col: 1}, Coord{Row: 1, Col: 1})
			So(Solve(grid, cfg).Policy[1][1], ShouldEqual, GoalMarker)
		})

		Convey("When the start is an obstacle", func() {
			grid := mustGrid(2, Coord{Row: 0, Col: 0}, Coord{Row: 1, Col: 1}, Coord{Row: 0, Col: 0})
			So(Solve(grid, cfg).Policy[0][0], ShouldEqual, ObstacleMarker)
		})

		Convey("When solved twice", func() {
			grid := mustGrid(6, Coord{Row: 5, Col: 0}, Coord{Row: 0, Col: 5}, Coord{Row: 2, Col: 2}, Coord{Row: 3, Col: 3}, Coord{Row: 1, Col: 4})
			first := Solve(grid, cfg)
			second := Solve(grid, cfg)

			So(second, ShouldResemble, first)
			So(grid.Obstacles(), ShouldResemble, []Coord{{Row: 2, Col: 2}, {Row: 3, Col: 3}, {Row: 1, Col: 4}})
		})
	})
}

func TestStartDirection(t *testing.T) {
	Convey("When the start direction is chosen", t, func() {
		Convey("The axis with the larger distance wins", func() {
			So(StartDirection(mustGrid(5, Coord{Row: 0, Col: 0}, Coord{Row: 3, Col: 1})), ShouldEqual, Down)
			So(StartDirection(mustGrid(5, Coord{Row: 4, Col: 2}, Coord{Row: 0, Col: 3})), ShouldEqual, Up)
			So(StartDirection(mustGrid(5, Coord{Row: 2, Col: 4}, Coord{Row: 1, Col: 0})), ShouldEqual, Left)
			So(StartDirection(mustGrid(5, Coord{Row: 2, Col: 0}, Coord{Row: 3, Col: 4})), ShouldEqual, Right)
		})

		Convey("Ties go horizontal", func() {
			So(StartDirection(mustGrid(5, Coord{Row: 0, Col: 0}, Coord{Row: 2, Col: 2})), ShouldEqual, Right)
			So(StartDirection(mustGrid(5, Coord{Row: 2, Col: 2}, Coord{Row: 0, Col: 0})), ShouldEqual, Left)
		})

		Convey("A blocked direction falls back in enumeration order", func() {
			grid := mustGrid(5, Coord{Row: 2, Col: 2}, Coord{Row: 2, Col: 4}, Coord{Row: 2, Col: 3}, Coord{Row: 1, Col: 2})
			So(StartDirection(grid), ShouldEqual, Down)
		})

		Convey("A fully surrounded start keeps the colliding direction", func() {
			grid := mustGrid(3, Coord{Row: 1, Col: 1}, Coord{Row: 2, Col: 2},
				Coord{Row: 0, Col: 1}, Coord{Row: 2, Col: 1}, Coord{Row: 1, Col: 0}, Coord{Row: 1, Col: 2})
			So(StartDirection(grid), ShouldEqual, Right)
			So(Solve(grid, DefaultConfig()).Policy[1][1], ShouldEqual, "→")
		})
	})
}
