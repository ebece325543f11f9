package models

// Action is one of the four unit moves. The declaration order is the enumeration order
// used everywhere actions are scanned, and so decides ties: Up, Down, Left, Right.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// Actions is the fixed-order action table.
var Actions = [...]Action{Up, Down, Left, Right}

// Terminal policy markers.
const (
	GoalMarker     = "E"
	ObstacleMarker = "X"
)

var actionDeltas = [...][2]int{
	Up:    {-1, 0},
	Down:  {1, 0},
	Left:  {0, -1},
	Right: {0, 1},
}

var actionSymbols = [...]string{
	Up:    "↑",
	Down:  "↓",
	Left:  "←",
	Right: "→",
}

// Delta returns the (row, col) unit displacement of the action.
func (a Action) Delta() (di, dj int) {
	d := actionDeltas[a]
	return d[0], d[1]
}

// Symbol returns the arrow used for the action in policy matrices.
func (a Action) Symbol() string {
	return actionSymbols[a]
}

func (a Action) String() string {
	switch a {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// ParseSymbol is the inverse of Symbol.
func ParseSymbol(symbol string) (Action, bool) {
	for _, a := range Actions {
		if a.Symbol() == symbol {
			return a, true
		}
	}
	return 0, false
}
