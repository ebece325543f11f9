package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gridnav/models"
)

// ComputeRequest is the body of POST /compute and the first websocket message of /ws.
// Coordinates are [row, col] pairs.
type ComputeRequest struct {
	N         int     `json:"n"`
	Start     []int   `json:"start"`
	End       []int   `json:"end"`
	Obstacles [][]int `json:"obstacles"`
}

// ComputeResponse is the body of a successful POST /compute.
type ComputeResponse struct {
	Id        string      `json:"id"`
	Values    [][]float64 `json:"value_matrix"`
	Policy    [][]string  `json:"policy_matrix"`
	Sweeps    int         `json:"sweeps"`
	Converged bool        `json:"converged"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrMalformedCoord is returned for a coordinate that is not a [row, col] pair.
var ErrMalformedCoord = errors.New("malformed coordinate")

// Grid validates the request and returns its grid.
func (req *ComputeRequest) Grid() (*models.Grid, error) {
	start, err := toCoord("start", req.Start)
	if err != nil {
		return nil, err
	}
	goal, err := toCoord("end", req.End)
	if err != nil {
		return nil, err
	}

	obstacles := make([]models.Coord, 0, len(req.Obstacles))
	for i, pair := range req.Obstacles {
		obs, err := toCoord(fmt.Sprintf("obstacles[%d]", i), pair)
		if err != nil {
			return nil, err
		}
		obstacles = append(obstacles, obs)
	}

	return models.NewGrid(req.N, start, goal, obstacles)
}

func toCoord(field string, pair []int) (models.Coord, error) {
	if len(pair) != 2 {
		return models.Coord{}, fmt.Errorf("%w: %s must be [row, col], got %v", ErrMalformedCoord, field, pair)
	}
	return models.Coord{Row: pair[0], Col: pair[1]}, nil
}

// parseQuery builds a request from the page form: n=5&start=0,0&goal=4,4&obstacles=1,1;2,3
func parseQuery(n, start, goal, obstacles string) (*ComputeRequest, error) {
	size, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil {
		return nil, fmt.Errorf("n: %w", err)
	}

	req := &ComputeRequest{N: size, Obstacles: [][]int{}}
	if req.Start, err = parsePair(start); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if req.End, err = parsePair(goal); err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	for _, field := range strings.Split(obstacles, ";") {
		if strings.TrimSpace(field) == "" {
			continue
		}
		pair, err := parsePair(field)
		if err != nil {
			return nil, fmt.Errorf("obstacles: %w", err)
		}
		req.Obstacles = append(req.Obstacles, pair)
	}
	return req, nil
}

func parsePair(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCoord, s)
	}
	pair := make([]int, 2)
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCoord, s)
		}
		pair[i] = v
	}
	return pair, nil
}

func formatPair(pair []int) string {
	if len(pair) != 2 {
		return ""
	}
	return fmt.Sprintf("%d,%d", pair[0], pair[1])
}

func formatPairs(pairs [][]int) string {
	formatted := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		formatted = append(formatted, formatPair(pair))
	}
	return strings.Join(formatted, ";")
}
