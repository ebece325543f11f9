/*
Gridnav computes optimal navigation policies over a square grid with a start cell, a goal
cell and impassable obstacles, by value iteration over the deterministic MDP of the grid.
It serves a single page that streams the value function as it converges, plus a JSON
endpoint returning the converged value and policy matrices. Each solve is a pure function
of its request; nothing is kept between requests other than metrics.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridnav/models"
	"gridnav/reinforcement"
	"gridnav/server"
	"gridnav/server/fastview"
)

var (
	dbg        = flag.Bool("debug", false, "debug mode")
	demo       = flag.Bool("demo", false, "solve the demo grid, print it to the console, and exit")
	host       = flag.String("host", "", "The host ip")
	port       = flag.String("port", "8080", "The host port")
	configPath = flag.String("config", "./config.yaml", "path to the solver config; defaults are used if it does not exist")
)

// The grid solved by -demo.
var (
	demoStart     = models.Coord{Row: 0, Col: 0}
	demoGoal      = models.Coord{Row: 5, Col: 5}
	demoObstacles = []models.Coord{
		{Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 3},
		{Row: 3, Col: 2}, {Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 3, Col: 5},
	}
)

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, falling back to the defaults if there is none.
func loadConfig(path string, logger *slog.Logger) (*reinforcement.SolverConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("config not found, using defaults", "path", path)
		return &reinforcement.SolverConfig{}, nil
	}
	return reinforcement.FromYaml(path)
}

func runDemo(cfg reinforcement.Config) error {
	grid, err := models.NewGrid(6, demoStart, demoGoal, demoObstacles)
	if err != nil {
		return err
	}

	result := reinforcement.Solve(grid, cfg)
	models.ShowGrid(os.Stdout, grid)
	models.ShowValues(os.Stdout, result.Values)
	models.ShowPolicy(os.Stdout, result.Policy)
	fmt.Printf("sweeps: %d converged: %t\n", result.Sweeps, result.Converged)
	return nil
}

func runApp() (err error) {
	flag.Parse()
	logger := newLogger(*dbg)
	slog.SetDefault(logger)

	var fileConfig *reinforcement.SolverConfig
	if fileConfig, err = loadConfig(*configPath, logger); err != nil {
		return
	}
	solverConfig := fileConfig.Config()
	if err = solverConfig.Validate(); err != nil {
		return
	}
	logger.Debug("solver config", "config", fmt.Sprintf("%+v", solverConfig))

	if *demo {
		return runDemo(solverConfig)
	}

	var shutdownTimeout, pubResolution time.Duration
	if shutdownTimeout, err = fileConfig.GetDurationOrDefault("shutdownTimeout", 5*time.Second); err != nil {
		return
	}
	if pubResolution, err = fileConfig.GetDurationOrDefault("publishResolution", fastview.DefaultPubResolution); err != nil {
		return
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()

	var srv *server.Server
	if srv, err = server.NewServer(server.Options{
		Addr:            *host + ":" + *port,
		Solver:          solverConfig,
		Logger:          logger,
		PubResolution:   pubResolution,
		ShutdownTimeout: shutdownTimeout,
	}); err != nil {
		return
	}

	return srv.Serve(appCtx)
}

func main() {
	if err := runApp(); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}
