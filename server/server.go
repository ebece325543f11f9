package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gridnav/models"
	"gridnav/reinforcement"
	"gridnav/server/cell_views"
	"gridnav/server/fastview"
	"gridnav/server/root_view"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Maximum request body size for /compute.
	maxBodySize = 1 << 20
	// Time allowed for the peer to send its compute request after the upgrade.
	requestWait = 5 * time.Second
	// Time allowed to write an error message to the peer.
	writeWait = 1 * time.Second
)

var upgrader = websocket.Upgrader{}

// The default page grid, shown when / is requested without a form.
var defaultRequest = ComputeRequest{
	N:         5,
	Start:     []int{0, 0},
	End:       []int{4, 4},
	Obstacles: [][]int{{1, 1}, {2, 2}, {3, 1}},
}

// Options configure a Server.
type Options struct {
	Addr   string
	Solver reinforcement.Config
	Logger *slog.Logger
	// PubResolution is the minimum interval between websocket publications.
	PubResolution time.Duration
	// ShutdownTimeout bounds the graceful shutdown once the serve context is cancelled.
	ShutdownTimeout time.Duration
}

// Server is the transport around the solver: the single page, the JSON compute
// endpoint, the live websocket solve, and the metrics and stats endpoints.
// Every solve is independent; the server keeps no solve results between requests.
type Server struct {
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
	stats   *Stats
	router  *mux.Router
}

// NewServer validates the solver config and builds the routes.
func NewServer(opts Options) (*Server, error) {
	if err := opts.Solver.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PubResolution <= 0 {
		opts.PubResolution = fastview.DefaultPubResolution
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	server := &Server{
		opts:    opts,
		logger:  opts.Logger,
		metrics: NewMetrics(),
		stats:   NewStats(),
		router:  mux.NewRouter(),
	}

	server.router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	server.router.HandleFunc("/compute", server.serveCompute).Methods(http.MethodPost)
	server.router.HandleFunc("/ws", server.serveWebsocket).Methods(http.MethodGet)
	server.router.HandleFunc("/stats", server.serveStats).Methods(http.MethodGet)
	server.router.Handle("/metrics", promhttp.HandlerFor(
		server.metrics.Registry(),
		promhttp.HandlerOpts{},
	)).Methods(http.MethodGet)

	return server, nil
}

// Handler returns the server's routes.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              server.opts.Addr,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.Info("starting server", "addr", server.opts.Addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("initiating graceful shutdown", "timeout", server.opts.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.opts.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	server.logger.Info("server stopped")
	return nil
}

// solve runs a single solve and records it.
func (server *Server) solve(
	endpoint string,
	id string,
	grid *models.Grid,
	onSweep reinforcement.SweepFunc,
) *reinforcement.Result {
	started := time.Now()
	result := reinforcement.SolveWithProgress(grid, server.opts.Solver, onSweep)
	elapsed := time.Since(started)

	server.metrics.recordSolve(endpoint, result, elapsed)
	server.stats.record(result.Sweeps, elapsed)
	server.logger.Info("solved",
		"id", id,
		"endpoint", endpoint,
		"n", grid.N,
		"obstacles", len(grid.Obstacles()),
		"sweeps", result.Sweeps,
		"converged", result.Converged,
		"elapsed", elapsed.String())
	return result
}

// serveCompute solves the posted grid and returns the value and policy matrices.
func (server *Server) serveCompute(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	req := &ComputeRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(req); err != nil {
		server.reject(w, "compute", id, fmt.Errorf("decode request: %w", err))
		return
	}

	grid, err := req.Grid()
	if err != nil {
		server.reject(w, "compute", id, err)
		return
	}

	result := server.solve("compute", id, grid, nil)
	writeJSON(w, http.StatusOK, &ComputeResponse{
		Id:        id,
		Values:    result.Values,
		Policy:    result.Policy,
		Sweeps:    result.Sweeps,
		Converged: result.Converged,
	})
}

func (server *Server) reject(w http.ResponseWriter, endpoint, id string, err error) {
	server.metrics.recordRejected(endpoint)
	server.logger.Warn("rejected request", "id", id, "endpoint", endpoint, "error", err)
	writeJSON(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.stats.Read())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// serveWebsocket runs a live solve: the peer sends one ComputeRequest, then the
// server publishes element updates for every sweep and the final policy, and closes.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Warn("upgrade failed", "id", id, "error", err)
		return
	}

	req := &ComputeRequest{}
	_ = ws.SetReadDeadline(time.Now().Add(requestWait))
	if err = ws.ReadJSON(req); err != nil {
		server.rejectWebsocket(ws, id, fmt.Errorf("decode request: %w", err))
		return
	}
	grid, err := req.Grid()
	if err != nil {
		server.rejectWebsocket(ws, id, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots := make(chan models.Snapshot)
	rootView, err := root_view.NewRootView(ctx, grid, snapshots)
	if err != nil {
		server.logger.Error("build views", "id", id, "error", err)
		_ = ws.Close()
		return
	}

	go func() {
		defer close(snapshots)
		publish := func(snapshot models.Snapshot) {
			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
			}
		}

		result := server.solve("ws", id, grid, func(sweep int, delta float64, values [][]float64) {
			publish(models.Snapshot{Sweep: sweep, Delta: delta, Values: values})
		})
		publish(models.Snapshot{
			Sweep:     result.Sweeps,
			Values:    result.Values,
			Policy:    result.Policy,
			Final:     true,
			Converged: result.Converged,
		})
	}()

	client := fastview.NewClient(ctx, ws, rootView.Updates(), server.opts.PubResolution)
	if err := client.Sync(); err != nil {
		server.logger.Warn("websocket client", "id", id, "error", err)
	}
}

func (server *Server) rejectWebsocket(ws *websocket.Conn, id string, err error) {
	server.metrics.recordRejected("ws")
	server.logger.Warn("rejected request", "id", id, "endpoint", "ws", "error", err)

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteJSON(&ErrorResponse{Error: err.Error()})
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid request"))
	_ = ws.Close()
}

// serveIndex renders the page for the grid in the query, or the default grid.
// The page starts the live solve itself, over /ws.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := &root_view.Page{}

	req := &defaultRequest
	if query.Has("n") {
		var err error
		if req, err = parseQuery(query.Get("n"), query.Get("start"), query.Get("goal"), query.Get("obstacles")); err != nil {
			page.Error = err.Error()
			req = &defaultRequest
		}
	}

	grid, err := req.Grid()
	if err != nil {
		page.Error = err.Error()
		req = &defaultRequest
		grid, _ = req.Grid()
	}

	// The live solve is only started for a valid request.
	if page.Error == "" {
		reqJSON, _ := json.Marshal(req)
		page.RequestJSON = string(reqJSON)
	}
	page.Form = root_view.Form{
		N:         req.N,
		Start:     formatPair(req.Start),
		Goal:      formatPair(req.End),
		Obstacles: formatPairs(req.Obstacles),
	}
	page.Frame = cell_views.Initial(grid)

	// The page views are only parsed here; their update channels close with the request.
	closed := make(chan models.Snapshot)
	close(closed)
	rootView, err := root_view.NewRootView(r.Context(), grid, closed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, rootView, page); err != nil {
		server.logger.Error("render index", "error", err)
		_, _ = w.Write([]byte(err.Error()))
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
