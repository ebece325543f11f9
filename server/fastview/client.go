package fastview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	pingResolution = time.Millisecond * 200
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4

	// DefaultPubResolution is the rate at which ele-updates are sent to the client, so as not to overburden.
	DefaultPubResolution = time.Millisecond * 100
)

// Client publishes updates unidirectionally to a web page over an established
// websocket. Items in the updates chan must be idempotent, such that intervening
// updates can be discarded when they arrive faster than the publication rate and
// only sending the latest one is sufficient to bring the page up to date. The last
// update received before the chan closes is always sent.
type Client[T any] struct {
	updates       <-chan T
	ws            *websock
	rootCtx       context.Context
	pubResolution time.Duration
	pong          chan struct{}
}

// NewClient wraps an upgraded websocket connection.
func NewClient[T any](
	ctx context.Context,
	conn *websocket.Conn,
	updates <-chan T,
	pubResolution time.Duration,
) *Client[T] {
	conn.SetReadLimit(maxMessageSize)
	return &Client[T]{
		updates:       updates,
		ws:            newWebsock(conn),
		rootCtx:       ctx,
		pubResolution: pubResolution,
		pong:          make(chan struct{}, 1),
	}
}

// Sync runs the reader, the ping-pong liveness check, and the publisher until the
// updates chan is closed and published, the peer disconnects, or ctx is cancelled.
// Sync returns nil upon orderly completion or peer disconnect, or the first unexpected error.
func (cli *Client[T]) Sync() error {
	// Handlers must be installed before the reader starts.
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case cli.pong <- struct{}{}:
		default:
		}
		return cli.ws.Conn().SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(cli.rootCtx)
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		// Publication is the client's purpose: once it completes, so does everything else.
		defer cancel()
		return cli.publish(groupCtx)
	})

	err := group.Wait()
	cli.ws.Close()
	return err
}

var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// Runs the ping-pong for the client liveness check.
// NOTE: This function requires that readMessages is running to ensure the pong handler is called.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}

			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-cli.pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("ping failed: %T %w", err, err)
				}
			}
			return
		})
}

// readMessages drains messages from the client, which is required for control frames
// (pong, close) to be processed. Errors returned by websocket Read methods are permanent,
// hence any error ends the client; a close from the peer is an orderly end.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	if err := cli.ws.Conn().SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}

	for {
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		switch {
		case err == nil:
			continue
		case ctx.Err() != nil, isClosure(err):
			return nil
		default:
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

// publish writes updates at most once per pubResolution, dropping those that arrive
// faster. When the updates chan closes, the last dropped update is flushed and a
// normal close frame is sent.
func (cli *Client[T]) publish(ctx context.Context) error {
	var lastSync time.Time
	var pending *T

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				if pending != nil {
					if err := cli.write(ctx, *pending); err != nil {
						return err
					}
				}
				return cli.closeNormal(ctx)
			}
			// Drop updates when receiving too quickly, but remember the latest.
			if time.Since(lastSync) < cli.pubResolution {
				pending = &update
				break
			}

			pending = nil
			lastSync = time.Now()
			if err := cli.write(ctx, update); err != nil {
				return err
			}
		}
	}
}

func (cli *Client[T]) write(ctx context.Context, update T) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (writeErr error) {
			if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
				return fmt.Errorf("failed to set deadline: %T %w", writeErr, writeErr)
			}

			if writeErr = ws.WriteJSON(update); writeErr != nil {
				if isError(writeErr) {
					writeErr = fmt.Errorf("publish failed: %T %w", writeErr, writeErr)
				}
			}
			return
		})
}

func (cli *Client[T]) closeNormal(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) error {
			return ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
		})
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

// websock serializes reads and writes to the websocket, whose requirements
// are that there may be only one concurrent reader and one writer at a time.
type websock struct {
	// These are merely mutexes, but channel semantics are cleaner.
	readSem   chan struct{}
	writeSem  chan struct{}
	ws        *websocket.Conn
	closeOnce sync.Once
}

func newWebsock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Returns the underlying websocket.
// This should only be used non-concurrently for setup, e.g. adding handlers.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close closes the underlying connection. Safe to call more than once.
func (sock *websock) Close() {
	sock.closeOnce.Do(func() {
		_ = sock.ws.Close()
	})
}

// Read serializes read operations on the internal web socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations to the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
