// Package stream holds the single shared connection to the Orion event stream.
package stream

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/logger"
)

// ErrNotConnected is returned when writing without an open socket.
var ErrNotConnected = errors.New("stream: not connected")

// Wildcard registers a handler that receives every event.
const Wildcard = "*"

// DefaultURL is the production event stream endpoint.
const DefaultURL = "wss://alnilam.orionlabs.io/stream/wss"

// Handler processes one event. Returned errors are logged.
type Handler func(ev *types.Event) error

// PongFunc answers a server ping. The stream passes the token it connected with.
type PongFunc func(ctx context.Context, token string) error

// TicketFunc fetches a stream ticket right before a new socket is dialed.
type TicketFunc func(ctx context.Context) (string, error)

// Config represents configuration for the stream handle
type Config struct {
	URL              string
	ProxyURL         string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PongTimeout      time.Duration
	Pong             PongFunc
}

// DefaultConfig returns a default stream configuration
func DefaultConfig() *Config {
	return &Config{
		URL:              DefaultURL,
		HandshakeTimeout: 30 * time.Second,
		WriteTimeout:     10 * time.Second,
		PongTimeout:      10 * time.Second,
	}
}

// Stream is a memoized event-stream socket. Connect hands back the same
// socket while it is connecting or open and dials a new one otherwise.
type Stream struct {
	url          string
	proxyURL     string
	dialer       websocket.Dialer
	writeTimeout time.Duration
	pongTimeout  time.Duration
	pong         PongFunc

	// dialMu serializes Connect and Close so at most one dial is in flight.
	dialMu sync.Mutex

	mu    sync.Mutex
	conn  *websocket.Conn
	token string
	done  chan struct{}

	writeMu sync.Mutex
	state   atomic.Int32

	handlersMu sync.RWMutex
	handlers   map[string]Handler
	onClose    func(error)

	statsMu       sync.RWMutex
	lastEventAt   time.Time
	eventCount    uint64
	parseErrCount uint64
	pongCount     uint64
}

// New creates a stream handle. Nothing is dialed until Connect.
func New(config *Config) *Stream {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 30 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.PongTimeout == 0 {
		config.PongTimeout = 10 * time.Second
	}

	s := &Stream{
		url:          config.URL,
		proxyURL:     config.ProxyURL,
		writeTimeout: config.WriteTimeout,
		pongTimeout:  config.PongTimeout,
		pong:         config.Pong,
		handlers:     make(map[string]Handler),
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
	s.state.Store(int32(Closed))
	return s
}

func (s *Stream) log() *logrus.Entry {
	return logger.WithField("component", "orion-stream")
}

// State returns the current ready state.
func (s *Stream) State() ReadyState {
	return ReadyState(s.state.Load())
}

func (s *Stream) setState(st ReadyState) {
	s.state.Store(int32(st))
}

// Reusable reports whether Connect would hand back the cached socket.
func (s *Stream) Reusable() bool {
	return s.State().Reusable()
}

// URL returns the configured stream endpoint.
func (s *Stream) URL() string {
	return s.url
}

// On registers the handler for an event type, replacing any previous one.
// Use Wildcard to observe every event.
func (s *Stream) On(eventType string, h Handler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	if h == nil {
		delete(s.handlers, eventType)
		return
	}
	s.handlers[eventType] = h
}

// OnClose registers a callback run once per socket when it ends. The error is
// nil when the socket was closed through Close.
func (s *Stream) OnClose(fn func(error)) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.onClose = fn
}

// Connect returns immediately when the cached socket is connecting or open.
// Otherwise it calls ticket (when non-nil) and dials a new socket
// authorized with token.
func (s *Stream) Connect(ctx context.Context, token string, ticket TicketFunc) error {
	s.dialMu.Lock()
	defer s.dialMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil && s.State().Reusable() {
		s.log().Infof("reusing the socket connection [state = %s]: %s", s.State(), s.url)
		return nil
	}

	s.setState(Connecting)

	var ticketValue string
	if ticket != nil {
		t, err := ticket(ctx)
		if err != nil {
			s.setState(Closed)
			return errors.Wrap(err, "stream: fetch ticket")
		}
		ticketValue = t
	}

	target, err := s.dialURL(ticketValue)
	if err != nil {
		s.setState(Closed)
		return err
	}

	dialer := s.dialer
	if s.proxyURL != "" {
		proxy, err := url.Parse(s.proxyURL)
		if err != nil {
			s.setState(Closed)
			return errors.Wrap(err, "stream: invalid proxy URL")
		}
		dialer.Proxy = http.ProxyURL(proxy)
	}

	header := http.Header{}
	header.Set("Authorization", token)

	newConn, resp, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		s.setState(Closed)
		if resp != nil {
			s.log().Errorf("socket error (HTTP %d): %v", resp.StatusCode, err)
			return errors.Wrapf(err, "stream: dial %s: HTTP %d", s.url, resp.StatusCode)
		}
		s.log().Errorf("socket error: %v", err)
		return errors.Wrapf(err, "stream: dial %s", s.url)
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.conn = newConn
	s.token = token
	s.done = done
	s.mu.Unlock()
	s.setState(Open)
	s.log().Infof("socket connected: %s", s.url)

	go s.readLoop(newConn, token, done)
	return nil
}

func (s *Stream) dialURL(ticket string) (string, error) {
	if ticket == "" {
		return s.url, nil
	}
	u, err := url.Parse(s.url)
	if err != nil {
		return "", errors.Wrap(err, "stream: invalid URL")
	}
	q := u.Query()
	q.Set("ticket", ticket)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send writes v as a JSON text frame.
func (s *Stream) Send(v any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil || s.State() != Open {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteJSON(v); err != nil {
		return errors.Wrap(err, "stream: write")
	}
	return nil
}

// Done is closed when the current socket's read loop exits. With no socket a
// closed channel is returned.
func (s *Stream) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// Close sends a close frame, closes the socket and waits for the read loop.
func (s *Stream) Close() error {
	s.dialMu.Lock()
	defer s.dialMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	done := s.done
	s.mu.Unlock()
	if conn == nil {
		s.setState(Closed)
		return nil
	}

	s.setState(Closing)

	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(s.writeTimeout))
	s.writeMu.Unlock()

	// give the server a moment to echo the close frame before dropping the socket
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	err := conn.Close()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		s.log().Warnf("timed out waiting for the read loop to exit")
	}

	s.setState(Closed)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.Wrap(err, "stream: close")
	}
	return nil
}

func (s *Stream) readLoop(conn *websocket.Conn, token string, done chan struct{}) {
	var readErr error
	defer func() {
		if r := recover(); r != nil {
			s.log().Errorf("read loop panic recovered: %v", r)
			readErr = fmt.Errorf("stream: read loop panic: %v", r)
		}
		s.finish(conn, readErr)
		close(done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			return
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 {
			continue
		}

		ev, err := types.ParseEvent(trimmed)
		if err != nil {
			s.statsMu.Lock()
			s.parseErrCount++
			s.statsMu.Unlock()
			s.log().Warnf("failed to parse event: %v (len=%d preview=%q)", err, len(trimmed), truncateForLog(string(trimmed), 240))
			continue
		}

		s.statsMu.Lock()
		s.lastEventAt = time.Now()
		s.eventCount++
		s.statsMu.Unlock()

		if ev.EventType == types.EventPing {
			go s.replyPong(token)
		}
		s.dispatch(ev)
	}
}

// finish tears down bookkeeping for conn and fires OnClose.
func (s *Stream) finish(conn *websocket.Conn, readErr error) {
	explicit := s.State() == Closing

	s.mu.Lock()
	current := s.conn == conn
	if current {
		s.conn = nil
		s.token = ""
	}
	s.mu.Unlock()
	if !current {
		return
	}
	if !explicit {
		_ = conn.Close()
		s.setState(Closed)
	}

	var cbErr error
	if !explicit {
		cbErr = readErr
		if websocket.IsUnexpectedCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			s.log().Warnf("socket closed unexpectedly: %v", readErr)
		} else {
			s.log().Infof("socket closed: %v", readErr)
		}
	}

	s.handlersMu.RLock()
	fn := s.onClose
	s.handlersMu.RUnlock()
	if fn != nil {
		fn(cbErr)
	}
}

func (s *Stream) replyPong(token string) {
	if s.pong == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.pongTimeout)
	defer cancel()
	if err := s.pong(ctx, token); err != nil {
		s.log().Warnf("pong failed: %v", err)
		return
	}
	s.statsMu.Lock()
	s.pongCount++
	s.statsMu.Unlock()
}

func (s *Stream) dispatch(ev *types.Event) {
	s.handlersMu.RLock()
	handler := s.handlers[string(ev.EventType)]
	wildcard := s.handlers[Wildcard]
	s.handlersMu.RUnlock()

	if handler != nil {
		if err := handler(ev); err != nil {
			s.log().Warnf("handler for %s failed: %v", ev.EventType, err)
		}
	} else if wildcard == nil {
		s.log().Debugf("no handler registered for event %s", ev.EventType)
	}

	if wildcard != nil {
		if err := wildcard(ev); err != nil {
			s.log().Warnf("wildcard handler failed: %v", err)
		}
	}
}

// DebugSnapshot returns a concise snapshot for troubleshooting.
func (s *Stream) DebugSnapshot() string {
	s.handlersMu.RLock()
	registered := make([]string, 0, len(s.handlers))
	for t := range s.handlers {
		registered = append(registered, t)
	}
	s.handlersMu.RUnlock()

	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return fmt.Sprintf("state=%s url=%s events=%d parseErrs=%d pongs=%d lastEventAt=%s handlers=%v",
		s.State(), s.url, s.eventCount, s.parseErrCount, s.pongCount,
		formatTimeOrEmpty(s.lastEventAt), registered)
}

func formatTimeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
