package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/devsync/internal/common"
	"github.com/dmitrijs2005/devsync/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var _ ChangeSignal = (*WebSocket)(nil)

const (
	DefaultURL            = "ws://localhost:8080/notifications"
	DefaultReconnectDelay = 2 * time.Second

	outboxSize   = 16
	writeTimeout = 5 * time.Second
)

// TokenSource provides the bearer token sent on the handshake.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// WebSocket is a ChangeSignal backed by a reconnecting websocket connection.
type WebSocket struct {
	url            string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	tokens         TokenSource
	log            logging.Logger
	newID          func() string

	mu          sync.Mutex
	connected   bool
	connections uint64
	lastToken   string
	outbox      chan string

	updates chan struct{}
}

type Option func(*WebSocket)

func WithReconnectDelay(d time.Duration) Option {
	return func(w *WebSocket) {
		if d > 0 {
			w.reconnectDelay = d
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(w *WebSocket) { w.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(w *WebSocket) { w.log = l }
}

func NewWebSocket(url string, opts ...Option) *WebSocket {
	if url == "" {
		url = DefaultURL
	}
	w := &WebSocket{
		url:            url,
		reconnectDelay: DefaultReconnectDelay,
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:            logging.Discard(),
		newID:          uuid.NewString,
		updates:        make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(w)
	}
	w.log = w.log.With("module", "signal")
	return w
}

func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *WebSocket) Connections() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connections
}

func (w *WebSocket) LastToken() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastToken
}

func (w *WebSocket) Updates() <-chan struct{} {
	return w.updates
}

// Send queues msg for the current connection. It never blocks: the message
// is dropped when there is no connection or the outbox is full.
func (w *WebSocket) Send(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.connected || w.outbox == nil {
		w.log.Warn(context.Background(), "notification dropped, not connected", "message", msg)
		return
	}
	select {
	case w.outbox <- msg:
	default:
		w.log.Warn(context.Background(), "notification dropped, outbox full", "message", msg)
	}
}

// Run keeps the connection up until ctx is done, redialing after
// the reconnect delay whenever it drops.
func (w *WebSocket) Run(ctx context.Context) {
	for {
		conn, err := w.dial(ctx)
		if err == nil {
			w.serve(ctx, conn)
		} else if ctx.Err() == nil {
			w.log.Debug(ctx, "notifications dial failed", "url", w.url, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.reconnectDelay):
		}
	}
}

func (w *WebSocket) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if w.tokens != nil {
		token, err := w.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}
	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

func (w *WebSocket) serve(ctx context.Context, conn *websocket.Conn) {
	outbox := make(chan string, outboxSize)
	done := make(chan struct{})
	var wg sync.WaitGroup

	w.setConnected(true, outbox)
	w.log.Info(ctx, "notifications connected", "url", w.url)

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.writeLoop(ctx, conn, outbox, done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.log.Warn(ctx, "notifications connection lost", "error", err)
			}
			break
		}
		w.bump(string(data))
	}

	close(done)
	wg.Wait()
	_ = conn.Close()
	w.setConnected(false, nil)
}

func (w *WebSocket) writeLoop(ctx context.Context, conn *websocket.Conn, outbox <-chan string, done <-chan struct{}) {
	for {
		select {
		case msg := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				w.log.Warn(ctx, "notification send failed", "message", msg, "error", err)
				_ = conn.Close()
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				w.log.Debug(ctx, "close frame not sent", "error", err)
			}
			_ = conn.Close()
			return
		}
	}
}

func (w *WebSocket) setConnected(v bool, outbox chan string) {
	w.mu.Lock()
	changed := w.connected != v
	w.connected = v
	if v && changed {
		w.connections++
	}
	w.outbox = outbox
	w.mu.Unlock()

	if changed {
		w.notify()
	}
}

// bump records an inbound notification as a fresh token.
func (w *WebSocket) bump(payload string) {
	w.mu.Lock()
	w.lastToken = w.newID() + ":" + payload
	w.mu.Unlock()
	w.notify()
}

func (w *WebSocket) notify() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}
