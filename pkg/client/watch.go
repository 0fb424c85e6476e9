package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// InvalidationEvent is pushed by the service when option values a
// provider resolved against have changed server-side and dependent
// option sets should be re-queried.
type InvalidationEvent struct {
	// Provider is the affected provider id.
	Provider string `json:"provider"`
	// Options lists the option ids whose resolution changed.
	Options []string `json:"options"`
	// Timestamp is when the event was received.
	Timestamp time.Time `json:"-"`
}

// Watcher subscribes to a provider's invalidation event stream over a
// websocket connection.
type Watcher struct {
	endpoint string
	headers  http.Header

	conn      *websocket.Conn
	events    chan *InvalidationEvent
	errors    chan error
	connected bool
	cancel    context.CancelFunc
	mu        sync.RWMutex

	// ReconnectInterval is the wait between connection attempts.
	ReconnectInterval time.Duration
	// MaxReconnectAttempts limits retries; zero means unlimited.
	MaxReconnectAttempts int
}

// NewWatcher creates a watcher for the given provider. Headers are sent
// with the websocket handshake (use them for Authorization).
func (c *Client) NewWatcher(providerID string, headers http.Header) *Watcher {
	endpoint := c.url(c.endpoints.Events, providerID)
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)

	return &Watcher{
		endpoint:          endpoint,
		headers:           headers,
		events:            make(chan *InvalidationEvent, 100),
		errors:            make(chan error, 10),
		ReconnectInterval: 5 * time.Second,
	}
}

// Connect establishes the connection and starts the read loop.
func (w *Watcher) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.connected {
		w.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.connectWithRetry(ctx)

	return nil
}

// connectWithRetry attempts to connect with automatic reconnection.
func (w *Watcher) connectWithRetry(ctx context.Context) {
	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if w.MaxReconnectAttempts > 0 && attempts >= w.MaxReconnectAttempts {
			w.errors <- fmt.Errorf("max reconnect attempts reached")
			return
		}

		err := w.doConnect(ctx)
		if err != nil {
			w.errors <- fmt.Errorf("connection error: %w", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(w.ReconnectInterval):
				attempts++
				continue
			}
		}

		return
	}
}

// doConnect dials the endpoint and reads events until the connection
// drops.
func (w *Watcher) doConnect(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 30 * time.Second

	conn, _, err := dialer.DialContext(ctx, w.endpoint, w.headers)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	go w.readMessages(ctx)

	return nil
}

// readMessages reads invalidation events from the connection.
func (w *Watcher) readMessages(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		w.connected = false
		if w.conn != nil {
			w.conn.Close()
		}
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				w.errors <- fmt.Errorf("read error: %w", err)
			}
			return
		}

		var event InvalidationEvent
		if err := json.Unmarshal(message, &event); err != nil {
			w.errors <- fmt.Errorf("malformed event: %w", err)
			continue
		}
		event.Timestamp = time.Now()

		select {
		case w.events <- &event:
		default:
			// Channel full, skip event
		}
	}
}

// Close closes the connection.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.connected = false
	if w.conn != nil {
		return w.conn.Close()
	}

	return nil
}

// IsConnected reports whether the watcher is connected.
func (w *Watcher) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Events returns the invalidation event channel.
func (w *Watcher) Events() <-chan *InvalidationEvent {
	return w.events
}

// Errors returns the error channel.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}
