package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var errCooldown = errors.New("logstash: reconnect cooldown")

type dialFunc func(network, addr string, timeout time.Duration) (net.Conn, error)

// LogstashWriter forwards newline-delimited JSON log lines to a Logstash TCP
// input. Writes never fail because of the network: lines are dropped while the
// peer is unreachable and counted in Dropped.
type LogstashWriter struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	cooldown     time.Duration
	dial         dialFunc

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool

	dropped atomic.Uint64
}

type Option func(*LogstashWriter)

func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.dialTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.writeTimeout = d }
}

// WithCooldown sets how long the writer waits after a failed dial or write
// before trying to reconnect.
func WithCooldown(d time.Duration) Option {
	return func(w *LogstashWriter) { w.cooldown = d }
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("logstash: empty address")
	}

	w := &LogstashWriter{
		addr:         addr,
		dialTimeout:  2 * time.Second,
		writeTimeout: time.Second,
		cooldown:     5 * time.Second,
		dial:         net.DialTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	line := p
	if p[len(p)-1] != '\n' {
		line = make([]byte, len(p)+1)
		copy(line, p)
		line[len(p)] = '\n'
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}

	if err := w.connectLocked(); err != nil {
		w.dropped.Add(1)
		return len(p), nil
	}

	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	if _, err := w.conn.Write(line); err != nil {
		w.dropped.Add(1)
		w.disconnectLocked()
		w.nextRetry = time.Now().Add(w.cooldown)
	}
	return len(p), nil
}

// Dropped returns the number of lines discarded since the writer was created.
func (w *LogstashWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.disconnectLocked()
}

func (w *LogstashWriter) connectLocked() error {
	if w.conn != nil {
		return nil
	}
	if time.Now().Before(w.nextRetry) {
		return errCooldown
	}

	conn, err := w.dial("tcp", w.addr, w.dialTimeout)
	if err != nil {
		w.nextRetry = time.Now().Add(w.cooldown)
		return err
	}
	w.conn = conn
	w.nextRetry = time.Time{}
	return nil
}

func (w *LogstashWriter) disconnectLocked() error {
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}
