package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrWriterClosed = errors.New("storage: writer closed")

const defaultWriteTimeout = 5 * time.Second

// Writer saves snapshots on a background goroutine. Only the latest payload
// per key is kept while a write is pending, so bursts of saves coalesce.
type Writer struct {
	store   SnapshotStore
	log     *logrus.Entry
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	wake     chan struct{}
	flushReq chan chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	failures uint64
	written  uint64
}

func NewWriter(store SnapshotStore, log *logrus.Entry) *Writer {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	w := &Writer{
		store:    store,
		log:      log,
		timeout:  defaultWriteTimeout,
		pending:  make(map[string][]byte),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// Save queues payload for key and returns immediately.
func (w *Writer) Save(key string, payload []byte) {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.WithField("key", key).Warn("save after writer closed")
		return
	}
	w.pending[key] = buf
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every save queued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case w.flushReq <- done:
	case <-w.doneCh:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is pending and stops the goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.doneCh
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.stopCh)
	<-w.doneCh
}

func (w *Writer) Failures() uint64 { return atomic.LoadUint64(&w.failures) }

func (w *Writer) Written() uint64 { return atomic.LoadUint64(&w.written) }

func (w *Writer) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.wake:
			w.drain()
		case done := <-w.flushReq:
			w.drain()
			close(done)
		case <-w.stopCh:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		batch := w.pending
		w.pending = make(map[string][]byte)
		w.mu.Unlock()

		for key, payload := range batch {
			w.write(key, payload)
		}
	}
}

func (w *Writer) write(key string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.store.Save(ctx, key, payload); err != nil {
		atomic.AddUint64(&w.failures, 1)
		w.log.WithError(err).WithField("key", key).Error("save snapshot")
		return
	}
	atomic.AddUint64(&w.written, 1)
	w.log.WithFields(logrus.Fields{"key": key, "bytes": len(payload)}).Debug("snapshot saved")
}
