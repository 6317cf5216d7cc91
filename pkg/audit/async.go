package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AsyncOptions configures batching and buffering of AsyncStorage.
type AsyncOptions struct {
	BufferSize     int           // Max events queued before Store falls back to a synchronous write
	BatchSize      int           // Target events per batch
	BatchTimeout   time.Duration // Max time a partial batch waits before flushing
	StorageTimeout time.Duration // Per-batch storage timeout
	Logger         *slog.Logger  // Receives background write failures
}

// AsyncStorage queues events and writes them to the wrapped Storage in
// batches from a background goroutine. Store returns as soon as the events
// are queued.
type AsyncStorage struct {
	next    Storage
	queue   chan []Event
	done    chan struct{}
	closed  bool
	mu      sync.RWMutex // orders queue sends before Close
	wg      sync.WaitGroup
	options AsyncOptions
}

// NewAsyncStorage starts the background writer and returns it together with
// a function that flushes pending events and stops it.
func NewAsyncStorage(next Storage, opts AsyncOptions) (*AsyncStorage, func(context.Context) error) {
	if next == nil {
		panic("audit: storage cannot be nil")
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &AsyncStorage{
		next:    next,
		queue:   make(chan []Event, opts.BufferSize),
		done:    make(chan struct{}),
		options: opts,
	}

	s.wg.Add(1)
	go s.worker()

	return s, s.Close
}

// Store implements Storage.
func (s *AsyncStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStorageNotAvailable
	}
	select {
	case s.queue <- events:
		s.mu.RUnlock()
		return nil
	default:
	}
	s.mu.RUnlock()

	// Buffer full: write synchronously rather than drop the events.
	return s.next.Store(ctx, events...)
}

func (s *AsyncStorage) worker() {
	defer s.wg.Done()

	batch := make([]Event, 0, s.options.BatchSize)
	ticker := time.NewTicker(s.options.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		// Request contexts are gone by now; storage gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), s.options.StorageTimeout)
		defer cancel()

		if err := s.next.Store(ctx, batch...); err != nil {
			s.options.Logger.ErrorContext(ctx, "store audit batch",
				slog.Int("events", len(batch)),
				slog.Any("error", err),
			)
		}

		clear(batch)
		batch = batch[:0]
	}

	for {
		select {
		case events := <-s.queue:
			batch = append(batch, events...)
			if len(batch) >= s.options.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-s.done:
			for {
				select {
				case events := <-s.queue:
					batch = append(batch, events...)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events, flushes the queue and waits for the worker.
// The context bounds how long Close waits.
func (s *AsyncStorage) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Find delegates to the wrapped storage when it implements Reader.
// Events still queued are not visible.
func (s *AsyncStorage) Find(ctx context.Context, c Criteria) ([]Event, error) {
	r, ok := s.next.(Reader)
	if !ok {
		return nil, ErrStorageNotAvailable
	}
	return r.Find(ctx, c)
}
