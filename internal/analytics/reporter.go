package analytics

import (
	"context"
	"log"
	"sync"
	"time"

	"introxpection-quiz/internal/domain"
)

// StatsWriter persists completed attempts.
type StatsWriter interface {
	Record(ctx context.Context, c domain.Completion) error
}

// StatsReader returns aggregated completions of a quiz.
type StatsReader interface {
	Stats(ctx context.Context, quizID string) (domain.QuizStats, error)
}

// StatsStore is implemented by every backend in internal/infra.
type StatsStore interface {
	StatsWriter
	StatsReader
}

// AsyncReporter queues completions and writes them from background workers,
// so Report never blocks the caller. A full queue drops the completion.
type AsyncReporter struct {
	writer  StatsWriter
	queue   chan domain.Completion
	workers int
	timeout time.Duration

	startOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncReporter builds a reporter with the given queue size and worker count.
func NewAsyncReporter(writer StatsWriter, queueSize, workers int) *AsyncReporter {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &AsyncReporter{
		writer:  writer,
		queue:   make(chan domain.Completion, queueSize),
		workers: workers,
		timeout: 5 * time.Second,
	}
}

// Start launches the workers. It is safe to call more than once.
func (r *AsyncReporter) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
		log.Printf("analytics: started %d worker(s)", r.workers)
	})
}

// Report enqueues c without waiting. Completions reported after Close are
// dropped.
func (r *AsyncReporter) Report(c domain.Completion) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		log.Printf("analytics: reporter closed, dropping completion quiz=%s profile=%s", c.QuizID, c.ProfileID)
		return
	}
	select {
	case r.queue <- c:
	default:
		log.Printf("analytics: queue full, dropping completion quiz=%s profile=%s", c.QuizID, c.ProfileID)
	}
}

// Close stops accepting work and waits for queued completions to be written.
func (r *AsyncReporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *AsyncReporter) worker(id int) {
	defer r.wg.Done()
	for c := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.writer.Record(ctx, c); err != nil {
			log.Printf("analytics: worker %d: record quiz=%s: %v", id, c.QuizID, err)
		}
		cancel()
	}
}
