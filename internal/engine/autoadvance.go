package engine

import (
	"errors"
	"log"
	"time"

	"introxpection-quiz/internal/domain"
)

// DefaultAutoAdvanceDelay leaves time for the selection animation.
const DefaultAutoAdvanceDelay = 800 * time.Millisecond

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// AutoAdvancer selects an answer and advances after a delay. The pending
// advance is bound to the engine version it was armed at: it is dropped if
// it was cancelled or if the state changed before it fired.
//
// post must run the callback on the goroutine that owns the engine.
type AutoAdvancer struct {
	engine    *Engine
	delay     time.Duration
	post      func(func())
	afterFunc AfterFunc
	pending   *pendingAdvance
}

type pendingAdvance struct {
	version uint64
	stop    func() bool
}

// NewAutoAdvancer builds an AutoAdvancer. A zero delay advances immediately.
func NewAutoAdvancer(e *Engine, delay time.Duration, post func(func())) *AutoAdvancer {
	return &AutoAdvancer{engine: e, delay: delay, post: post, afterFunc: timeAfterFunc}
}

// WithAfterFunc replaces the timer source; used by tests.
func (a *AutoAdvancer) WithAfterFunc(fn AfterFunc) *AutoAdvancer {
	a.afterFunc = fn
	return a
}

// Select records answerIndex and schedules the advance. A rejected
// selection leaves any pending advance in place.
func (a *AutoAdvancer) Select(answerIndex int) error {
	if err := a.engine.SelectAnswer(answerIndex); err != nil {
		return err
	}
	a.Cancel()
	if a.delay <= 0 {
		return a.engine.Advance()
	}
	p := &pendingAdvance{version: a.engine.Version()}
	a.pending = p
	p.stop = a.afterFunc(a.delay, func() {
		a.post(func() { a.fire(p) })
	})
	return nil
}

// Cancel drops the pending advance, if any.
func (a *AutoAdvancer) Cancel() {
	if a.pending == nil {
		return
	}
	if a.pending.stop != nil {
		a.pending.stop()
	}
	a.pending = nil
}

// Pending reports whether an advance is scheduled.
func (a *AutoAdvancer) Pending() bool {
	return a.pending != nil
}

func (a *AutoAdvancer) fire(p *pendingAdvance) {
	if a.pending != p {
		return
	}
	a.pending = nil
	if a.engine.Version() != p.version {
		return
	}
	if err := a.engine.Advance(); err != nil && !errors.Is(err, domain.ErrQuizAlreadyComplete) {
		log.Printf("auto-advance: %v", err)
	}
}
