package mediafx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameRate is the target frame rate used when none is configured.
const DefaultFrameRate = 15

// LoopStats is a snapshot of a PacedLoop's counters.
type LoopStats struct {
	Ticks       uint64        // Callbacks completed since the loop was created
	LastLatency time.Duration // Duration of the most recent callback
	Running     bool          // A chain is scheduled
}

// PacedLoop repeatedly invokes a callback at a target rate. Each invocation
// runs to completion before the next one is scheduled, and the delay before
// the next invocation is the frame period minus the measured latency, so a
// slow callback runs back to back rather than skipping or overlapping.
// Invocations never overlap, including across Start and Cancel.
type PacedLoop struct {
	mu    sync.Mutex
	chain *loopChain // scheduled chain, nil after Cancel
	last  *loopChain // most recently started chain, possibly still finishing

	ticks       atomic.Uint64
	lastLatency atomic.Int64
}

// loopChain is one independent run of the loop, from Start to Cancel.
type loopChain struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPacedLoop creates an idle loop.
func NewPacedLoop() *PacedLoop {
	return &PacedLoop{}
}

// Start cancels any running chain and begins a new one that calls fn
// immediately and then about targetFrameRate times per second. fn receives
// the chain's context, which is cancelled by Cancel or the next Start.
// A non-positive rate selects DefaultFrameRate.
//
// Start does not block. The new chain's first invocation waits until the
// previous chain's in-flight invocation, if any, has returned.
func (l *PacedLoop) Start(fn func(ctx context.Context), targetFrameRate int) {
	if targetFrameRate <= 0 {
		targetFrameRate = DefaultFrameRate
	}
	period := time.Second / time.Duration(targetFrameRate)

	ctx, cancel := context.WithCancel(context.Background())
	c := &loopChain{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	l.mu.Lock()
	if l.chain != nil {
		l.chain.cancel()
	}
	prev := l.last
	l.chain = c
	l.last = c
	l.mu.Unlock()

	go l.run(c, prev, fn, period)
}

// Cancel stops the current chain. Once Cancel returns no new invocation
// begins; one that already began is allowed to finish. Cancel does not
// block and is safe to call from inside the callback or when nothing is
// scheduled.
func (l *PacedLoop) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.chain != nil {
		l.chain.cancel()
		l.chain = nil
	}
}

// Done returns a channel closed when the current chain's goroutine exits,
// or nil when no chain is running.
func (l *PacedLoop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.chain == nil {
		return nil
	}
	return l.chain.done
}

// Stats returns the loop counters.
func (l *PacedLoop) Stats() LoopStats {
	l.mu.Lock()
	running := l.chain != nil
	l.mu.Unlock()
	return LoopStats{
		Ticks:       l.ticks.Load(),
		LastLatency: time.Duration(l.lastLatency.Load()),
		Running:     running,
	}
}

// begin reports whether c may start another invocation. It checks under the
// same lock Cancel takes, so an invocation either begins before Cancel or
// not at all.
func (l *PacedLoop) begin(c *loopChain) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return c.ctx.Err() == nil
}

func (l *PacedLoop) run(c *loopChain, prev *loopChain, fn func(ctx context.Context), period time.Duration) {
	defer close(c.done)

	// prev is already cancelled; it exits once its in-flight invocation
	// returns. Waiting even when c is cancelled keeps done ordered, so a
	// later chain waiting on c also waits on prev.
	if prev != nil {
		<-prev.done
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}
		if !l.begin(c) {
			return
		}

		start := time.Now()
		fn(c.ctx)
		latency := time.Since(start)

		l.ticks.Add(1)
		l.lastLatency.Store(int64(latency))

		timer.Reset(nextDelay(period, latency))
	}
}

// nextDelay is the wait before the next tick: what is left of the period.
func nextDelay(period, latency time.Duration) time.Duration {
	if d := period - latency; d > 0 {
		return d
	}
	return 0
}
