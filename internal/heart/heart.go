// Package heart implements a generic periodic pacemaker: a goroutine that
// repeats a callback on a fixed interval and tracks whether the other side
// is still responding.
package heart

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// ErrDead is returned when a pacemaker's Pace callback itself reports
// failure; callers that need "no reply" detection should use Silence
// against their own protocol timeout instead, since liveness replies
// (unlike Discord's heartbeat ACKs) are not guaranteed per-beat in SRS.
var ErrDead = errors.New("heart: pace callback failed")

// Timestamp is a thread-safe UnixNano timestamp.
type Timestamp struct {
	nanos atomic.Int64
}

// Set records t as the current value.
func (ts *Timestamp) Set(t time.Time) { ts.nanos.Store(t.UnixNano()) }

// Get returns the last recorded value, or the zero time if Set was never
// called.
func (ts *Timestamp) Get() time.Time {
	n := ts.nanos.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Beat periodically invokes Pace every Rate, tracking the last time it
// fired (SentBeat) and the last time the caller acknowledged liveness
// (EchoBeat, via Echo). It generalizes the teacher's gateway heartbeat
// pacemaker to any periodic keep-alive, not just a websocket heartbeat.
type Beat struct {
	// Rate is the interval between invocations of Pace.
	Rate time.Duration

	// Pace is called once per tick. An error stops the pacemaker.
	Pace func(context.Context) error

	SentBeat Timestamp
	EchoBeat Timestamp

	stop chan struct{}
	once sync.Once
}

// NewBeat constructs a Beat with the given rate and callback.
func NewBeat(rate time.Duration, pace func(context.Context) error) *Beat {
	return &Beat{Rate: rate, Pace: pace, stop: make(chan struct{})}
}

// Echo records that liveness was confirmed just now. Callers should invoke
// this whenever they observe a reply from the other side (e.g. a UDP
// keep-alive response datagram).
func (b *Beat) Echo() { b.EchoBeat.Set(time.Now()) }

// Run drives the pacemaker until ctx is done, Stop is called, or Pace
// returns an error.
func (b *Beat) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.Rate)
	defer ticker.Stop()

	// Count this as an initial echo so a freshly started pacemaker isn't
	// immediately considered stale.
	b.Echo()

	for {
		paceCtx, cancel := context.WithTimeout(ctx, b.Rate)
		err := b.Pace(paceCtx)
		cancel()

		if err != nil {
			return errors.Wrap(ErrDead, err.Error())
		}
		b.SentBeat.Set(time.Now())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop halts a running Beat. Safe to call multiple times or from multiple
// goroutines.
func (b *Beat) Stop() {
	b.once.Do(func() { close(b.stop) })
}

// Silence returns how long it has been since Echo was last called. Useful
// for exposing connection health (e.g. UDP keep-alive staleness) without
// exposing raw timestamps.
func (b *Beat) Silence() time.Duration {
	last := b.EchoBeat.Get()
	if last.IsZero() {
		return 0
	}
	return time.Since(last)
}
