package crawler

import "time"

// the retry delay stops doubling after this many failures
const maxBackoffExponent = 16

type Backoff struct {
	Period   time.Duration
	Retry    time.Duration
	Failures uint
}

// EndRun records the outcome of a run and returns the wait before the next
// one: Period after a success, Retry doubled per consecutive failure and
// capped at Period otherwise.
func (b *Backoff) EndRun(success bool) time.Duration {
	if success {
		b.Failures = 0
		return b.Period
	}

	b.Failures++
	exp := min(b.Failures-1, maxBackoffExponent)
	wait := b.Retry << exp
	if b.Period > 0 && (wait <= 0 || wait > b.Period) {
		wait = b.Period
	}
	return wait
}
