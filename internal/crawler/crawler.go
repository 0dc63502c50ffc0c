package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// acknowledgement: this module is highly inspired by a question on stackoverflow
// see: https://stackoverflow.com/questions/63812394/periodically-crawl-api-in-golang

const DefaultRetryDelay = 30 * time.Second

// Job is one crawl. A returned error schedules an earlier retry.
type Job func(ctx context.Context) error

type Options struct {
	// Delay before the first run.
	Delay time.Duration
	// Retry is the wait after the first failure; it doubles per failure up
	// to the interval.
	Retry time.Duration
	// Timeout bounds a single run. Defaults to the interval.
	Timeout time.Duration
}

type PeriodicCrawler struct {
	name    string
	job     Job
	delay   time.Duration
	timeout time.Duration

	done    chan bool
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	backoff Backoff
	runs    int
}

// New starts running job every interval until ctx is done or Close is
// called.
func New(ctx context.Context, name string, interval time.Duration, job Job, opts Options) *PeriodicCrawler {
	if opts.Retry <= 0 {
		opts.Retry = DefaultRetryDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = interval
	}

	crawler := PeriodicCrawler{
		name:    name,
		job:     job,
		delay:   opts.Delay,
		timeout: opts.Timeout,
		backoff: Backoff{Period: interval, Retry: opts.Retry},

		done:    make(chan bool),
		stopped: make(chan struct{}),
	}

	go crawler.start(ctx)

	return &crawler
}

func (c *PeriodicCrawler) start(ctx context.Context) {
	defer close(c.stopped)

	wait := c.delay
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		wait = c.run(ctx)
	}
}

func (c *PeriodicCrawler) run(ctx context.Context) time.Duration {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.Debug("Crawling", "job", c.name)
	err := c.job(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs++
	next := c.backoff.EndRun(err == nil)
	if err != nil {
		slog.Error("Crawl failed", "job", c.name, "error", err, "failures", c.backoff.Failures, "retry", next)
	}
	return next
}

// Runs reports how many times the job has completed.
func (c *PeriodicCrawler) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

// Close stops the crawler and waits for a running job to return.
func (c *PeriodicCrawler) Close() {
	c.once.Do(func() {
		close(c.done)
	})
	<-c.stopped
}
