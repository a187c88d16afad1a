// Package poller runs a fetch immediately and then on a fixed interval until
// stopped.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is the metrics refresh period
const DefaultInterval = 30 * time.Second

// FetchFunc performs one fetch. Errors are the fetcher's own concern.
type FetchFunc func(ctx context.Context)

// every fires at a fixed offset from the previous activation
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// Poller schedules a FetchFunc
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	logger   *zap.Logger
}

// Option configures a Poller
type Option func(*Poller)

// WithInterval overrides the refresh period
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the poller logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a poller for fetch
func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the refresh period
func (p *Poller) Interval() time.Duration { return p.interval }

// Handle controls one running schedule
type Handle struct {
	cron    *cron.Cron
	first   chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	done    bool
	fetches sync.WaitGroup
	once    sync.Once
}

// Start fetches once right away and then every interval. The schedule ends
// when Stop is called or ctx is cancelled. Every tick starts a fetch, even
// when the previous one has not returned yet.
func (p *Poller) Start(ctx context.Context) *Handle {
	log := cronLogger{p.logger}
	h := &Handle{
		cron:    cron.New(cron.WithLogger(log)),
		first:   make(chan struct{}),
		stopped: make(chan struct{}),
	}

	job := cron.FuncJob(func() {
		if !h.enter() {
			return
		}
		defer h.fetches.Done()
		if ctx.Err() != nil {
			return
		}
		p.fetch(ctx)
	})
	h.cron.Schedule(every(p.interval), job)

	go func() {
		defer close(h.first)
		job.Run()
	}()
	h.cron.Start()

	go func() {
		select {
		case <-ctx.Done():
			h.Stop()
		case <-h.stopped:
		}
	}()

	p.logger.Debug("poller started", zap.Duration("interval", p.interval))
	return h
}

// enter registers a fetch unless the handle is stopping
func (h *Handle) enter() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return false
	}
	h.fetches.Add(1)
	return true
}

// Stop cancels the schedule and waits for every fetch in flight to return. No
// fetch starts after Stop returns. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.mu.Lock()
		h.done = true
		h.mu.Unlock()

		<-h.cron.Stop().Done()
		<-h.first
		h.fetches.Wait()
		close(h.stopped)
	})
}

// Done is closed once the handle has fully stopped
func (h *Handle) Done() <-chan struct{} { return h.stopped }

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
