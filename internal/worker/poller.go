package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"yt-summary-publisher/internal/logger"
)

const (
	DefaultPollInterval = 30 * time.Second
	DefaultBatchSize    = 20
)

// Poller drains due jobs on a fixed interval. Jobs in a batch run one after another.
type Poller struct {
	dispatcher *Dispatcher
	interval   time.Duration
	batchSize  int
	lastPoll   atomic.Int64
}

func NewPoller(d *Dispatcher, interval time.Duration, batchSize int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Poller{dispatcher: d, interval: interval, batchSize: batchSize}
}

// RunOnce executes every job due now and returns how many were run. Once ctx is cancelled the
// remaining jobs stay scheduled for the next process; a job already started always completes.
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	jobs, err := p.dispatcher.DueJobs(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch due posts: %w", err)
	}
	ran := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		p.dispatcher.Execute(ctx, job)
		ran++
	}
	p.lastPoll.Store(p.dispatcher.now().UnixNano())
	return ran, nil
}

// Run polls until ctx is cancelled. A failing batch is logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	logger.GetLogger().WithField("interval", p.interval.String()).Info("Scheduler worker started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)
		select {
		case <-ctx.Done():
			logger.GetLogger().Info("Scheduler worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithField("panic", r).Error("Scheduler batch panicked")
		}
	}()
	n, err := p.RunOnce(ctx)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Scheduler batch failed")
		return
	}
	if n > 0 {
		logger.GetLogger().WithField("count", n).Info("Processed due posts")
	}
}

// LastPoll is the time the last batch completed, zero before the first one.
func (p *Poller) LastPoll() time.Time {
	ns := p.lastPoll.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// Alive reports whether a batch completed within three poll intervals of now.
func (p *Poller) Alive(now time.Time) bool {
	last := p.LastPoll()
	return !last.IsZero() && now.Sub(last) <= 3*p.interval
}
