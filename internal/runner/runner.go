// Package runner executes deconfliction checks asynchronously. Callers
// submit jobs onto a bounded queue; a worker goroutine runs each check and
// hands the report to a sink, typically a storage backend.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/flytrace/deconflict/internal/cache"
	"github.com/flytrace/deconflict/internal/channel"
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/pkg/core"
)

// DefaultQueueSize bounds the job queue when no Buffered option is given.
const DefaultQueueSize = 16

// Job is one deconfliction check request.
type Job struct {
	Primary   *core.Trajectory
	Simulated []*core.Trajectory
	Opts      deconflict.Options
	Submitted time.Time
}

// ReportFunc receives each finished report.
type ReportFunc func(report *core.ConflictReport, opts deconflict.Options) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// nopLogger discards all records. Installed when no logger is supplied
// so the worker never has to nil-check before logging.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures the runner.
type Option func(*config)

type config struct {
	queueSize int
	blocking  bool
	logged    bool
}

// Buffered sets the job queue size.
func Buffered(size int) Option {
	return func(c *config) {
		c.queueSize = size
	}
}

// Blocking makes Submit block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around each check.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Runner runs checks from a queue on a single worker goroutine.
type Runner struct {
	jobs   channel.Channel[Job]
	sink   ReportFunc
	logger Logger
	cfg    config
	wg     sync.WaitGroup
	done   cache.SafeCounter

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	conflicts metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a Runner and starts its worker goroutine.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(sink ReportFunc, logger Logger, opts ...Option) (*Runner, error) {
	cfg := config{queueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.queueSize <= 0 {
		cfg.queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = nopLogger{}
	}

	r := &Runner{
		jobs:   channel.New[Job](cfg.queueSize),
		sink:   sink,
		logger: logger,
		cfg:    cfg,
	}

	m := meter()

	var err error

	r.queueSize, err = m.Int64ObservableGauge(
		"runner.queue.size",
		metric.WithDescription("Current number of check jobs in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(r.queueSize, int64(r.jobs.Len()))
			return nil
		},
		r.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	r.processed, err = m.Int64Counter(
		"runner.checks.processed",
		metric.WithDescription("Total checks processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	r.conflicts, err = m.Int64Counter(
		"runner.conflicts.found",
		metric.WithDescription("Total conflict records found"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conflicts counter: %w", err)
	}

	r.dropped, err = m.Int64Counter(
		"runner.checks.dropped",
		metric.WithDescription("Total checks dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	r.wg.Add(1)
	go r.loop()

	return r, nil
}

// Submit queues a check job. When the queue is full, Submit blocks if the
// runner was built with Blocking, otherwise the job is dropped with an error.
func (r *Runner) Submit(job Job) error {
	if job.Submitted.IsZero() {
		job.Submitted = time.Now()
	}

	if r.cfg.blocking {
		r.jobs.Send(job)
		return nil
	}

	if !r.jobs.TrySend(job) {
		r.dropped.Add(context.Background(), 1)
		return fmt.Errorf("check queue full")
	}
	return nil
}

// QueueLen returns the number of jobs waiting for the worker.
func (r *Runner) QueueLen() int {
	return r.jobs.Len()
}

// Processed returns how many checks the worker has completed.
func (r *Runner) Processed() int {
	return r.done.Value()
}

// Close drains the queue and stops the worker. No Submit may follow.
func (r *Runner) Close() {
	r.jobs.Close()
	r.wg.Wait()
}

func (r *Runner) loop() {
	defer r.wg.Done()

	for job := range r.jobs.Receive() {
		start := time.Now()

		report := deconflict.Check(job.Primary, job.Simulated, job.Opts)

		r.done.Inc()
		r.processed.Add(context.Background(), 1)
		if !report.Clear() {
			r.conflicts.Add(context.Background(), int64(len(report.Conflicts)))
		}

		if r.cfg.logged {
			r.logger.Debug("check complete",
				"status", string(report.Status),
				"records", len(report.Conflicts),
				"duration", time.Since(start),
				"queued", start.Sub(job.Submitted))
		}

		if r.sink != nil {
			if err := r.sink(&report, job.Opts); err != nil {
				r.logger.Error("report sink failed", "error", err)
			}
		}
	}
}
