package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/envship/pkg/buffer"
	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/outcome"
	"github.com/bft-labs/envship/pkg/ratelimit"
)

// Transport performs one delivery attempt.
// *transport.HTTPTransport satisfies this interface.
type Transport interface {
	Send(ctx context.Context, job delivery.Job) (delivery.Result, error)
}

const (
	// DefaultRecordTimeout bounds one Recorder.Record call.
	DefaultRecordTimeout = 5 * time.Second

	// recordLimit bounds concurrent Recorder.Record calls. Outcomes past it are dropped.
	recordLimit = 64
)

// Dispatcher admits jobs and hands them to a Transport.
// It is safe for concurrent use.
type Dispatcher struct {
	transport     Transport
	destination   string
	buffer        *buffer.Buffer
	tracker       *ratelimit.Tracker
	logger        log.Logger
	recorder      outcome.Recorder
	records       *buffer.Buffer
	recordTimeout time.Duration
	clock         func() time.Time
}

// New creates a dispatcher. A nil transport is accepted; every send then
// fails with delivery.ErrNoTransportConfigured.
func New(transport Transport, opts ...Option) *Dispatcher {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.clock == nil {
		o.clock = time.Now
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.buffer == nil {
		o.buffer = buffer.New(o.bufferSize)
	}
	if o.tracker == nil {
		o.tracker = ratelimit.NewTracker(ratelimit.WithClock(o.clock))
	}
	if o.recordTimeout <= 0 {
		o.recordTimeout = DefaultRecordTimeout
	}

	return &Dispatcher{
		transport:     transport,
		destination:   o.destination,
		buffer:        o.buffer,
		tracker:       o.tracker,
		logger:        o.logger,
		recorder:      o.recorder,
		records:       buffer.New(recordLimit),
		recordTimeout: o.recordTimeout,
		clock:         o.clock,
	}
}

// Destination returns the collector URL used by Send.
func (d *Dispatcher) Destination() string {
	return d.destination
}

// Tracker returns the dispatcher's rate-limit state.
func (d *Dispatcher) Tracker() *ratelimit.Tracker {
	return d.tracker
}

// Buffer returns the dispatcher's send buffer.
func (d *Dispatcher) Buffer() *buffer.Buffer {
	return d.buffer
}

// Send delivers payload to the configured destination.
func (d *Dispatcher) Send(ctx context.Context, category delivery.Category, payload []byte) *delivery.Pending {
	return d.SendJob(ctx, delivery.NewJob(category, d.destination, payload, nil))
}

// SendJob submits a prepared job.
//
// The returned future is already settled when the job is rejected locally:
// with *delivery.RateLimitedError while its category is suppressed, or with
// delivery.ErrBufferFull when the buffer is at capacity. Neither case makes a
// network call.
//
// Cancelling ctx after SendJob returns does not abort the delivery.
func (d *Dispatcher) SendJob(ctx context.Context, job delivery.Job) *delivery.Pending {
	rejected := delivery.Result{JobID: job.ID, Category: job.Category, Status: delivery.StatusRejectedLocally}

	if d.transport == nil {
		return delivery.Settled(rejected, delivery.ErrNoTransportConfigured)
	}
	if !job.Category.Valid() {
		return delivery.Settled(rejected, fmt.Errorf("%w: %q", delivery.ErrUnknownCategory, job.Category))
	}

	if until := d.tracker.DisabledUntil(job.Category); until.After(d.clock()) {
		err := &delivery.RateLimitedError{Category: job.Category, Until: until}
		d.logger.Debug("dropping rate limited job",
			log.JobID(job.ID),
			log.Category(job.Category),
			log.Time("until", until),
		)
		d.record(job.Category, err)
		return delivery.Settled(rejected, err)
	}

	if !d.buffer.IsReady() {
		return d.rejectFull(job, rejected)
	}

	sendCtx := context.WithoutCancel(ctx)
	p, err := d.buffer.Add(func() (delivery.Result, error) {
		return d.deliver(sendCtx, job)
	})
	if errors.Is(err, delivery.ErrBufferFull) {
		// Lost the race for the last slot.
		return d.rejectFull(job, rejected)
	}
	if err != nil {
		return delivery.Settled(rejected, err)
	}
	return p
}

// Close waits up to timeout for in-flight jobs, then for outcomes still being
// recorded. It reports whether the job buffer drained. A non-positive timeout
// selects buffer.DefaultDrainTimeout.
func (d *Dispatcher) Close(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = buffer.DefaultDrainTimeout
	}
	deadline := time.Now().Add(timeout)

	drained := d.buffer.Drain(timeout)
	if !drained {
		d.logger.Warn("in-flight jobs still pending after drain timeout",
			log.Int("pending", d.buffer.Len()),
			log.Duration("timeout", timeout),
		)
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	if !d.Flush(remaining) {
		d.logger.Warn("outcomes still being recorded after drain timeout",
			log.Int("pending", d.records.Len()),
		)
	}
	return drained
}

// Flush waits up to timeout for outcomes handed to the Recorder and reports
// whether all of them were written.
func (d *Dispatcher) Flush(timeout time.Duration) bool {
	return d.records.Drain(timeout)
}

func (d *Dispatcher) rejectFull(job delivery.Job, rejected delivery.Result) *delivery.Pending {
	d.logger.Debug("dropping job, send buffer full",
		log.JobID(job.ID),
		log.Category(job.Category),
		log.Int("limit", d.buffer.Limit()),
	)
	d.record(job.Category, delivery.ErrBufferFull)
	return delivery.Settled(rejected, delivery.ErrBufferFull)
}

// deliver runs on a buffer goroutine.
func (d *Dispatcher) deliver(ctx context.Context, job delivery.Job) (delivery.Result, error) {
	res, err := d.transport.Send(ctx, job)
	if res.JobID == "" {
		res.JobID = job.ID
	}
	if res.Category == "" {
		res.Category = job.Category
	}

	if d.tracker.Apply(res.RateLimits) {
		d.logger.Warn("rate limits applied",
			log.JobID(job.ID),
			log.Int("status", res.Code),
			log.Any("limits", d.tracker.Snapshot()),
		)
	}

	if err != nil {
		d.logger.Error("delivery failed",
			log.JobID(job.ID),
			log.Category(job.Category),
			log.Err(err),
		)
		d.record(job.Category, err)
		return res, err
	}

	d.logger.Debug("delivered",
		log.JobID(job.ID),
		log.Category(job.Category),
		log.Int("status", res.Code),
		log.Int("bytes", job.Size()),
	)
	return res, nil
}

// record hands the outcome of err to the Recorder in the background, so
// neither rejections nor buffer slots wait on it.
func (d *Dispatcher) record(category delivery.Category, err error) {
	if d.recorder == nil {
		return
	}
	reason, ok := outcome.Classify(err)
	if !ok {
		return
	}
	o := outcome.Outcome{Category: category, Reason: reason, Quantity: 1, At: d.clock()}

	_, addErr := d.records.Add(func() (delivery.Result, error) {
		ctx, cancel := context.WithTimeout(context.Background(), d.recordTimeout)
		defer cancel()
		if rerr := d.recorder.Record(ctx, o); rerr != nil {
			d.logger.Warn("record outcome", log.Category(category), log.Err(rerr))
			return delivery.Result{}, rerr
		}
		return delivery.Result{}, nil
	})
	if addErr != nil {
		d.logger.Warn("outcome dropped, recorder busy",
			log.Category(category),
			log.String("reason", string(reason)),
		)
	}
}
