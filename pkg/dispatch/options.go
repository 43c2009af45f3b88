package dispatch

import (
	"time"

	"github.com/bft-labs/envship/pkg/buffer"
	"github.com/bft-labs/envship/pkg/log"
	"github.com/bft-labs/envship/pkg/outcome"
	"github.com/bft-labs/envship/pkg/ratelimit"
)

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	destination string
	buffer      *buffer.Buffer
	bufferSize  int
	tracker     *ratelimit.Tracker
	logger      log.Logger
	recorder    outcome.Recorder
	clock       func() time.Time

	recordTimeout time.Duration
}

// WithDestination sets the collector URL used by Send.
func WithDestination(url string) Option {
	return func(o *options) {
		o.destination = url
	}
}

// WithBuffer uses an existing buffer. It wins over WithBufferSize.
func WithBuffer(b *buffer.Buffer) Option {
	return func(o *options) {
		o.buffer = b
	}
}

// WithBufferSize sets the in-flight limit of the dispatcher's own buffer.
// Default: buffer.DefaultLimit.
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithTracker uses an existing rate-limit tracker.
func WithTracker(t *ratelimit.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder reports discarded payloads to r.
func WithRecorder(r outcome.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithClock sets the time source of the dispatcher and of the tracker it creates.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRecordTimeout bounds each Recorder.Record call.
// Default: DefaultRecordTimeout.
func WithRecordTimeout(d time.Duration) Option {
	return func(o *options) {
		o.recordTimeout = d
	}
}
