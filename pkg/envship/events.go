package envship

import (
	"context"
	"time"

	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/dispatch"
	"github.com/bft-labs/envship/pkg/lifecycle"
)

// State is the lifecycle state of a Client.
type State = lifecycle.State

// Client states.
const (
	StateRunning  = lifecycle.StateRunning
	StateDraining = lifecycle.StateDraining
	StateClosed   = lifecycle.StateClosed
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent is emitted after a 2xx response.
type SendSuccessEvent struct {
	JobID    string
	Category delivery.Category
	Code     int
	Bytes    int
	Duration time.Duration
}

// SendErrorEvent is emitted after a failed delivery attempt.
// Local rejections are not reported here; see WithRecorder.
type SendErrorEvent struct {
	JobID    string
	Category delivery.Category
	Code     int
	Error    error
}

// EventHandler receives client events.
// Send events are called from delivery goroutines and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSendSuccess(event SendSuccessEvent)
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler provides no-op implementations. Embed it to handle a subset.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// eventEmitter adapts EventHandler to lifecycle.EventEmitter.
type eventEmitter struct {
	handler EventHandler
}

func (e *eventEmitter) OnStateChange(previous, current lifecycle.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

// observedTransport reports each attempt to an EventHandler.
type observedTransport struct {
	next    dispatch.Transport
	handler EventHandler
}

func (o *observedTransport) Send(ctx context.Context, job delivery.Job) (delivery.Result, error) {
	start := time.Now()
	res, err := o.next.Send(ctx, job)

	if err != nil {
		o.handler.OnSendError(SendErrorEvent{
			JobID:    job.ID,
			Category: job.Category,
			Code:     res.Code,
			Error:    err,
		})
		return res, err
	}

	o.handler.OnSendSuccess(SendSuccessEvent{
		JobID:    job.ID,
		Category: job.Category,
		Code:     res.Code,
		Bytes:    job.Size(),
		Duration: time.Since(start),
	})
	return res, nil
}
