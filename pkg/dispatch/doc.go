// Package dispatch is the entry point of the delivery pipeline.
//
// A Dispatcher combines a rate-limit tracker, a send buffer and a transport:
//
//	caller -> Send -> rate-limit check -> buffer admission -> transport
//	                                                            |
//	caller <- Pending <- tracker.Apply(response headers) <------+
//
// Sends for a suppressed category and sends arriving while the buffer is
// full are rejected locally with no network call. Every response, successful
// or not, feeds its rate-limit headers back into the tracker. There are no
// automatic retries.
//
// Discarded jobs are reported to the optional outcome.Recorder in the
// background. Close and Flush wait for those writes.
//
// # Usage
//
//	tr, err := transport.New(transport.Config{AuthHeader: auth})
//	if err != nil {
//	    return err
//	}
//	d := dispatch.New(tr, dispatch.WithDestination(endpoint))
//	p := d.Send(ctx, delivery.CategoryError, payload)
//	res, err := p.Wait(ctx)
//	...
//	d.Close(2 * time.Second)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package dispatch
