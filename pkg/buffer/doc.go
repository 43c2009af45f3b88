// Package buffer bounds the number of in-flight deliveries.
//
// [Buffer.Add] admits a task only while fewer than the configured limit are
// outstanding and runs it on its own goroutine. The slot is released when the
// task returns, before its Pending settles. Admission never blocks: a full buffer fails fast with
// delivery.ErrBufferFull so callers can drop best-effort telemetry.
//
// [Buffer.Drain] waits for outstanding tasks at shutdown. It stops waiting
// when its timeout elapses but never cancels running tasks.
//
// # Usage
//
//	b := buffer.New(30)
//	p, err := b.Add(func() (delivery.Result, error) {
//	    return transport.Send(ctx, job)
//	})
//	if err != nil {
//	    // delivery.ErrBufferFull
//	}
//	res, err := p.Wait(ctx)
//
//	// at shutdown
//	if !b.Drain(2 * time.Second) {
//	    // some deliveries were still in flight
//	}
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package buffer
