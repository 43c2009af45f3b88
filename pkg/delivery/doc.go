// Package delivery contains the value types shared by every stage of the
// envship pipeline.
//
// A caller hands the pipeline an opaque, already-serialized payload tagged
// with a [Category]. The dispatcher turns it into an immutable [Job], the
// transport turns the HTTP exchange into a [Result], and the caller observes
// the outcome through a [Pending] future.
//
// # Entities
//
//   - [Category]: payload kind, used as the rate-limit partition key
//   - [Job]: one delivery attempt (destination, body, header overrides)
//   - [Result]: outcome of one attempt plus any rate-limit headers received
//   - [Pending]: single-assignment future settled once per job
//
// # Errors
//
// Local rejections ([RateLimitedError], [ErrBufferFull]) never touch the
// network. Remote failures are reported as [HTTPError] or [TransportError].
// All of them can be checked with errors.Is against the sentinels in
// errors.go.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package delivery
