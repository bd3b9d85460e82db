package core

// Emitter delivers execution events to the subscribing client. The driver
// running an execution is the only writer; ordering on the wire is exactly
// the emission order it chooses. Implementations must not buffer beyond the
// transport's own flow control and must not replay.
type Emitter interface {
	Emit(event ExecutionEvent)
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(ExecutionEvent)

// Emit implements Emitter.
func (f EmitterFunc) Emit(event ExecutionEvent) { f(event) }

// ChannelEmitter is a single-producer event sequence backed by a channel.
// The driver writes, the transport layer drains. Close after the final
// completion event has been emitted.
type ChannelEmitter struct {
	ch chan ExecutionEvent
}

// NewChannelEmitter creates a ChannelEmitter with the given buffer size.
// A small buffer decouples the driver from a momentarily slow consumer
// without accumulating history.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelEmitter{ch: make(chan ExecutionEvent, buffer)}
}

// Emit pushes the event, blocking until the consumer (or buffer) accepts it.
func (e *ChannelEmitter) Emit(event ExecutionEvent) { e.ch <- event }

// Events returns the receive side consumed by the transport.
func (e *ChannelEmitter) Events() <-chan ExecutionEvent { return e.ch }

// Close signals end of stream. Emit must not be called afterwards.
func (e *ChannelEmitter) Close() { close(e.ch) }
