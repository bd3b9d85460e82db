// Package core provides the foundational domain types shared across Agendum:
//
//   - Content / Part (role-based conversation segments: text, function call,
//     function response)
//   - ExecutionEvent (the discriminated log/completion union streamed to
//     clients during a task execution)
//   - Emitter (single-producer event delivery the driver writes to)
//
// The package intentionally keeps implementation concerns (model providers,
// tool handlers, transports) out of scope, exposing small types so higher
// layers stay decoupled from each other.
package core
