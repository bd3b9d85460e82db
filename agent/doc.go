// Package agent contains the conversation driver: the bounded loop that
// alternates model completions with tool execution until the model stops
// requesting tools, the round cap is reached, or orchestration fails. A
// Driver handles exactly one execution and reports progress through a
// core.Emitter as it goes.
package agent
