// Package model defines the provider-agnostic abstractions for requesting
// completions from language models inside Agendum.
//
// Core goals:
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight stubbing for tests (StubModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so the conversation driver remains decoupled from vendor SDKs.
package model
