// Package domain holds the core types of the travel assistant: conversation
// messages, the durable session and flight-attempt state, the tool-call
// approval lifecycle, and the contract errors shared by every layer.
//
// The types here carry no behavior beyond invariant enforcement; all
// mutation happens through node updates applied by the runtime engine.
package domain
