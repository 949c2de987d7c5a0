// Package dashboard implements best-effort synchronization with a remote
// usage dashboard: pricing configuration flows in, reconciliation logs
// flow out. The metering engine stays fully functional when the dashboard
// is unreachable; nothing in this package ever fails a metered call.
//
// # Subscription
//
// The configuration subscription is an explicit state machine:
//
//	Unsubscribed --Subscribe--> AttemptingStream
//	AttemptingStream --open--> StreamActive
//	AttemptingStream --failure or 10s timeout--> Polling
//	StreamActive --server close--> AttemptingStream (after 5s)
//	any state --Unsubscribe--> Unsubscribed
//
// StreamActive delivers configuration updates pushed by the server over a
// server-sent-events connection. Polling fetches the configuration
// immediately and then every 30s. Both paths hand each configuration to a
// single typed callback supplied at construction.
//
// Subscribe and Unsubscribe are idempotent and safe to call concurrently;
// at most one stream or polling timer exists per client.
//
// # Outbound Logs
//
// PostReconciliationLog and FetchConfig share one retry discipline: up to
// 4 attempts with 500ms/1s/2s pauses between them and a 5s timeout per
// attempt. Exhausted retries produce an *APIError naming the last HTTP
// status; the call wrapper logs and swallows it.
//
// # Testing
//
// All network access goes through the Transport capability interface, so
// tests substitute deterministic fake transports and a fake delay function
// instead of patching global network primitives.
package dashboard
