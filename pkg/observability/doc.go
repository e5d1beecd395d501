/*
Package observability exposes Prometheus metrics for tool calls and sessions.

Metrics implements the dispatcher and session observer hooks, so wiring it is a
matter of passing it as an option to both.
*/
package observability
