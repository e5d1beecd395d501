/*
Package session tracks transport sessions.

A session is bookkeeping for a client connection: the HTTP transport opens one per
initialize handshake and the pipe transport opens one for the process lifetime.
Sessions carry no state visible to tool handlers. Stores expire idle sessions
after a TTL, so Resume refreshes the session on every request.
*/
package session
