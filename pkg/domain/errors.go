package domain

import "errors"

// ErrUnknownTool is returned when a call names a tool that is not registered.
// The capitalized message is part of the response text seen by clients.
var ErrUnknownTool = errors.New("Unknown tool")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")
