package domain

import "errors"

var (
	// ErrValidation marks a missing or malformed field. Surfaced to the caller.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown room. Surfaced to the caller.
	ErrNotFound = errors.New("room not found")
	// ErrUnauthorized marks a host-only action from a non-host. Never surfaced.
	ErrUnauthorized = errors.New("not allowed")
	// ErrStaleRound marks an action aimed at a round that is no longer current. Never surfaced.
	ErrStaleRound = errors.New("stale round")
	// ErrUpstreamUnavailable marks a failed venue lookup. Recovered by fallback.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrRoomsUnavailable means no free room id was found.
	ErrRoomsUnavailable = errors.New("no available rooms")
	// ErrRoomClosed is returned by a session that was already destroyed.
	ErrRoomClosed = errors.New("room closed")
)
