package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist remotely.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the auth collaborator rejects a call.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRemoteRejected is returned when the server refuses a mutation;
	// the wrapped detail carries the server-provided message when available.
	ErrRemoteRejected = errors.New("remote rejected request")
)
