package session

import "errors"

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrFailedToCreateSession = errors.New("failed to create session")
	ErrFailedToStoreSession  = errors.New("failed to store session")
	ErrFailedToLoadSession   = errors.New("failed to load session")
	ErrFailedToDeleteSession = errors.New("failed to delete session")
)
