package worker

import "errors"

var (
	// ErrNotInitialized is returned by a build before the default
	// stylesheet has been compiled.
	ErrNotInitialized = errors.New("compiler not initialized")

	// ErrWorkerNotReady is returned by language features before any design
	// system has been derived.
	ErrWorkerNotReady = errors.New("worker not ready")

	// ErrWorkerClosed is returned by calls made after Close.
	ErrWorkerClosed = errors.New("worker closed")

	// ErrModelNotFound is returned when no mirrored document has the
	// requested URI. It is wrapped with the URI.
	ErrModelNotFound = errors.New("model not found")
)
