// Package workers runs the background jobs of an interactive session.
//
// A Worker is started with a context and stopped explicitly; Workers starts
// and stops a set of them together.
package workers

import "context"

// Worker is a background job with an explicit lifecycle.
//
// Start must not block: the job runs in its own goroutine until ctx is
// cancelled or Stop is called. Stop blocks until that goroutine has exited
// and is a no-op when the job is not running.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// IdleLocker locks itself once it has been idle for too long.
// It is satisfied by *session.Store.
type IdleLocker interface {
	LockIfIdle() bool
}
