// Package lifetime implements the Lifetime Controller.
//
// A Controller runs one feed connection through the connection manager for
// a bounded wall-clock duration. When the duration elapses or the parent
// context is cancelled, the session's context is cancelled so the socket is
// closed and an in-flight read returns, and the manager is stopped within
// the shutdown timeout.
package lifetime
