// File: api/actor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Actor is the scheduler's view of an actor: a comparable handle with a
// single entry point that drains the actor's currently pending messages.
//
// Implementations must use pointer receivers (handles are map keys). The
// pool keeps the handle only while it is queued or running; ownership stays
// with the actor runtime.
type Actor interface {
	ProcessMessages() error
}

// ActorFunc adapts a plain function into an Actor. Always pass it by pointer.
type ActorFunc struct {
	Fn func() error
}

// ProcessMessages calls a.Fn.
func (a *ActorFunc) ProcessMessages() error { return a.Fn() }
