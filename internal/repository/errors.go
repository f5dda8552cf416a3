// Package repository implements persistence against the shared MySQL store.
// Sentinel errors defined here let handlers map failure scenarios onto HTTP
// responses without inspecting driver errors.  The availability sentinel for
// rejected seat commits is engine.ErrSeatsTaken, owned by the interface the
// SeatRepo satisfies.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by another user.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registration hits the unique index on
// users.email.  Handlers translate this into 409.
var ErrEmailExists = errors.New("email already exists")
