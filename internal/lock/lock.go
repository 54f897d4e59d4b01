// Package lock provides per-user advisory locks. They only shorten the window
// in which two requests for the same user race; uniqueness and balance rules
// are still enforced by the database.
package lock

import (
	"context"

	"tiffin-app-go/internal/apperr"
)

var ErrBusy = apperr.Conflict("request_in_progress", "another request for this account is in progress")

type Locker interface {
	// Acquire blocks briefly for key and returns a release func.
	// It fails with ErrBusy when the lock stays held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type nop struct{}

func (nop) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

func Nop() Locker {
	return nop{}
}

func UserKey(scope, userID string) string {
	return "user:" + userID + ":" + scope
}
