// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Actor identifies who triggered an operation: a warehouse worker, a
// supervisor, or a background job such as the reorder scheduler.
type Actor struct {
	UserID string
	Roles  []string
	System bool
}

type actorContextKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns Actor from context.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetUserID returns the actor's user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}

// SystemActor returns an actor for background jobs.
func SystemActor(name string) *Actor {
	return &Actor{UserID: name, System: true}
}
