package domain

import (
	"context"
	"time"
)

// User is a SACCO member.
type User struct {
	CreatedAt      time.Time
	ID             string
	Name           string
	Email          string
	Phone          string
	HashedPassword string
}

type userContextKey struct{}

// ContextWithUser returns a copy of ctx carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user stored by ContextWithUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}
