package models

import (
	"context"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// User is the authenticated identity behind an HTTP request or a realtime
// connection. Accounts themselves are managed by an external collaborator;
// this service only consumes validated claims.
type User struct {
	ID   uuid.UUID      `json:"id"`
	Role types.UserRole `json:"role"`

	// SchoolID is set for school/government identities and names the
	// school the identity administers.
	SchoolID *uuid.UUID `json:"school_id,omitempty"`
}

var anonymous = &User{}

func AnonymousUser() *User {
	return anonymous
}

func (u *User) IsAnonymous() bool {
	return u == anonymous
}

func (u *User) IsDriver() bool {
	return u != nil && u.Role == types.RoleDriver
}

type userCtxKey struct{}

var userKey = userCtxKey{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by the auth middleware, or nil.
func UserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(userKey).(*User)
	if !ok {
		return nil
	}
	return user
}
