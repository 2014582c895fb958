package main

import (
	"context"
	"errors"
)

const PrincipalContextKey ContextKey = "request.principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int64
	UserName string
}

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, userName, password string) (Principal, error)
}

type userAuthenticator struct {
	users  UserStorage
	hasher PasswordHasher
}

// NewUserAuthenticator provides an Authenticator backed by the stored users.
func NewUserAuthenticator(users UserStorage, hasher PasswordHasher) Authenticator {
	return &userAuthenticator{users: users, hasher: hasher}
}

// Authenticate resolves the user by username and verifies the password against
// its stored hash. Unknown users and wrong passwords both yield ErrBadCredentials.
func (ua *userAuthenticator) Authenticate(ctx context.Context, userName, password string) (Principal, error) {
	user, err := ua.users.GetByUserName(ctx, userName)
	if errors.Is(err, ErrUserNotFound) {
		return Principal{}, ErrBadCredentials
	}
	if err != nil {
		return Principal{}, err
	}
	if user.Password == "" || !ua.hasher.Matches(password, user.Password) {
		return Principal{}, ErrBadCredentials
	}
	return Principal{UserID: user.ID, UserName: user.UserName}, nil
}

// GetPrincipalFromContext returns the authenticated caller if any.
func GetPrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(Principal)
	return p, ok
}
