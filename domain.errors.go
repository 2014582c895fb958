package main

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrIDMismatch         = errors.New("path id and payload id do not match")
	ErrBookAlreadyOwned   = errors.New("book is already in the user collection")
	ErrDuplicateUserName  = errors.New("username is already taken")
	ErrBadCredentials     = errors.New("bad credentials")
	ErrMissingPassword    = errors.New("missing Password header")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidPayload     = errors.New("invalid request payload")
	ErrCatalogUnavailable = errors.New("book catalog is unavailable")
	ErrCatalogMalformed   = errors.New("book catalog returned a malformed record")
)

// StatusFromError maps a service error onto the http status code sent to clients.
func StatusFromError(err error) int {
	var verrs validation.Errors
	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIDMismatch),
		errors.Is(err, ErrBookAlreadyOwned),
		errors.Is(err, ErrMissingPassword),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidPayload),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateUserName):
		return http.StatusConflict
	case errors.Is(err, ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrCatalogUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
