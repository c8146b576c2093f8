// errors/user_errors.go
package errors

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidUserData   = errors.New("invalid user data")
	ErrUserConflict      = errors.New("user conflict")
	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)
