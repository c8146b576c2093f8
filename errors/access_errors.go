// errors/access_errors.go
package errors

import "errors"

var (
	ErrGrantNotFound    = errors.New("access grant not found")
	ErrGrantConflict    = errors.New("access grant conflict")
	ErrInvalidGrantData = errors.New("invalid access grant data")
	ErrInvalidScope     = errors.New("invalid or unsupported scope")
	ErrForbidden        = errors.New("actor lacks rights for this operation")
	ErrTargetNotEngineer = errors.New("grant target must have engineer role")
)
