package errors

import "errors"

var (
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrInvalidAssignmentData   = errors.New("invalid assignment data")
	ErrInvalidStatusTransition = errors.New("invalid assignment status transition")
)
