package domain

import "errors"

var (
	// Common domain errors
	ErrCourseNotFound  = errors.New("course not found")
	ErrLangUnsupported = errors.New("course does not support requested language")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingAPIKey   = errors.New("icon search API key is not set")
	ErrPoolStopped     = errors.New("worker pool stopped")
)
