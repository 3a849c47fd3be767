package gemini

import "errors"

var (
	// ErrInvalidConfig is returned by New for unusable settings.
	ErrInvalidConfig = errors.New("invalid gemini configuration")
	// ErrInvalidResponse means the model replied with something that is not
	// a valid analysis.
	ErrInvalidResponse = errors.New("invalid response from gemini")
	// ErrContentBlocked means safety filters stopped the reply.
	ErrContentBlocked = errors.New("content blocked by safety filters")
	// ErrTransientFailure means every attempt failed with a retryable error.
	ErrTransientFailure = errors.New("transient gemini failure")
)
