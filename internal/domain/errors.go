package domain

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrNotConfigured     = errors.New("not configured")
	ErrProviderFailure   = errors.New("provider failure")
	ErrAcquisitionFailed = errors.New("acquisition failed")
	ErrPollTimeout       = errors.New("generation timed out")
)
