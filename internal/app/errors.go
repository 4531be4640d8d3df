package service

import "errors"

// Sentinel kinds returned by the service.
var (
	ErrModel    = errors.New("model prediction failed")
	ErrNotReady = errors.New("model not ready")
)
