package controller

import "errors"

// Errors returned by the Application Controller's public contract.
var (
	ErrDeliveryFailed     = errors.New("controller: delivery failed")
	ErrTimeout            = errors.New("controller: timeout")
	ErrRadioUnavailable   = errors.New("controller: radio unavailable")
	ErrBackupIncompatible = errors.New("controller: backup incompatible")
	ErrNotInitialized     = errors.New("controller: not started")
	ErrInvalidResponse    = errors.New("controller: invalid response")
)
