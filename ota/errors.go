package ota

import "errors"

// ErrNoImageAvailable is returned by Engine.QueryNextImage when no
// provider has an image matching the device's request.
var ErrNoImageAvailable = errors.New("ota: no image available")

// ErrDownloadFailed wraps a provider-level fetch failure (network
// error, bad status, truncated body).
var ErrDownloadFailed = errors.New("ota: download failed")

// ErrInvalidImage is returned when a provider's bytes do not parse as
// a well-formed Zigbee OTA image.
var ErrInvalidImage = errors.New("ota: invalid image")

// ErrUnknownTransfer is returned when Image-Block-Request or
// Upgrade-End-Request names a device with no in-progress transfer.
var ErrUnknownTransfer = errors.New("ota: unknown transfer")

// ErrOffsetOutOfRange is returned when a block request's offset falls
// outside the image being transferred.
var ErrOffsetOutOfRange = errors.New("ota: offset out of range")
