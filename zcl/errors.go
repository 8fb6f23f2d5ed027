package zcl

import "errors"

// Protocol-level errors. Codec errors from malformed frames reuse
// wire.ErrBufferTooShort/wire.ErrUnknownTypeCode.
var (
	// ErrInvalidResponse is returned when a reply's TSN or cluster does
	// not match the request it is correlated against.
	ErrInvalidResponse = errors.New("zcl: invalid response")

	// ErrBadArgument is returned for malformed command parameters that
	// are the caller's fault rather than a wire decode failure.
	ErrBadArgument = errors.New("zcl: bad argument")

	// ErrFrameTooShort is returned when a buffer does not contain a
	// complete frame header.
	ErrFrameTooShort = errors.New("zcl: frame too short")
)
