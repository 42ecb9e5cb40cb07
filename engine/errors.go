package engine

import "errors"

// Error taxonomy for the public engine API.
var (
	// ErrInvalidParameters is returned from New when the Parameters
	// snapshot is unusable (bad sample rate, unsupported format, payload
	// length out of range). The instance is never created.
	ErrInvalidParameters = errors.New("soundmodem: invalid parameters")

	// ErrInvalidArgument is returned from Init when the payload, volume,
	// or protocol/mode combination is rejected. The Engine remains usable.
	ErrInvalidArgument = errors.New("soundmodem: invalid argument")

	// ErrFixedLengthRequired is returned from Init when a dual-tone
	// (extra==2) protocol is selected while the Engine is in
	// variable-length mode.
	ErrFixedLengthRequired = errors.New("soundmodem: protocol requires fixed-length mode")

	// ErrEncodeFailed covers resampler overflow or a refusing output
	// callback during Encode.
	ErrEncodeFailed = errors.New("soundmodem: encode failed")

	// ErrDecodeFailed is the sentinel surfaced from TakeRxData when a
	// candidate message was detected but Reed-Solomon could not correct
	// it. Distinct from "no message yet", which returns length 0 with a
	// nil error.
	ErrDecodeFailed = errors.New("soundmodem: could not correct received data")

	// ErrCaptureInconsistent means the input callback returned a byte
	// count that isn't a multiple of the sample size, or more bytes than
	// were requested. The receive buffer is reset; the Engine continues.
	ErrCaptureInconsistent = errors.New("soundmodem: capture callback returned inconsistent byte count")
)
