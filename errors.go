package uamqp

import (
	"github.com/pkg/errors"
)

// Errors returned by the frame codec and CBS. Returned errors wrap one of
// these; use errors.Cause to recover it.
var (
	// ErrInvalidArgument is returned when a required argument is missing
	// or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDecode is returned by ReceiveBytes once the codec has seen a
	// malformed frame. The codec stays in the error state afterwards.
	ErrDecode = errors.New("frame decode error")

	// ErrFrameTooLarge is returned when a frame exceeds the maximum frame size.
	ErrFrameTooLarge = errors.New("frame exceeds maximum frame size")

	// ErrDestroyed is returned by a FrameCodec after Destroy.
	ErrDestroyed = errors.New("destroyed")

	// ErrInvalidState is returned when an operation is not permitted in
	// the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotSubscribed is returned by Unsubscribe for an unknown frame type.
	ErrNotSubscribed = errors.New("frame type not subscribed")

	// ErrAllocation is returned when the Allocator cannot supply a buffer.
	ErrAllocation = errors.New("allocation failed")
)

func errorNew(msg string) error {
	return errors.New(msg)
}

func errorErrorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

func errorWrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
