package uamqp

import (
	"github.com/sirupsen/logrus"
)

const defaultMaxFrameSize = 512

// FrameReceivedFunc is called with the type-specific bytes and body of
// each decoded frame. body is nil for frames without a body. Both slices
// are owned by the callee.
type FrameReceivedFunc func(typeSpecific, body []byte)

// BytesEncodedFunc receives the bytes of an encoded frame. complete is
// true on the final call for the frame.
type BytesEncodedFunc func(b []byte, complete bool)

// decodeState tracks which part of a frame ReceiveBytes expects next.
type decodeState uint8

const (
	decodeFrameSize decodeState = iota
	decodeDataOffset
	decodeFrameType
	decodeTypeSpecific
	decodeFrameBody

	// terminal; only Destroy leaves it
	decodeError
)

func (s decodeState) String() string {
	switch s {
	case decodeFrameSize:
		return "frame size"
	case decodeDataOffset:
		return "data offset"
	case decodeFrameType:
		return "frame type"
	case decodeTypeSpecific:
		return "type specific"
	case decodeFrameBody:
		return "frame body"
	case decodeError:
		return "error"
	}
	return "unknown"
}

// FrameCodecOption is a function for configuring a FrameCodec.
type FrameCodecOption func(*FrameCodec) error

// FrameCodecMaxFrameSize sets the initial maximum frame size.
//
// Default: 512.
func FrameCodecMaxFrameSize(n uint32) FrameCodecOption {
	return func(c *FrameCodec) error {
		if n < frameHeaderSize {
			return errorWrapf(ErrInvalidArgument, "max frame size %d, must be at least %d", n, frameHeaderSize)
		}
		c.maxFrameSize = n
		return nil
	}
}

// FrameCodecAllocator sets the Allocator used for frame buffers.
func FrameCodecAllocator(a Allocator) FrameCodecOption {
	return func(c *FrameCodec) error {
		if a == nil {
			return errorWrapf(ErrInvalidArgument, "nil allocator")
		}
		c.alloc = a
		return nil
	}
}

// FrameCodec splits a byte stream into AMQP frames and encodes frames
// for sending.
//
// Decoding is incremental: ReceiveBytes accepts arbitrary chunks and
// dispatches each complete frame to the subscriber for its frame type.
// A malformed frame puts the codec into a terminal error state.
//
// A FrameCodec is not safe for concurrent use, and ReceiveBytes must not
// be called from a FrameReceivedFunc.
type FrameCodec struct {
	onDecodeError func(error)
	alloc         Allocator
	maxFrameSize  uint32
	subscriptions map[uint8]FrameReceivedFunc
	log           *logrus.Entry
	destroyed     bool

	// decode progress, carried across ReceiveBytes calls
	state        decodeState
	received     int // bytes received for the current state
	header       frameHeader
	typeSpecific []byte
	body         []byte
}

// NewFrameCodec returns a FrameCodec. onDecodeError is called once when
// the codec detects a malformed frame.
func NewFrameCodec(onDecodeError func(error), opts ...FrameCodecOption) (*FrameCodec, error) {
	if onDecodeError == nil {
		return nil, errorWrapf(ErrInvalidArgument, "nil decode error callback")
	}

	c := &FrameCodec{
		onDecodeError: onDecodeError,
		alloc:         heapAllocator{},
		maxFrameSize:  defaultMaxFrameSize,
		subscriptions: make(map[uint8]FrameReceivedFunc),
		log:           logger().WithField("component", "frame_codec"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *FrameCodec) check() error {
	if c == nil {
		return errorWrapf(ErrInvalidArgument, "nil frame codec")
	}
	if c.destroyed {
		return errorWrapf(ErrDestroyed, "frame codec")
	}
	return nil
}

// Destroy releases all subscriptions and partially decoded buffers.
// Destroy on a nil FrameCodec does nothing.
func (c *FrameCodec) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true
	c.subscriptions = nil
	c.typeSpecific = nil
	c.body = nil
}

// Subscribe registers fn for frames of frameType, replacing any previous
// subscription for the same type.
func (c *FrameCodec) Subscribe(frameType uint8, fn FrameReceivedFunc) error {
	if err := c.check(); err != nil {
		return err
	}
	if fn == nil {
		return errorWrapf(ErrInvalidArgument, "nil frame received callback for type %#02x", frameType)
	}
	c.subscriptions[frameType] = fn
	return nil
}

// Unsubscribe removes the subscription for frameType.
func (c *FrameCodec) Unsubscribe(frameType uint8) error {
	if err := c.check(); err != nil {
		return err
	}
	if _, ok := c.subscriptions[frameType]; !ok {
		return errorWrapf(ErrNotSubscribed, "frame type %#02x", frameType)
	}
	delete(c.subscriptions, frameType)
	return nil
}

// MaxFrameSize returns the current maximum frame size.
func (c *FrameCodec) MaxFrameSize() uint32 {
	if c == nil {
		return 0
	}
	return c.maxFrameSize
}

// SetMaxFrameSize changes the maximum frame size. The new limit applies
// to the frame being decoded as soon as its size is known. It fails if
// size is below 8, if the codec is in the error state, or if the frame
// being decoded is already known to be larger than size.
func (c *FrameCodec) SetMaxFrameSize(size uint32) error {
	if err := c.check(); err != nil {
		return err
	}
	if size < frameHeaderSize {
		return errorWrapf(ErrInvalidArgument, "max frame size %d, must be at least %d", size, frameHeaderSize)
	}
	if c.state == decodeError {
		return errorWrapf(ErrInvalidState, "frame codec is in the error state")
	}
	if c.state > decodeFrameSize && c.header.size > size {
		return errorWrapf(ErrInvalidArgument, "frame of size %d is being decoded, cannot lower max frame size to %d", c.header.size, size)
	}
	c.maxFrameSize = size
	return nil
}

// ReceiveBytes feeds buf to the decoder. Any number of frames may be
// completed and dispatched during the call.
//
// An empty buf is rejected without affecting decode progress. Once a
// malformed frame has been seen every call returns an error wrapping
// ErrDecode.
func (c *FrameCodec) ReceiveBytes(buf []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	if len(buf) == 0 {
		return errorWrapf(ErrInvalidArgument, "no bytes to decode")
	}
	if c.state == decodeError {
		return errorWrapf(ErrDecode, "frame codec is in the error state")
	}

	for len(buf) > 0 {
		switch c.state {
		case decodeFrameSize:
			c.header.size = c.header.size<<8 | uint32(buf[0])
			buf = buf[1:]
			c.received++
			if c.received < 4 {
				continue
			}
			if err := c.header.validate(c.maxFrameSize); err != nil {
				return c.fail(err)
			}
			c.state = decodeDataOffset

		case decodeDataOffset:
			c.header.dataOffset = buf[0]
			buf = buf[1:]
			if c.header.dataOffset < 2 {
				return c.fail(errorErrorf("data offset %d, must be at least 2", c.header.dataOffset))
			}
			if c.header.dataOffsetBytes() > int(c.header.size) {
				return c.fail(errorErrorf("data offset %d points beyond frame size %d", c.header.dataOffset, c.header.size))
			}
			c.state = decodeFrameType

		case decodeFrameType:
			c.header.frameType = buf[0]
			buf = buf[1:]

			b, err := alloc(c.alloc, c.header.typeSpecificSize())
			if err != nil {
				return c.fail(err)
			}
			c.typeSpecific = b
			c.received = 0
			c.state = decodeTypeSpecific

		case decodeTypeSpecific:
			n := copy(c.typeSpecific[c.received:], buf)
			buf = buf[n:]
			c.received += n
			if c.received < len(c.typeSpecific) {
				continue
			}
			if err := c.typeSpecificDone(); err != nil {
				return err
			}

		case decodeFrameBody:
			n := copy(c.body[c.received:], buf)
			buf = buf[n:]
			c.received += n
			if c.received < len(c.body) {
				continue
			}
			c.dispatch()
		}
	}
	return nil
}

// typeSpecificDone moves on to the body, or dispatches a frame that has
// none.
func (c *FrameCodec) typeSpecificDone() error {
	bodySize := c.header.bodySize()
	if bodySize == 0 {
		c.dispatch()
		return nil
	}
	b, err := alloc(c.alloc, bodySize)
	if err != nil {
		return c.fail(err)
	}
	c.body = b
	c.received = 0
	c.state = decodeFrameBody
	return nil
}

// dispatch hands the completed frame to its subscriber. Decode state is
// reset first so the subscriber may reconfigure the codec.
func (c *FrameCodec) dispatch() {
	frameType, typeSpecific, body := c.header.frameType, c.typeSpecific, c.body
	c.reset()

	framesDecoded.WithLabelValues(frameTypeLabel(frameType)).Inc()

	fn, ok := c.subscriptions[frameType]
	if !ok {
		c.log.WithField("type", frameType).Debug("discarding frame with no subscriber")
		return
	}
	fn(typeSpecific, body)
}

func (c *FrameCodec) reset() {
	c.state = decodeFrameSize
	c.received = 0
	c.header = frameHeader{}
	c.typeSpecific = nil
	c.body = nil
}

func (c *FrameCodec) fail(err error) error {
	c.log.WithError(err).WithField("state", c.state).Warn("frame decode failed")

	c.state = decodeError
	c.typeSpecific = nil
	c.body = nil
	frameDecodeErrors.Inc()

	err = errorWrapf(ErrDecode, "%v", err)
	c.onDecodeError(err)
	return err
}

// EncodeFrame encodes a frame of frameType whose body is the
// concatenation of payloads. typeSpecific is zero padded to the next
// 4 byte boundary of the header. onEncoded is called once with the
// complete frame.
func (c *FrameCodec) EncodeFrame(frameType uint8, payloads [][]byte, typeSpecific []byte, onEncoded BytesEncodedFunc) error {
	if err := c.check(); err != nil {
		return err
	}
	if onEncoded == nil {
		return errorWrapf(ErrInvalidArgument, "nil bytes encoded callback")
	}

	var bodyLen uint64
	for i, p := range payloads {
		if len(p) == 0 {
			return errorWrapf(ErrInvalidArgument, "payload segment %d is empty", i)
		}
		bodyLen += uint64(len(p))
	}

	fh, err := newFrameHeader(frameType, len(typeSpecific), bodyLen)
	if err != nil {
		return err
	}
	if fh.size > c.maxFrameSize {
		return errorWrapf(ErrFrameTooLarge, "frame size %d, max frame size %d", fh.size, c.maxFrameSize)
	}

	buf, err := alloc(c.alloc, int(fh.size))
	if err != nil {
		return err
	}

	fh.marshalTo(buf)
	off := frameFixedHeaderSize
	copy(buf[off:], typeSpecific)
	// padding; the allocator is not required to zero
	for i := off + len(typeSpecific); i < fh.dataOffsetBytes(); i++ {
		buf[i] = 0
	}
	off = fh.dataOffsetBytes()
	for _, p := range payloads {
		off += copy(buf[off:], p)
	}

	framesEncoded.WithLabelValues(frameTypeLabel(frameType)).Inc()
	frameEncodedBytes.Add(float64(len(buf)))

	onEncoded(buf, true)
	return nil
}
