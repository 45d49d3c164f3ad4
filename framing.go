package uamqp

import (
	"encoding/binary"
	"io"
)

/*
	header (8 bytes)
		0-3:	SIZE (total size, at least 8 bytes for header, uint32)
		4: 		DOFF (data offset, at least 2, count of 4 bytes words, uint8)
		5:		TYPE (frame type)
					0x0: AMQP
					0x1: SASL
		6-7:	TYPE dependent
	extended header (opt, continues the TYPE dependent area up to DOFF*4)
	body (opt)
*/

// Frame Types
const (
	FrameTypeAMQP = 0x0
	FrameTypeSASL = 0x1
)

const (
	frameHeaderSize = 8

	// bytes of the fixed header that precede the type-specific area
	frameFixedHeaderSize = 6

	// doff is a single byte, so the type-specific area tops out at 255 words
	maxTypeSpecificSize = 255*4 - frameFixedHeaderSize
)

type frameHeader struct {
	// size: an unsigned 32-bit integer that MUST contain the total frame size of the frame header,
	// extended header, and frame body. The frame is malformed if the size is less than the size of
	// the frame header (8 bytes).
	size uint32
	// doff: gives the position of the body within the frame. The value of the data offset is an
	// unsigned, 8-bit integer specifying a count of 4-byte words. Due to the mandatory 8-byte
	// frame header, the frame is malformed if the value is less than 2.
	dataOffset uint8
	frameType  uint8
}

// newFrameHeader computes the header for a frame carrying typeSpecificLen
// bytes of type-specific data followed by bodyLen bytes of body.
func newFrameHeader(frameType uint8, typeSpecificLen int, bodyLen uint64) (frameHeader, error) {
	if typeSpecificLen > maxTypeSpecificSize {
		return frameHeader{}, errorWrapf(ErrInvalidArgument, "type-specific size %d exceeds %d", typeSpecificLen, maxTypeSpecificSize)
	}

	doff := (typeSpecificLen + frameFixedHeaderSize + 3) / 4
	if doff < 2 {
		doff = 2
	}

	size := uint64(doff)*4 + bodyLen
	if size > uint64(^uint32(0)) {
		return frameHeader{}, errorWrapf(ErrFrameTooLarge, "frame size %d does not fit the size field", size)
	}

	return frameHeader{
		size:       uint32(size),
		dataOffset: uint8(doff),
		frameType:  frameType,
	}, nil
}

func (fh frameHeader) dataOffsetBytes() int {
	return int(fh.dataOffset) * 4
}

func (fh frameHeader) typeSpecificSize() int {
	return fh.dataOffsetBytes() - frameFixedHeaderSize
}

func (fh frameHeader) bodySize() int {
	return int(fh.size) - fh.dataOffsetBytes()
}

// validate reports whether the header describes a well formed frame
// no larger than maxFrameSize.
func (fh frameHeader) validate(maxFrameSize uint32) error {
	if fh.size < frameHeaderSize {
		return errorErrorf("frame size %d, must be at least %d bytes", fh.size, frameHeaderSize)
	}
	if fh.size > maxFrameSize {
		return errorWrapf(ErrFrameTooLarge, "frame size %d, max frame size %d", fh.size, maxFrameSize)
	}
	return nil
}

// marshalTo writes the fixed portion of the header into buf[:6].
func (fh frameHeader) marshalTo(buf []byte) {
	binary.BigEndian.PutUint32(buf, fh.size)
	buf[4] = fh.dataOffset
	buf[5] = fh.frameType
}

// ProtoID identifies the protocol announced by a protocol header.
type ProtoID uint8

// Protocol IDs
const (
	ProtoAMQP ProtoID = 0x0
	ProtoTLS  ProtoID = 0x2
	ProtoSASL ProtoID = 0x3
)

func (p ProtoID) String() string {
	switch p {
	case ProtoAMQP:
		return "AMQP"
	case ProtoTLS:
		return "TLS"
	case ProtoSASL:
		return "SASL"
	}
	return "Unknown"
}

// ProtoHeader is the 8 byte header exchanged before any frames:
// "AMQP" followed by the protocol ID and the version.
type ProtoHeader struct {
	ProtoID  ProtoID
	Major    uint8
	Minor    uint8
	Revision uint8
}

const protoHeaderSize = 8

var protoMagic = []byte("AMQP")

// IsProtoHeader reports whether buf starts with the protocol header magic.
func IsProtoHeader(buf []byte) bool {
	return len(buf) >= len(protoMagic) && string(buf[:len(protoMagic)]) == string(protoMagic)
}

// ParseProtoHeader parses an 8 byte protocol header. Only version 1.0.0
// is accepted.
func ParseProtoHeader(buf []byte) (ProtoHeader, error) {
	var p ProtoHeader
	if len(buf) != protoHeaderSize {
		return p, errorErrorf("expected protocol header to be %d bytes, not %d", protoHeaderSize, len(buf))
	}
	if !IsProtoHeader(buf) {
		return p, errorErrorf("unexpected protocol %q", buf[:4])
	}

	p = ProtoHeader{
		ProtoID:  ProtoID(buf[4]),
		Major:    buf[5],
		Minor:    buf[6],
		Revision: buf[7],
	}
	if p.Major != 1 || p.Minor != 0 || p.Revision != 0 {
		return p, errorErrorf("unexpected protocol version %d.%d.%d", p.Major, p.Minor, p.Revision)
	}
	return p, nil
}

// ReadProtoHeader reads and parses a protocol header from r.
func ReadProtoHeader(r io.Reader) (ProtoHeader, error) {
	var buf [protoHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ProtoHeader{}, errorWrapf(err, "reading protocol header")
	}
	return ParseProtoHeader(buf[:])
}

// WriteProtoHeader writes the version 1.0.0 protocol header for id to w.
func WriteProtoHeader(w io.Writer, id ProtoID) error {
	buf := append(append(make([]byte, 0, protoHeaderSize), protoMagic...), byte(id), 1, 0, 0)
	_, err := w.Write(buf)
	return errorWrapf(err, "writing protocol header")
}
