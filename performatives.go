package uamqp

import (
	"encoding/binary"
)

type amqpType uint8

// Type codes
const (
	typeCodeSmallUlong amqpType = 0x53 // unsigned long value in the range 0 to 255 inclusive (1)
	typeCodeUlong      amqpType = 0x80 // 64-bit unsigned integer in network byte order (8)

	// Composites
	typeCodeOpen        amqpType = 0x10
	typeCodeBegin       amqpType = 0x11
	typeCodeAttach      amqpType = 0x12
	typeCodeFlow        amqpType = 0x13
	typeCodeTransfer    amqpType = 0x14
	typeCodeDisposition amqpType = 0x15
	typeCodeDetach      amqpType = 0x16
	typeCodeEnd         amqpType = 0x17
	typeCodeClose       amqpType = 0x18

	typeCodeSASLMechanism amqpType = 0x40
	typeCodeSASLInit      amqpType = 0x41
	typeCodeSASLChallenge amqpType = 0x42
	typeCodeSASLResponse  amqpType = 0x43
	typeCodeSASLOutcome   amqpType = 0x44
)

var performativeNames = map[amqpType]string{
	typeCodeOpen:        "open",
	typeCodeBegin:       "begin",
	typeCodeAttach:      "attach",
	typeCodeFlow:        "flow",
	typeCodeTransfer:    "transfer",
	typeCodeDisposition: "disposition",
	typeCodeDetach:      "detach",
	typeCodeEnd:         "end",
	typeCodeClose:       "close",
}

var saslFrameNames = map[amqpType]string{
	typeCodeSASLMechanism: "sasl-mechanisms",
	typeCodeSASLInit:      "sasl-init",
	typeCodeSASLChallenge: "sasl-challenge",
	typeCodeSASLResponse:  "sasl-response",
	typeCodeSASLOutcome:   "sasl-outcome",
}

// peekFrameBodyType returns the descriptor code of the described type at
// the start of a frame body.
func peekFrameBodyType(body []byte) (amqpType, error) {
	if len(body) < 3 || body[0] != 0 {
		return 0, errorNew("invalid frame body header")
	}

	switch amqpType(body[1]) {
	case typeCodeSmallUlong:
		return amqpType(body[2]), nil
	case typeCodeUlong:
		if len(body) < 10 {
			return 0, errorNew("invalid frame body header")
		}
		code := binary.BigEndian.Uint64(body[2:])
		if code > 0xff {
			return 0, errorErrorf("unknown descriptor code %#x", code)
		}
		return amqpType(code), nil
	}
	return 0, errorErrorf("invalid descriptor constructor %#02x", body[1])
}

// PerformativeName names the performative carried in the body of an AMQP
// frame, or the SASL frame body of a SASL frame.
func PerformativeName(frameType uint8, body []byte) (string, error) {
	code, err := peekFrameBodyType(body)
	if err != nil {
		return "", err
	}

	names := performativeNames
	if frameType == FrameTypeSASL {
		names = saslFrameNames
	}
	name, ok := names[code]
	if !ok {
		return "", errorErrorf("unknown performative type %#02x for frame type %#02x", code, frameType)
	}
	return name, nil
}
