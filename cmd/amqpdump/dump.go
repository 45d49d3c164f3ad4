package main

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pack.ag/uamqp"
	"pack.ag/uamqp/internal/config"
)

var dumpLogger = logrus.WithField("source", "amqpdump")

// dumper prints the frames decoded from a captured AMQP stream.
type dumper struct {
	w      io.Writer
	hex    bool
	frames int
}

// codecWriter feeds written bytes to a FrameCodec.
type codecWriter struct {
	codec *uamqp.FrameCodec
}

func (cw codecWriter) Write(p []byte) (int, error) {
	if err := cw.codec.ReceiveBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// dump decodes the stream in r and writes a line per protocol header and
// frame to w. It returns the number of frames decoded.
func dump(r io.Reader, w io.Writer, cfg *config.Config) (int, error) {
	d := &dumper{w: w, hex: cfg.Hex}

	codec, err := uamqp.NewFrameCodec(func(err error) {
		dumpLogger.WithError(err).Error("frame decode failed")
	}, uamqp.FrameCodecMaxFrameSize(cfg.MaxFrameSize))
	if err != nil {
		return 0, err
	}
	defer codec.Destroy()

	for _, frameType := range []uint8{uamqp.FrameTypeAMQP, uamqp.FrameTypeSASL} {
		frameType := frameType
		err = codec.Subscribe(frameType, func(typeSpecific, body []byte) {
			d.printFrame(frameType, typeSpecific, body)
		})
		if err != nil {
			return 0, err
		}
	}

	br := bufio.NewReader(r)
	for {
		head, err := br.Peek(4)
		switch {
		case err == io.EOF && len(head) == 0:
			return d.frames, nil
		case err == io.EOF:
			return d.frames, errors.Errorf("truncated stream: %d trailing bytes", len(head))
		case err != nil:
			return d.frames, errors.Wrap(err, "reading stream")
		}

		if uamqp.IsProtoHeader(head) {
			p, err := uamqp.ReadProtoHeader(br)
			if err != nil {
				return d.frames, err
			}
			fmt.Fprintf(w, "protocol header %s %d.%d.%d\n", p.ProtoID, p.Major, p.Minor, p.Revision)
			continue
		}

		// the size goes to the codec first so oversized frames are
		// rejected before their bodies are read
		var size [4]byte
		if _, err = io.ReadFull(br, size[:]); err != nil {
			return d.frames, errors.Wrap(err, "reading frame size")
		}
		if err = codec.ReceiveBytes(size[:]); err != nil {
			return d.frames, err
		}

		rest := int64(binary.BigEndian.Uint32(size[:])) - int64(len(size))
		if _, err = io.CopyN(codecWriter{codec}, br, rest); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return d.frames, errors.Wrap(err, "reading frame")
		}
	}
}

func (d *dumper) printFrame(frameType uint8, typeSpecific, body []byte) {
	d.frames++

	name := "empty"
	if body != nil {
		var err error
		name, err = uamqp.PerformativeName(frameType, body)
		if err != nil {
			dumpLogger.WithError(err).Debug("unrecognized frame body")
			name = "unknown"
		}
	}

	switch frameType {
	case uamqp.FrameTypeAMQP:
		channel := binary.BigEndian.Uint16(typeSpecific)
		fmt.Fprintf(d.w, "frame %d: amqp channel=%d %s body=%d\n", d.frames, channel, name, len(body))
	default:
		fmt.Fprintf(d.w, "frame %d: sasl %s body=%d\n", d.frames, name, len(body))
	}

	if d.hex && len(body) > 0 {
		fmt.Fprint(d.w, hex.Dump(body))
	}
}
