package uamqp

import (
	"bytes"
	"io"
	"sync"
)

// largest chunk ReadFrom requests from its reader
const maxReadChunk = 64 * 1024

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// ReadFrom feeds everything read from r to ReceiveBytes until r returns
// io.EOF or a frame fails to decode. It returns the number of bytes read.
func (c *FrameCodec) ReadFrom(r io.Reader) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}

	size := int(c.maxFrameSize)
	if size > maxReadChunk {
		size = maxReadChunk
	}
	buf := make([]byte, size)

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if rerr := c.ReceiveBytes(buf[:n]); rerr != nil {
				return total, rerr
			}
		}
		switch {
		case err == io.EOF:
			return total, nil
		case err != nil:
			return total, errorWrapf(err, "reading frames")
		}
	}
}

// WriteFrame encodes a frame and writes it to w in a single Write call.
func (c *FrameCodec) WriteFrame(w io.Writer, frameType uint8, payloads [][]byte, typeSpecific []byte) error {
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	buf.Reset()

	err := c.EncodeFrame(frameType, payloads, typeSpecific, func(b []byte, _ bool) {
		buf.Write(b)
	})
	if err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return errorWrapf(err, "writing frame")
}
