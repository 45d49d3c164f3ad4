package uamqp

import (
	"bytes"
	"net"
	"testing"
	"testing/iotest"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pack.ag/uamqp/internal/testconn"
)

func TestFrameCodecReadFrom(t *testing.T) {
	var stream []byte
	for _, tt := range decodeTests {
		if tt.frameType == FrameTypeAMQP {
			stream = append(stream, tt.data...)
		}
	}

	for _, chunk := range []int{1, 3, 7, 512} {
		c, rec := newTestCodec(t)
		require.NoError(t, c.Subscribe(FrameTypeAMQP, rec.subscriber(FrameTypeAMQP)))

		n, err := c.ReadFrom(testconn.NewChunked(stream, chunk))
		require.NoError(t, err, "chunk %d", chunk)
		assert.Equal(t, int64(len(stream)), n)
		assert.Equal(t, 9, rec.total(), "chunk %d", chunk)
	}
}

func TestFrameCodecReadFromDecodeError(t *testing.T) {
	c, rec := newTestCodec(t)

	_, err := c.ReadFrom(testconn.New([]byte{0, 0, 0, 8, 2, 0, 0, 0, 0, 0, 0, 7, 2, 0, 0, 0}))
	assert.Equal(t, ErrDecode, errors.Cause(err))
	assert.Len(t, rec.errs, 1)
}

func TestFrameCodecReadFromReaderError(t *testing.T) {
	c, rec := newTestCodec(t)
	readErr := errors.New("connection reset")

	_, err := c.ReadFrom(iotest.ErrReader(readErr))
	assert.Equal(t, readErr, errors.Cause(err))
	assert.Empty(t, rec.errs)
}

func TestFrameCodecReadFromPipe(t *testing.T) {
	defer leaktest.Check(t)()

	client, server := net.Pipe()

	writer, _ := newTestCodec(t)
	writeErr := make(chan error, 1)
	go func() {
		defer client.Close()
		for i := 0; i < 3; i++ {
			err := writer.WriteFrame(client, FrameTypeAMQP, [][]byte{{byte(i)}}, []byte{0, byte(i)})
			if err != nil {
				writeErr <- err
				return
			}
		}
		writeErr <- nil
	}()

	reader, rec := newTestCodec(t)
	require.NoError(t, reader.Subscribe(FrameTypeAMQP, rec.subscriber(FrameTypeAMQP)))

	n, err := reader.ReadFrom(server)
	require.NoError(t, err)
	assert.Equal(t, int64(27), n)

	select {
	case err := <-writeErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not finish")
	}

	want := []frameRecord{
		{TypeSpecific: []byte{0, 0}, Body: []byte{0}},
		{TypeSpecific: []byte{0, 1}, Body: []byte{1}},
		{TypeSpecific: []byte{0, 2}, Body: []byte{2}},
	}
	if got := rec.frames[FrameTypeAMQP]; !testEqual(got, want) {
		t.Errorf("frames differ:\n%s", testDiff(got, want))
	}
}

func TestFrameCodecWriteFrame(t *testing.T) {
	c, _ := newTestCodec(t)
	conn := testconn.New(nil)

	require.NoError(t, c.WriteFrame(conn, 0x42, [][]byte{{0x42}, {0x43}}, nil))
	require.NoError(t, c.WriteFrame(conn, FrameTypeAMQP, nil, []byte{0x42}))

	want := []byte{
		0, 0, 0, 0x0a, 2, 0x42, 0, 0, 0x42, 0x43,
		0, 0, 0, 8, 2, 0, 0x42, 0,
	}
	if got := conn.Written(); !bytes.Equal(got, want) {
		t.Errorf("written bytes differ:\n%s", testDiff(got, want))
	}

	err := c.WriteFrame(conn, FrameTypeAMQP, [][]byte{{}}, nil)
	assert.Equal(t, ErrInvalidArgument, errors.Cause(err))

	require.NoError(t, conn.Close())
	err = c.WriteFrame(conn, FrameTypeAMQP, nil, nil)
	assert.Equal(t, testconn.ErrClosed, errors.Cause(err))
}
