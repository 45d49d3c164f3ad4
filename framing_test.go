package uamqp

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrameHeader(t *testing.T) {
	tests := []struct {
		typeSpecificLen  int
		bodyLen          uint64
		wantDataOffset   uint8
		wantSize         uint32
		wantTypeSpecific int
	}{
		{typeSpecificLen: 0, wantDataOffset: 2, wantSize: 8, wantTypeSpecific: 2},
		{typeSpecificLen: 1, wantDataOffset: 2, wantSize: 8, wantTypeSpecific: 2},
		{typeSpecificLen: 2, bodyLen: 10, wantDataOffset: 2, wantSize: 18, wantTypeSpecific: 2},
		{typeSpecificLen: 3, wantDataOffset: 3, wantSize: 12, wantTypeSpecific: 6},
		{typeSpecificLen: 6, wantDataOffset: 3, wantSize: 12, wantTypeSpecific: 6},
		{typeSpecificLen: 7, wantDataOffset: 4, wantSize: 16, wantTypeSpecific: 10},
		{typeSpecificLen: 1014, wantDataOffset: 255, wantSize: 1020, wantTypeSpecific: 1014},
	}

	for _, tt := range tests {
		fh, err := newFrameHeader(FrameTypeAMQP, tt.typeSpecificLen, tt.bodyLen)
		require.NoError(t, err)
		assert.Equal(t, tt.wantDataOffset, fh.dataOffset, "type specific %d", tt.typeSpecificLen)
		assert.Equal(t, tt.wantSize, fh.size, "type specific %d", tt.typeSpecificLen)
		assert.Equal(t, tt.wantTypeSpecific, fh.typeSpecificSize(), "type specific %d", tt.typeSpecificLen)
		assert.Equal(t, int(tt.bodyLen), fh.bodySize())
	}

	_, err := newFrameHeader(FrameTypeAMQP, 1015, 0)
	assert.Equal(t, ErrInvalidArgument, errors.Cause(err))

	_, err = newFrameHeader(FrameTypeAMQP, 0, 1<<32)
	assert.Equal(t, ErrFrameTooLarge, errors.Cause(err))
}

func TestFrameHeaderValidate(t *testing.T) {
	assert.Error(t, frameHeader{size: 7, dataOffset: 2}.validate(512))
	assert.NoError(t, frameHeader{size: 8, dataOffset: 2}.validate(512))
	assert.NoError(t, frameHeader{size: 512, dataOffset: 2}.validate(512))
	assert.Equal(t, ErrFrameTooLarge, errors.Cause(frameHeader{size: 513, dataOffset: 2}.validate(512)))
}

func TestParseProtoHeader(t *testing.T) {
	tests := []struct {
		label   string
		buf     []byte
		want    ProtoHeader
		wantErr bool
	}{
		{
			label: "amqp",
			buf:   []byte("AMQP\x00\x01\x00\x00"),
			want:  ProtoHeader{ProtoID: ProtoAMQP, Major: 1},
		},
		{
			label: "tls",
			buf:   []byte("AMQP\x02\x01\x00\x00"),
			want:  ProtoHeader{ProtoID: ProtoTLS, Major: 1},
		},
		{
			label: "sasl",
			buf:   []byte("AMQP\x03\x01\x00\x00"),
			want:  ProtoHeader{ProtoID: ProtoSASL, Major: 1},
		},
		{
			label:   "short",
			buf:     []byte("AMQP\x00\x01\x00"),
			wantErr: true,
		},
		{
			label:   "wrong protocol",
			buf:     []byte("AMQX\x00\x01\x00\x00"),
			wantErr: true,
		},
		{
			label:   "amqp 0-9-1",
			buf:     []byte("AMQP\x00\x00\x09\x01"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseProtoHeader(tt.buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProtoHeaderReadWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProtoHeader(&buf, ProtoSASL))
	require.NoError(t, WriteProtoHeader(&buf, ProtoAMQP))
	assert.Equal(t, []byte("AMQP\x03\x01\x00\x00AMQP\x00\x01\x00\x00"), buf.Bytes())

	assert.True(t, IsProtoHeader(buf.Bytes()))

	p, err := ReadProtoHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, ProtoSASL, p.ProtoID)
	assert.Equal(t, "SASL", p.ProtoID.String())

	p, err = ReadProtoHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, ProtoAMQP, p.ProtoID)

	_, err = ReadProtoHeader(&buf)
	assert.Error(t, err)
}

func TestIsProtoHeader(t *testing.T) {
	assert.True(t, IsProtoHeader([]byte("AMQP")))
	assert.False(t, IsProtoHeader([]byte("AMQ")))
	assert.False(t, IsProtoHeader([]byte{0, 0, 0, 8, 2, 0, 0, 0}))
}
