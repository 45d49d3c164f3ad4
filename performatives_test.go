package uamqp

import (
	"testing"
)

func TestPerformativeName(t *testing.T) {
	tests := []struct {
		label     string
		frameType uint8
		body      []byte
		want      string
		wantErr   bool
	}{
		{
			label: "open",
			body:  []byte{0x00, 0x53, 0x10, 0xc0, 0x03, 0x01, 0xa1, 0x00},
			want:  "open",
		},
		{
			label: "close",
			body:  []byte{0x00, 0x53, 0x18, 0x45},
			want:  "close",
		},
		{
			label: "transfer with ulong descriptor",
			body:  []byte{0x00, 0x80, 0, 0, 0, 0, 0, 0, 0, 0x14, 0x45},
			want:  "transfer",
		},
		{
			label:     "sasl mechanisms",
			frameType: FrameTypeSASL,
			body:      []byte{0x00, 0x53, 0x40, 0x45},
			want:      "sasl-mechanisms",
		},
		{
			label:     "sasl outcome",
			frameType: FrameTypeSASL,
			body:      []byte{0x00, 0x53, 0x44, 0x45},
			want:      "sasl-outcome",
		},
		{
			label:   "sasl code in amqp frame",
			body:    []byte{0x00, 0x53, 0x40, 0x45},
			wantErr: true,
		},
		{
			label:   "not described",
			body:    []byte{0x45, 0x53, 0x10},
			wantErr: true,
		},
		{
			label:   "short",
			body:    []byte{0x00, 0x53},
			wantErr: true,
		},
		{
			label:   "short ulong",
			body:    []byte{0x00, 0x80, 0, 0},
			wantErr: true,
		},
		{
			label:   "large ulong",
			body:    []byte{0x00, 0x80, 0, 0, 0x01, 0x37, 0, 0, 0, 0x10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := PerformativeName(tt.frameType, tt.body)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
