package uamqp

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var compareOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

func testEqual(x, y interface{}) bool {
	return cmp.Equal(x, y, compareOpts...)
}

func testDiff(x, y interface{}) string {
	return cmp.Diff(x, y, compareOpts...)
}

// frameRecord is a frame delivered to a subscriber.
type frameRecord struct {
	TypeSpecific []byte
	Body         []byte
}

// codecRecorder collects the callbacks of a FrameCodec.
type codecRecorder struct {
	frames map[uint8][]frameRecord
	errs   []error
}

func newCodecRecorder() *codecRecorder {
	return &codecRecorder{frames: make(map[uint8][]frameRecord)}
}

func (r *codecRecorder) onDecodeError(err error) {
	r.errs = append(r.errs, err)
}

func (r *codecRecorder) subscriber(frameType uint8) FrameReceivedFunc {
	return func(typeSpecific, body []byte) {
		r.frames[frameType] = append(r.frames[frameType], frameRecord{
			TypeSpecific: typeSpecific,
			Body:         body,
		})
	}
}

func (r *codecRecorder) total() int {
	n := 0
	for _, f := range r.frames {
		n += len(f)
	}
	return n
}
