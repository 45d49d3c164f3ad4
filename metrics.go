package uamqp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "uamqp"

var (
	framesDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "frames_decoded_total",
		Help:      "Frames decoded, by frame type.",
	}, []string{"type"})

	frameDecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "frame_decode_errors_total",
		Help:      "Decode errors that put a frame codec into the error state.",
	})

	framesEncoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "frames_encoded_total",
		Help:      "Frames encoded, by frame type.",
	}, []string{"type"})

	frameEncodedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "frame_encoded_bytes_total",
		Help:      "Bytes produced by frame encoding.",
	})

	cbsOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cbs_operations_total",
		Help:      "Completed CBS operations, by operation and result.",
	}, []string{"operation", "result"})

	cbsPendingOperations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "cbs_pending_operations",
		Help:      "CBS operations waiting for a management response.",
	})
)

// RegisterMetrics registers the package collectors with r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		framesDecoded,
		frameDecodeErrors,
		framesEncoded,
		frameEncodedBytes,
		cbsOperations,
		cbsPendingOperations,
	} {
		if err := r.Register(c); err != nil {
			return errorWrapf(err, "registering uamqp metrics")
		}
	}
	return nil
}

func frameTypeLabel(frameType uint8) string {
	switch frameType {
	case FrameTypeAMQP:
		return "amqp"
	case FrameTypeSASL:
		return "sasl"
	}
	return strconv.Itoa(int(frameType))
}
