package uamqp

import (
	"github.com/sirupsen/logrus"
)

var pkgLogger = logrus.WithField("source", "uamqp")

// SetLogger sets the logger used by the package. Entries created by
// FrameCodec and CBS carry the fields of the given entry.
func SetLogger(logger *logrus.Entry) {
	fields := pkgLogger.Data
	pkgLogger = logger.WithFields(fields)
}

func logger() *logrus.Entry {
	return pkgLogger
}
