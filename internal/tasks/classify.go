// Package tasks holds the per-device operations behind each mx tool.
package tasks

import (
	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
)

// Classify maps a camera error to a result kind.
func Classify(err error) batch.Kind {
	switch {
	case err == nil:
		return batch.KindOK
	case mobotix.IsProtocol(err):
		return batch.KindProtocol
	default:
		return batch.KindTransport
	}
}

func target(dev batch.Device) mobotix.Target {
	return mobotix.Target{Host: dev.Host}
}
