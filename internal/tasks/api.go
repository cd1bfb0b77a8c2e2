package tasks

import (
	"context"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
)

// APICommand sends one fixed HTTP API command to every device.
type APICommand struct {
	Camera mobotix.Camera
	Path   string
}

func (t *APICommand) Run(ctx context.Context, dev batch.Device) batch.Result {
	if _, err := t.Camera.Get(ctx, target(dev), t.Path); err != nil {
		return batch.Fail(Classify(err), err, "api command failed")
	}
	return batch.OK("api command sent")
}
