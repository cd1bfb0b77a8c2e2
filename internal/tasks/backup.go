package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
	"github.com/technosupport/mxtools/internal/platform/paths"
)

// Backup downloads each device's configuration file into Dir.
type Backup struct {
	Camera mobotix.Camera
	Dir    string
	Now    func() time.Time
}

func (t *Backup) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Backup) Run(ctx context.Context, dev batch.Device) batch.Result {
	name := mobotix.BackupFileName(dev.Host, t.now())
	path, err := paths.SafeJoin(t.Dir, name)
	if err != nil {
		return batch.Fail(batch.KindLocalIO, err, "invalid backup file name")
	}
	if err := paths.Writable(path); err != nil {
		return batch.Fail(batch.KindLocalIO, err, "unable to write backup file")
	}

	body, err := t.Camera.RemoteConfig(ctx, target(dev), mobotix.BackupScript())
	if err != nil {
		return batch.Fail(Classify(err), err, fmt.Sprintf("reading of %s failed", dev.Host))
	}

	if err := os.WriteFile(path, []byte(mobotix.StripBanner(body)), 0644); err != nil {
		return batch.Fail(batch.KindLocalIO, err, "unable to write backup file")
	}

	r := batch.OK(fmt.Sprintf("backup of %s succeeded", dev.Host))
	r.Detail = path
	return r
}
