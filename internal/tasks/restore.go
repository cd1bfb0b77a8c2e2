package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
)

const versionCacheSize = 256

// ErrNoBackup is returned when no saved configuration exists for a device.
var ErrNoBackup = errors.New("no configfile found")

// VersionMismatchError means the saved configuration was taken from a
// different firmware than the device now runs.
type VersionMismatchError struct {
	File   string
	Device string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("configfile version %q does not match device version %q", e.File, e.Device)
}

// LatestBackup returns the newest <ip-with-dashes>_*.cfg in dir for host.
func LatestBackup(dir, host string) (string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "*"+mobotix.BackupExt, doublestar.WithFilesOnly())
	if err != nil {
		return "", err
	}

	prefix := mobotix.BackupPrefix(host)
	var latest string
	var latestInfo os.FileInfo
	for _, m := range matches {
		if !strings.HasPrefix(m, prefix) {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if latestInfo == nil || info.ModTime().After(latestInfo.ModTime()) ||
			(info.ModTime().Equal(latestInfo.ModTime()) && p > latest) {
			latest, latestInfo = p, info
		}
	}
	if latest == "" {
		return "", ErrNoBackup
	}
	return latest, nil
}

// Restore uploads the newest saved configuration of each device, after
// checking it was taken from the firmware version the device runs.
type Restore struct {
	Camera   mobotix.Camera
	Dir      string
	Override bool
	Reboot   bool
	Log      *slog.Logger

	versions *lru.Cache[string, string]
}

func NewRestore(cam mobotix.Camera, dir string, override, reboot bool, log *slog.Logger) *Restore {
	c, _ := lru.New[string, string](versionCacheSize)
	if log == nil {
		log = slog.Default()
	}
	return &Restore{
		Camera:   cam,
		Dir:      dir,
		Override: override,
		Reboot:   reboot,
		Log:      log,
		versions: c,
	}
}

// DeviceVersion asks the device for its firmware version. Answers are cached per host.
func (t *Restore) DeviceVersion(ctx context.Context, host string) (string, error) {
	if t.versions != nil {
		if v, ok := t.versions.Get(host); ok {
			return v, nil
		}
	}
	body, err := t.Camera.RemoteConfig(ctx, mobotix.Target{Host: host}, mobotix.TimestampScript())
	if err != nil {
		return "", err
	}
	v, err := mobotix.DeviceVersion(body)
	if err != nil {
		return "", err
	}
	if t.versions != nil {
		t.versions.Add(host, v)
	}
	return v, nil
}

func (t *Restore) Run(ctx context.Context, dev batch.Device) batch.Result {
	file, err := LatestBackup(t.Dir, dev.Host)
	if err != nil {
		return batch.Fail(batch.KindLocalIO, err, "no configfile found for device")
	}
	cfg, err := os.ReadFile(file)
	if err != nil {
		return batch.Fail(batch.KindLocalIO, err, "unable to read configfile")
	}
	fileVersion, err := mobotix.ConfigFileVersion(bytes.NewReader(cfg))
	if err != nil {
		return batch.Fail(batch.KindLocalIO, err, "unable to read configfile")
	}

	devVersion, err := t.DeviceVersion(ctx, dev.Host)
	if err != nil {
		return batch.Fail(Classify(err), err, "unable to verify device SW version")
	}

	if devVersion == fileVersion {
		t.Log.Info("SW version matches configfile version", "device", dev.Host, "version", devVersion)
	} else if t.Override {
		t.Log.Warn("non matching SW versions overridden by --override flag",
			"device", dev.Host, "file_version", fileVersion, "device_version", devVersion)
	} else {
		r := batch.Fail(batch.KindProtocol,
			&VersionMismatchError{File: fileVersion, Device: devVersion},
			"SW version does not match configfile version")
		r.Detail = "use -o or --override to ignore the difference (but be aware of unexpected camera behaviour)"
		return r
	}

	t.Log.Info("restoring", "device", dev.Host, "file", file, "reboot", t.Reboot)
	if _, err := t.Camera.RemoteConfig(ctx, target(dev), mobotix.RestoreScript(cfg, t.Reboot)); err != nil {
		return batch.Fail(Classify(err), err, fmt.Sprintf("restoring of %s failed", dev.Host))
	}

	r := batch.OK(fmt.Sprintf("restoring of %s to %s succeeded", filepath.Base(file), dev.Host))
	r.Detail = file
	return r
}
