package mobotix

import (
	"context"
	"time"
)

const (
	RemoteConfigPath = "/admin/remoteconfig"
	ReadMarker       = "#read::"
	FormContentType  = "application/x-www-form-urlencoded"

	DefaultUsername = "admin"
	DefaultPassword = "meinsm"
)

// Target identifies one camera.
type Target struct {
	Host string
}

// Credential for the camera admin account (in-memory only).
type Credential struct {
	Username string
	Password string
}

// Options control how a camera is reached.
type Options struct {
	SSL     bool
	Timeout time.Duration
}

// Camera is the transport surface the tools rely on.
type Camera interface {
	// Get issues an HTTP API command such as /control/control?... and returns the body.
	Get(ctx context.Context, target Target, path string) (string, error)

	// RemoteConfig posts a remoteconfig script and returns the body, which
	// always starts with ReadMarker on success.
	RemoteConfig(ctx context.Context, target Target, script []byte) (string, error)
}
