package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
)

// MicMode selects what Mic does with the env:MI event profile.
type MicMode string

const (
	MicOn    MicMode = "on"
	MicOff   MicMode = "off"
	MicCheck MicMode = "check"

	DefaultMicList = "mic_on.csv"
	micListHeader  = "IP"
)

// Path returns the API command for the mode.
func (m MicMode) Path() (string, error) {
	switch m {
	case MicOn:
		return mobotix.MicOnPath, nil
	case MicOff:
		return mobotix.MicOffPath, nil
	case MicCheck:
		return mobotix.MicCheckPath, nil
	}
	return "", fmt.Errorf("unknown mic mode %q", m)
}

// Mic switches or reads the MI event profile.
type Mic struct {
	Camera mobotix.Camera
	Mode   MicMode
}

func (t *Mic) Run(ctx context.Context, dev batch.Device) batch.Result {
	path, err := t.Mode.Path()
	if err != nil {
		return batch.Fail(batch.KindProtocol, err, "invalid mode")
	}
	body, err := t.Camera.Get(ctx, target(dev), path)
	if err != nil {
		return batch.Fail(Classify(err), err, "mic event request failed")
	}
	r := batch.OK(fmt.Sprintf("mic event %s", t.Mode))
	if t.Mode == MicCheck {
		r.Detail = profileDetail(mobotix.ProfileActive(body))
	}
	return r
}

func profileDetail(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// ActiveHosts returns, in list order, the devices a check found armed.
func ActiveHosts(rep batch.Report) []string {
	var out []string
	for _, r := range rep.Results {
		if r.Kind == batch.KindOK && r.Detail == "active" {
			out = append(out, r.Device)
		}
	}
	return out
}

// CreateMicList truncates path and writes the header row.
func CreateMicList(path string) error {
	if err := os.WriteFile(path, []byte(micListHeader+"\n"), 0644); err != nil {
		return fmt.Errorf("unable to write output file %s: %w", path, err)
	}
	return nil
}

// AppendMicList appends hosts, one per line, to a list made by CreateMicList.
func AppendMicList(path string, hosts []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to write output file %s: %w", path, err)
	}
	for _, h := range hosts {
		if _, err := fmt.Fprintln(f, h); err != nil {
			f.Close()
			return fmt.Errorf("unable to write output file %s: %w", path, err)
		}
	}
	return f.Close()
}
