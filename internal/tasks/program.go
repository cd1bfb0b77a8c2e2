package tasks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/mobotix"
	"github.com/technosupport/mxtools/internal/template"
)

const (
	verifyBegin = "------------verify output------------"
	verifyEnd   = "-------------------------------------"
)

// Program renders a command file template for each device and sends it to
// the remoteconfig interface.
type Program struct {
	Camera   mobotix.Camera
	Template []byte

	// Verify prints the rendered command file instead of sending it.
	Verify bool
	Stdout io.Writer

	// Responses, when set, receives every camera response.
	Responses *ResponseLog
}

func (t *Program) Run(ctx context.Context, dev batch.Device) batch.Result {
	script, err := template.Render(bytes.NewReader(t.Template), dev.Placeholders)
	if err != nil {
		return batch.Fail(batch.KindLocalIO, err, "unable to render command file")
	}

	if t.Verify {
		w := t.Stdout
		if w == nil {
			w = os.Stdout
		}
		fmt.Fprintf(w, "%s\n%s\n%s\n", verifyBegin, script, verifyEnd)
		return batch.Skip("verify only, device not programmed")
	}

	body, err := t.Camera.RemoteConfig(ctx, target(dev), script)
	if err != nil {
		return batch.Fail(Classify(err), err, "programming failed")
	}

	if t.Responses != nil {
		if err := t.Responses.Append(dev.Host, body); err != nil {
			r := batch.Fail(batch.KindLocalIO, err, "error writing received results to file")
			r.Abort = true
			return r
		}
	}
	return batch.OK("programming succeeded")
}

// ResponseLog collects camera responses in one file.
type ResponseLog struct {
	mu   sync.Mutex
	path string
}

// NewResponseLog truncates path so the run starts with an empty file.
func NewResponseLog(path string) (*ResponseLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to write to outputfile %s, it might be opened in another application: %w", path, err)
	}
	f.Close()
	return &ResponseLog{path: path}, nil
}

// Path of the log file.
func (l *ResponseLog) Path() string {
	return l.path
}

// Append writes body under a header naming the device.
func (l *ResponseLog) Append(host, body string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "# %s\n%s", host, body); err != nil {
		f.Close()
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
