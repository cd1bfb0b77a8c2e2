package mobotix

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to Mobotix cameras over HTTP(S) with basic auth.
type Client struct {
	http *resty.Client
	opts Options
}

// NewClient builds a client. With SSL enabled the peer certificate is not
// verified; cameras ship self-signed certificates.
func NewClient(cred Credential, opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	rc := resty.New().
		SetBasicAuth(cred.Username, cred.Password).
		SetLogger(restyLogger{log: log}).
		SetTimeout(opts.Timeout).
		SetDisableWarn(true)
	if opts.SSL {
		rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}
	return &Client{http: rc, opts: opts}
}

// BaseURL returns the scheme and host for target.
func (c *Client) BaseURL(target Target) string {
	if c.opts.SSL {
		return "https://" + target.Host
	}
	return "http://" + target.Host
}

func (c *Client) Get(ctx context.Context, target Target, path string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.BaseURL(target) + path)
	if err != nil {
		return "", classifyTransport(err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{Code: resp.StatusCode()}
	}
	return resp.String(), nil
}

func (c *Client) RemoteConfig(ctx context.Context, target Target, script []byte) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", FormContentType).
		SetBody(script).
		Post(c.BaseURL(target) + RemoteConfigPath)
	if err != nil {
		return "", classifyTransport(err)
	}
	if !resp.IsSuccess() {
		return "", &StatusError{Code: resp.StatusCode()}
	}
	body := resp.String()
	if !strings.HasPrefix(body, ReadMarker) {
		return "", ErrNotMobotix
	}
	return body, nil
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.opts.Timeout
}

type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "http")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "http")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "http")
}
