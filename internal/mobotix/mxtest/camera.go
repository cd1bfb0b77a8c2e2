// Package mxtest provides an in-process fake Mobotix camera for tests.
package mxtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Request is a call received by the fake camera.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        string
}

// Camera is a fake camera speaking the remoteconfig protocol.
type Camera struct {
	Username string
	Password string
	Version  string
	Config   string
	Profile  string
	Status   int  // forces every response to this status when non-zero
	Garbage  bool // answer remoteconfig without the #read:: marker

	mu       sync.Mutex
	requests []Request
	srv      *httptest.Server
}

// NewCamera starts a fake camera accepting admin/meinsm.
func NewCamera() *Camera {
	return newCamera(false)
}

// NewTLSCamera starts the fake camera behind a self-signed certificate.
func NewTLSCamera() *Camera {
	return newCamera(true)
}

func newCamera(tls bool) *Camera {
	c := &Camera{
		Username: "admin",
		Password: "meinsm",
		Version:  "MX-V5.2.0.61",
		Config:   "#:MX-V5.2.0.61\nHOSTNAME=cam01\nIPADDR=10.0.0.5\n",
		Profile:  "env=MI:mi_lvl=50",
	}

	r := chi.NewRouter()
	r.Use(c.record, c.auth)
	r.Get("/control/control", c.control)
	r.Post("/admin/remoteconfig", c.remoteConfig)

	if tls {
		c.srv = httptest.NewTLSServer(r)
	} else {
		c.srv = httptest.NewServer(r)
	}
	return c
}

// Configure mutates the camera's behaviour while holding its lock.
func (c *Camera) Configure(fn func(c *Camera)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

type settings struct {
	Username string
	Password string
	Version  string
	Config   string
	Profile  string
	Status   int
	Garbage  bool
}

func (c *Camera) snapshot() settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return settings{
		Username: c.Username,
		Password: c.Password,
		Version:  c.Version,
		Config:   c.Config,
		Profile:  c.Profile,
		Status:   c.Status,
		Garbage:  c.Garbage,
	}
}

// Host returns host:port for use as a device address.
func (c *Camera) Host() string {
	return c.srv.Listener.Addr().String()
}

// Close stops the server.
func (c *Camera) Close() {
	c.srv.Close()
}

// Requests returns a copy of the requests received so far.
func (c *Camera) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// Writes returns the bodies of remoteconfig scripts that contained a write.
func (c *Camera) Writes() []string {
	var out []string
	for _, r := range c.Requests() {
		if r.Path == "/admin/remoteconfig" && strings.Contains(r.Body, "\nwrite\n") {
			out = append(out, r.Body)
		}
	}
	return out
}

func (c *Camera) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		c.mu.Lock()
		c.requests = append(c.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		c.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (c *Camera) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := c.snapshot()
		u, p, ok := r.BasicAuth()
		if !ok || u != cfg.Username || p != cfg.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="MOBOTIX Camera User"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if cfg.Status != 0 {
			http.Error(w, http.StatusText(cfg.Status), cfg.Status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Camera) control(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "OK\n%s\n", c.snapshot().Profile)
}

func (c *Camera) remoteConfig(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	script := string(body)
	cfg := c.snapshot()

	if cfg.Garbage {
		fmt.Fprint(w, "<html>not a camera</html>")
		return
	}

	switch {
	case strings.Contains(script, "view section timestamp"):
		fmt.Fprintf(w, "#read::\n#section timestamp\nVERSION=%s\nDATE=2024-09-27\n#:end\n", cfg.Version)
	case strings.Contains(script, "view configfile"):
		fmt.Fprintf(w, "#read::\n#helo\n#view configfile\n#:begin\n%s#:end\n#quit\n#:bye\n", cfg.Config)
	default:
		fmt.Fprint(w, "#read::\n#helo\n#write OK\n#store OK\n#update OK\n#quit\n")
	}
}
