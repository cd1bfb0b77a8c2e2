// Package cli builds the cobra commands behind the mx* binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/batch"
	"github.com/technosupport/mxtools/internal/config"
	"github.com/technosupport/mxtools/internal/devicelist"
	"github.com/technosupport/mxtools/internal/logging"
	"github.com/technosupport/mxtools/internal/metrics"
	"github.com/technosupport/mxtools/internal/mobotix"
	"github.com/technosupport/mxtools/internal/publish"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

const disclaimer = "Disclaimer: USE THIS SOFTWARE AT YOUR OWN RISK"

// ArgumentError is a usage problem detected before any device is contacted.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

func argErr(format string, a ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, a...)}
}

// IsArgumentError reports whether err is a usage problem.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// Execute runs cmd with SIGINT/SIGTERM cancelling its context and exits
// non-zero on error.
func Execute(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Error:", err)
		if IsArgumentError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func banner(w io.Writer, tool string) {
	fmt.Fprintf(w, "%s %s\n%s\n\n", tool, Version, disclaimer)
}

// globalFlags are shared by every tool, including mxtract.
type globalFlags struct {
	configFile  string
	workers     int
	metricsFile string
	natsURL     string
	natsSubject string
	logLevel    string
	color       bool
}

// registerBase adds the flags every tool understands.
func (g *globalFlags) registerBase(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&g.configFile, "config", "", "YAML config file (default $MX_CONFIG or ./mxtools.yaml)")
	f.StringVar(&g.logLevel, "log-level", "info", "debug, info, warn or error")
	f.BoolVar(&g.color, "color", false, "colourise console output")
}

func (g *globalFlags) register(cmd *cobra.Command) {
	g.registerBase(cmd)
	f := cmd.Flags()
	f.IntVar(&g.workers, "workers", 1, "number of devices handled concurrently")
	f.StringVar(&g.metricsFile, "metrics-file", "", "write a Prometheus textfile with run metrics")
	f.StringVar(&g.natsURL, "nats-url", "", "publish every device result to this NATS server")
	f.StringVar(&g.natsSubject, "nats-subject", publish.DefaultSubject, "NATS subject prefix for results")
}

// resolve loads the configuration and overlays every flag that was set.
func (g *globalFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Workers = g.workers
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = g.metricsFile
	}
	if f.Changed("nats-url") {
		cfg.NATS.URL = g.natsURL
	}
	if f.Changed("nats-subject") {
		cfg.NATS.Subject = g.natsSubject
	}
	if f.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if f.Changed("color") {
		cfg.Color = g.color
	}
	return cfg, nil
}

// targetFlags select the devices and how to reach them.
type targetFlags struct {
	globalFlags

	device   string
	list     string
	username string
	password string
	ssl      bool
	timeout  string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	t.globalFlags.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&t.device, "deviceIP", "d", "", "target device IP when handling a single camera")
	f.StringVarP(&t.list, "devicelist", "l", "", "target device list (CSV, ';' separated) when handling multiple cameras")
	f.StringVarP(&t.username, "username", "u", mobotix.DefaultUsername, "device admin username")
	f.StringVarP(&t.password, "password", "p", mobotix.DefaultPassword, "device admin password")
	f.BoolVarP(&t.ssl, "ssl", "s", false, "use SSL to communicate (HTTPS)")
	f.StringVarP(&t.timeout, "timeout", "t", "", "request timeout in seconds (default depends on the tool)")
}

// session is everything a tool needs once its arguments checked out.
type session struct {
	tool   string
	cfg    config.Config
	log    *slog.Logger
	out    io.Writer
	list   *devicelist.List
	camera *mobotix.Client
}

// open validates the target flags and prepares a session. strictIP turns a
// non-IPv4 -d into an ArgumentError; otherwise it is only warned about.
func (t *targetFlags) open(cmd *cobra.Command, tool string, strictIP bool) (*session, error) {
	cfg, err := t.resolve(cmd)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("username") {
		cfg.Username = t.username
	}
	if f.Changed("password") {
		cfg.Password = t.password
	}
	if f.Changed("ssl") {
		cfg.SSL = t.ssl
	}
	if f.Changed("timeout") {
		n, err := strconv.Atoi(t.timeout)
		if err != nil {
			return nil, argErr("timeout must be an integer number of seconds: %q", t.timeout)
		}
		cfg.Timeout = n
	}
	if err := cfg.Validate(); err != nil {
		return nil, argErr("%v", err)
	}

	out := cmd.OutOrStdout()
	log, err := logging.New(out, cfg.LogLevel, cfg.Color)
	if err != nil {
		return nil, argErr("%v", err)
	}

	if (t.device == "") == (t.list == "") {
		return nil, argErr("either deviceIP (-d) or devicelist (-l) is required")
	}
	if !f.Changed("username") && cfg.Username == mobotix.DefaultUsername {
		log.Info("default admin account assumed")
	}
	if !f.Changed("password") && cfg.Password == mobotix.DefaultPassword {
		log.Info("default admin password assumed")
	}

	var list *devicelist.List
	if t.device != "" {
		if !devicelist.ValidateIPv4(t.device) {
			if strictIP {
				return nil, argErr("the device %s is not a valid IPv4 address", t.device)
			}
			log.Warn("device is not a valid IPv4 address, using it as a hostname", "device", t.device)
		}
		list = devicelist.Single(t.device)
	} else {
		if _, err := os.Stat(t.list); err != nil {
			return nil, argErr("the devicelist %q does not exist", t.list)
		}
		list, err = devicelist.Load(t.list)
		if err != nil {
			return nil, argErr("unable to read devicelist %q: %v", t.list, err)
		}
	}

	cam := mobotix.NewClient(
		mobotix.Credential{Username: cfg.Username, Password: cfg.Password},
		mobotix.Options{SSL: cfg.SSL, Timeout: cfg.TimeoutFor(tool)},
		log,
	)

	return &session{tool: tool, cfg: cfg, log: log, out: out, list: list, camera: cam}, nil
}

// run drives task over the session's devices with the configured observers.
func (s *session) run(ctx context.Context, task batch.Task) batch.Report {
	observers := []batch.Observer{batch.LogObserver(s.log)}

	var collector *metrics.Collector
	if s.cfg.MetricsFile != "" {
		collector = metrics.NewCollector()
		observers = append(observers, collector)
	}

	if s.cfg.NATS.URL != "" {
		nc, err := publish.Connect(s.cfg.NATS.URL, s.tool)
		if err != nil {
			s.log.Warn("results will not be published", "err", err)
		} else {
			defer func() {
				_ = nc.Flush()
				nc.Close()
			}()
			observers = append(observers, publish.NewNATSPublisher(nc, s.cfg.NATS.Subject, s.cfg.NATS.RetryMax, s.log))
		}
	}

	d := batch.NewDriver(batch.Config{Tool: s.tool, Workers: s.cfg.Workers}, observers...)
	s.log.Debug("run started", "run_id", d.RunID().String(), "workers", s.cfg.Workers, "timeout", s.camera.Timeout().String())

	rep := d.Run(ctx, s.list, task)
	batch.LogSummary(s.log, rep)

	if collector != nil {
		collector.Finish(rep)
		if err := collector.WriteTextfile(s.cfg.MetricsFile); err != nil {
			s.log.Error("metrics not written", "err", err)
		}
	}
	return rep
}

// finish turns an aborted run into a command error. Device failures alone
// leave the exit status untouched.
func finish(rep batch.Report) error {
	if !rep.Aborted {
		return nil
	}
	for _, r := range rep.Results {
		if r.Abort {
			return fmt.Errorf("run aborted at %s: %s: %w", r.Device, r.Message, r.Err)
		}
	}
	return errors.New("run aborted")
}
