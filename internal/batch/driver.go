// Package batch drives one operation over every enabled device of a device list.
package batch

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/mxtools/internal/devicelist"
	"github.com/technosupport/mxtools/internal/template"
)

// Device is the unit of work handed to a Task.
type Device struct {
	Index        int
	Host         string
	Row          devicelist.Row
	Placeholders template.Placeholders
}

// Task performs the tool specific operation for one device.
type Task interface {
	Run(ctx context.Context, dev Device) Result
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, dev Device) Result

func (f TaskFunc) Run(ctx context.Context, dev Device) Result { return f(ctx, dev) }

// Observer is notified of every result in device-list order.
type Observer interface {
	Observe(Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Result)

func (f ObserverFunc) Observe(r Result) { f(r) }

// Config for a Driver.
type Config struct {
	Tool    string
	Workers int
}

type Driver struct {
	config    Config
	runID     uuid.UUID
	observers []Observer
}

func NewDriver(cfg Config, observers ...Observer) *Driver {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Driver{
		config:    cfg,
		runID:     uuid.New(),
		observers: observers,
	}
}

// RunID identifies this driver's run on every result it emits.
func (d *Driver) RunID() uuid.UUID {
	return d.runID
}

// Run executes task for every enabled device. With one worker the devices are
// processed strictly one after another; with more, up to Workers run at once.
// Either way results are observed and reported in list order.
func (d *Driver) Run(ctx context.Context, list *devicelist.List, task Task) Report {
	start := time.Now()
	entries := list.Enabled()
	devices := make([]Device, len(entries))
	for i, e := range entries {
		devices[i] = Device{
			Index:        e.Index,
			Host:         e.Row.Host(),
			Row:          e.Row,
			Placeholders: list.Placeholders(e.Row),
		}
	}

	rep := Report{
		RunID:    d.runID,
		Tool:     d.config.Tool,
		Disabled: list.Disabled(),
	}
	emit := func(r Result) {
		rep.Results = append(rep.Results, r)
		for _, o := range d.observers {
			o.Observe(r)
		}
		if r.Abort {
			rep.Aborted = true
		}
	}

	if d.config.Workers == 1 {
		d.runSequential(ctx, devices, task, emit)
	} else {
		d.runPool(ctx, devices, task, emit)
	}

	rep.Elapsed = time.Since(start)
	return rep
}

func (d *Driver) runSequential(ctx context.Context, devices []Device, task Task, emit func(Result)) {
	for _, dev := range devices {
		if ctx.Err() != nil {
			return
		}
		r := d.exec(ctx, task, dev)
		emit(r)
		if r.Abort {
			return
		}
	}
}

type indexed struct {
	pos int
	res Result
}

func (d *Driver) runPool(ctx context.Context, devices []Device, task Task, emit func(Result)) {
	jobs := make(chan int)
	done := make(chan indexed, len(devices))
	var stop atomic.Bool
	var wg sync.WaitGroup

	for i := 0; i < d.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				done <- indexed{pos: pos, res: d.exec(ctx, task, devices[pos])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for pos := range devices {
			if stop.Load() {
				return
			}
			select {
			case jobs <- pos:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	pending := make(map[int]Result)
	next := 0
	for r := range done {
		pending[r.pos] = r.res
		for {
			res, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if res.Abort {
				stop.Store(true)
			}
			emit(res)
		}
	}

	// Only reachable after an abort or cancellation left a gap.
	rest := make([]int, 0, len(pending))
	for pos := range pending {
		rest = append(rest, pos)
	}
	sort.Ints(rest)
	for _, pos := range rest {
		emit(pending[pos])
	}
}

func (d *Driver) exec(ctx context.Context, task Task, dev Device) Result {
	start := time.Now()
	r := task.Run(ctx, dev)
	r.RunID = d.runID
	r.Tool = d.config.Tool
	r.Index = dev.Index
	r.Device = dev.Host
	r.Duration = time.Since(start)
	if r.Kind == "" {
		if r.Err != nil {
			r.Kind = KindTransport
		} else {
			r.Kind = KindOK
		}
	}
	if r.Err != nil && r.Error == "" {
		r.Error = r.Err.Error()
	}
	return r
}
