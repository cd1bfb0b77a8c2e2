package extract

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"
)

var ErrNoRecords = errors.New("extract: no sensor specific data found")

// Job extracts every matching file under Dir into Output.
type Job struct {
	Dir       string
	Ext       string
	Output    string
	Recursive bool
	Logger    *slog.Logger
}

// Summary describes one extraction pass.
type Summary struct {
	Files    int
	Columns  int
	Elapsed  time.Duration
	Output   string
	Failures int
}

func (j Job) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// Run performs a single pass. Unreadable files are logged and skipped.
func (j Job) Run() (Summary, error) {
	start := time.Now()
	log := j.logger()
	out := j.Output
	if out == "" {
		out = DefaultOutput
	}
	absOut, _ := filepath.Abs(out)

	files, err := Scan(j.Dir, j.Ext, j.Recursive)
	if err != nil {
		return Summary{}, err
	}

	var records []Record
	sum := Summary{Output: out}
	for _, f := range files {
		if f == absOut {
			continue
		}
		log.Info("extracting", "file", f)
		rec, err := ExtractFile(f)
		if err != nil {
			log.Error("unable to read config file", "file", f, "err", err)
			sum.Failures++
			continue
		}
		records = append(records, rec)
	}
	sum.Files = len(records)

	if len(records) == 0 {
		sum.Elapsed = time.Since(start)
		return sum, ErrNoRecords
	}
	if err := WriteCSVFile(out, records); err != nil {
		return sum, err
	}
	sum.Columns = len(Columns(records))
	sum.Elapsed = time.Since(start)
	log.Info("csv file created", "output", out, "rows", sum.Files, "columns", sum.Columns)
	return sum, nil
}
