// Package extract pulls device specific parameters out of saved Mobotix
// configuration files and compiles them into a flat CSV.
package extract

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	FileField       = "file"
	DefaultIPAddr   = "DHCP"
	DefaultExt      = ".cfg"
	DefaultOutput   = "smartsensor.csv"
	valueTerminator = ":"
)

// Record maps catalog field names to extracted values. A field whose marker
// never appeared is absent, not empty.
type Record map[string]string

// Substring returns the text following the leftmost occurrence of marker up
// to the next ':' or the end of s.
func Substring(s, marker string) (string, bool) {
	start := strings.Index(s, marker)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(marker):]
	if end := strings.Index(rest, valueTerminator); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

func clean(v string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(v)
}

// Apply tests line against every rule in rules and stores matches in rec.
func Apply(rec Record, line string, rules []Rule) {
	for _, r := range rules {
		if r.Scope != "" && !strings.Contains(line, r.Scope) {
			continue
		}
		switch r.Kind {
		case State:
			if strings.Contains(line, InactiveMarker) {
				rec[r.Field] = StateInactive
			} else {
				rec[r.Field] = StateActive
			}
		default:
			if v, ok := Substring(line, r.Marker); ok {
				rec[r.Field] = clean(v)
			}
		}
	}
}

// Extract builds the record for one configuration export.
func Extract(lines []string, file string) Record {
	rec := Record{FileField: file}
	for _, line := range lines {
		Apply(rec, line, Catalog)
	}
	if _, ok := rec["IPADDR"]; !ok {
		rec["IPADDR"] = DefaultIPAddr
	}
	return rec
}

// ExtractReader reads r line by line and extracts it.
func ExtractReader(r io.Reader, file string) (Record, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return Extract(lines, file), nil
}

// ExtractFile reads and extracts the configuration file at path.
func ExtractFile(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer f.Close()

	rec, err := ExtractReader(f, path)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", path, err)
	}
	return rec, nil
}

// Scan lists the files in dir whose name ends with ext, sorted by path.
func Scan(dir, ext string, recursive bool) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	pattern := "*" + ext
	if recursive {
		pattern = "**/" + pattern
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	matches, err := doublestar.Glob(os.DirFS(abs), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("extract: scan %s: %w", dir, err)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(abs, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

// Columns returns the sorted union of keys across records.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// WriteCSV emits one row per record under the union header. Missing cells are blank.
func WriteCSV(w io.Writer, records []Record) error {
	cols := Columns(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = r[c]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, replacing any previous content.
func WriteCSVFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("extract: unable to write %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("extract: write %s: %w", path, err)
	}
	return f.Close()
}
