// Package devicelist loads the semicolon-delimited camera lists shared by all
// mx tools. Row 0 is the header; every following row describes one device and
// has the device IP or hostname in its first field.
package devicelist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/technosupport/mxtools/internal/template"
)

const (
	Delimiter     = ';'
	CommentPrefix = "#"
	DefaultHeader = "IP"
)

var ErrEmpty = errors.New("devicelist: no header row")

// Row is one line of the device list.
type Row []string

// Host returns the device address in field 0.
func (r Row) Host() string {
	if len(r) == 0 {
		return ""
	}
	return strings.TrimSpace(r[0])
}

// Disabled reports whether the row is commented out. Blank rows count as disabled.
func (r Row) Disabled() bool {
	h := r.Host()
	return h == "" || strings.HasPrefix(h, CommentPrefix)
}

// List is a loaded device list. It is read-only after loading.
type List struct {
	Header Row
	Rows   []Row
}

// Entry is an enabled device with its position in the list.
type Entry struct {
	Index int // 1-based row number below the header
	Row   Row
}

// Load parses the device list at path.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("devicelist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a semicolon-delimited device list.
func Parse(r io.Reader) (*List, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("devicelist: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	l := &List{Header: Row(records[0])}
	for _, rec := range records[1:] {
		l.Rows = append(l.Rows, Row(rec))
	}
	return l, nil
}

// Single synthesizes a one-device list for the -d flag.
func Single(host string) *List {
	return &List{
		Header: Row{DefaultHeader},
		Rows:   []Row{{host}},
	}
}

// Enabled returns the rows that may be contacted, in list order.
func (l *List) Enabled() []Entry {
	var out []Entry
	for i, r := range l.Rows {
		if r.Disabled() {
			continue
		}
		out = append(out, Entry{Index: i + 1, Row: r})
	}
	return out
}

// Disabled returns the number of commented-out rows.
func (l *List) Disabled() int {
	n := 0
	for _, r := range l.Rows {
		if r.Disabled() {
			n++
		}
	}
	return n
}

// Placeholders zips the header with row, skipping the address column and any
// column missing from either side.
func (l *List) Placeholders(row Row) template.Placeholders {
	n := len(l.Header)
	if len(row) < n {
		n = len(row)
	}
	ph := make(template.Placeholders, 0, n)
	for i := 1; i < n; i++ {
		ph.Add(l.Header[i], row[i])
	}
	return ph
}

// ValidateIPv4 reports whether s is four dot-separated decimal octets.
func ValidateIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
