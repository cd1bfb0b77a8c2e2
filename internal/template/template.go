package template

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Placeholder maps a brace-delimited token such as "{NAME}" to its literal value.
type Placeholder struct {
	Key   string
	Value string
}

// Placeholders is applied in slice order so that substitution is deterministic.
type Placeholders []Placeholder

// Token wraps a column name in braces.
func Token(name string) string {
	return "{" + name + "}"
}

// Add appends a placeholder for the given column name.
func (p *Placeholders) Add(column, value string) {
	*p = append(*p, Placeholder{Key: Token(column), Value: value})
}

// Lookup returns the value mapped to key.
func (p Placeholders) Lookup(key string) (string, bool) {
	for _, ph := range p {
		if ph.Key == key {
			return ph.Value, true
		}
	}
	return "", false
}

// Substitute replaces every occurrence of every key in line.
// Each key is applied exactly once; values are inserted literally and never
// re-expanded by their own pass.
func Substitute(line string, ph Placeholders) string {
	for _, p := range ph {
		if p.Key == "" {
			continue
		}
		line = strings.ReplaceAll(line, p.Key, p.Value)
	}
	return line
}

// Render applies Substitute to every line of r and returns the resulting
// command file. Line endings are preserved.
func Render(r io.Reader, ph Placeholders) ([]byte, error) {
	var out bytes.Buffer
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			out.WriteString(Substitute(line, ph))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
	}
	return out.Bytes(), nil
}
