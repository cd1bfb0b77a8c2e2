package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	var ph Placeholders
	ph.Add("COL1", "a")
	ph.Add("COL2", "b")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"both keys", "GET {COL1}/{COL2}", "GET a/b"},
		{"repeated key", "{COL1}{COL1}-{COL1}", "aa-a"},
		{"no placeholders", "helo\n", "helo\n"},
		{"unknown token kept", "{COL3} {COL1}", "{COL3} a"},
		{"empty line", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.input, ph))
		})
	}
}

func TestSubstituteIsNotRecursive(t *testing.T) {
	var ph Placeholders
	ph.Add("A", "{A}{A}")

	assert.Equal(t, "x{A}{A}y", Substitute("x{A}y", ph))
}

func TestSubstituteEmptyMap(t *testing.T) {
	line := "write\nHOSTNAME={NAME}\n"
	assert.Equal(t, line, Substitute(line, nil))
}

func TestRender(t *testing.T) {
	var ph Placeholders
	ph.Add("NAME", "cam1")
	ph.Add("ROOM", "101")

	tpl := "helo\nwrite\nHOSTNAME={NAME}\nTEXT=Room {ROOM} ({NAME})\nstore\nquit"
	got, err := Render(strings.NewReader(tpl), ph)
	require.NoError(t, err)

	assert.Equal(t, "helo\nwrite\nHOSTNAME=cam1\nTEXT=Room 101 (cam1)\nstore\nquit", string(got))
}

func TestLookup(t *testing.T) {
	var ph Placeholders
	ph.Add("NAME", "cam1")

	v, ok := ph.Lookup("{NAME}")
	assert.True(t, ok)
	assert.Equal(t, "cam1", v)

	_, ok = ph.Lookup("NAME")
	assert.False(t, ok)
}
