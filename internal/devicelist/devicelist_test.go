package devicelist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	l, err := Parse(strings.NewReader("IP;NAME\n1.2.3.4;cam1\n#5.6.7.8;cam2\n"))
	require.NoError(t, err)

	assert.Equal(t, Row{"IP", "NAME"}, l.Header)
	require.Len(t, l.Rows, 2)
	assert.False(t, l.Rows[0].Disabled())
	assert.True(t, l.Rows[1].Disabled())
}

func TestEnabledSkipsComments(t *testing.T) {
	l, err := Parse(strings.NewReader("IP;NAME\n1.2.3.4;cam1\n#5.6.7.8;cam2\n10.0.0.9;cam3\n;orphan\n"))
	require.NoError(t, err)

	got := l.Enabled()
	require.Len(t, got, 2)
	assert.Equal(t, "1.2.3.4", got[0].Row.Host())
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "10.0.0.9", got[1].Row.Host())
	assert.Equal(t, 3, got[1].Index)
	assert.Equal(t, 2, l.Disabled())
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.csv")
	require.NoError(t, os.WriteFile(path, []byte("IP;NAME;ROOM\n192.168.1.10;cam1;101\n"), 0o600))

	l, err := Load(path)
	require.NoError(t, err)
	require.Len(t, l.Rows, 1)
	assert.Equal(t, "192.168.1.10", l.Rows[0].Host())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSingle(t *testing.T) {
	l := Single("10.1.1.1")
	assert.Equal(t, Row{"IP"}, l.Header)
	require.Len(t, l.Enabled(), 1)
	assert.Empty(t, l.Placeholders(l.Rows[0]))
}

func TestPlaceholders(t *testing.T) {
	l, err := Parse(strings.NewReader("IP;NAME;ROOM\n1.2.3.4;cam1;101\n1.2.3.5;cam2\n1.2.3.6;cam3;102;extra\n"))
	require.NoError(t, err)

	ph := l.Placeholders(l.Rows[0])
	require.Len(t, ph, 2)
	assert.Equal(t, "{NAME}", ph[0].Key)
	assert.Equal(t, "cam1", ph[0].Value)
	assert.Equal(t, "{ROOM}", ph[1].Key)
	assert.Equal(t, "101", ph[1].Value)

	// short row: missing column skipped
	ph = l.Placeholders(l.Rows[1])
	require.Len(t, ph, 1)
	assert.Equal(t, "{NAME}", ph[0].Key)

	// long row: extra value has no header
	ph = l.Placeholders(l.Rows[2])
	assert.Len(t, ph, 2)
}

func TestValidateIPv4(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"192.168.1.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"a.b.c.d", false},
		{"1..2.3", false},
		{"-1.2.3.4", false},
		{"cam01.local", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidateIPv4(c.input), c.input)
	}
}
