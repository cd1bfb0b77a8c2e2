package mobotix

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"
)

// Banner lines wrapped around a "view configfile" dump by the remoteconfig protocol.
const (
	BannerLeadingLines  = 4
	BannerTrailingLines = 3

	VersionKey       = "VERSION="
	ConfigHeaderMark = "#:MX-"

	BackupExt        = ".cfg"
	backupTimeLayout = "060102-1504"
)

// Event profile API paths for the env:MI profile.
const (
	MicOffPath   = "/control/control?section=event_env&set_profile=env:MI&_profilestate=i"
	MicOnPath    = "/control/control?section=event_env&set_profile=env:MI&_profilestate="
	MicCheckPath = "/control/control?section=event_env&read_profile=env:MI"

	InactiveProfile = "_profilestate=i"
)

// BackupScript reads the whole configuration.
func BackupScript() []byte {
	return []byte("\nhelo\nview configfile\nquit\n\n")
}

// TimestampScript reads the section holding the firmware VERSION.
func TimestampScript() []byte {
	return []byte("helo\nview section timestamp\nquit\n")
}

// RestoreScript writes cfg, stores it to flash and activates it.
func RestoreScript(cfg []byte, reboot bool) []byte {
	var b bytes.Buffer
	b.WriteString("helo\nwrite\n")
	b.Write(cfg)
	if len(cfg) > 0 && cfg[len(cfg)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("store\nupdate\n")
	if reboot {
		b.WriteString("reboot\n")
	}
	b.WriteString("quit\n")
	return b.Bytes()
}

// SplitLines splits s after every newline, keeping the terminators.
func SplitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// StripBanner removes the protocol banner and footer from a configfile dump.
// Bodies too short to hold both yield an empty string.
func StripBanner(body string) string {
	lines := SplitLines(body)
	if len(lines) <= BannerLeadingLines+BannerTrailingLines {
		return ""
	}
	return strings.Join(lines[BannerLeadingLines:len(lines)-BannerTrailingLines], "")
}

// DeviceVersion returns the VERSION= value from a timestamp section dump.
func DeviceVersion(body string) (string, error) {
	i := strings.Index(body, VersionKey)
	if i < 0 {
		return "", ErrNoVersion
	}
	v := body[i+len(VersionKey):]
	if end := strings.IndexAny(v, "\r\n"); end >= 0 {
		v = v[:end]
	}
	return v, nil
}

// ConfigFileVersion returns the firmware version recorded in a saved
// configuration, i.e. its first "#:MX-" line without the leading "#:".
func ConfigFileVersion(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ConfigHeaderMark) {
			return strings.TrimRight(line[2:], "\r"), nil
		}
	}
	return "", sc.Err()
}

// ProfileActive reports whether an event profile dump is armed.
func ProfileActive(body string) bool {
	return !strings.Contains(body, InactiveProfile)
}

// BackupPrefix is the file name prefix used for host's saved configurations.
func BackupPrefix(host string) string {
	return strings.ReplaceAll(host, ".", "-") + "_"
}

// BackupFileName returns <ip-with-dashes>_<YYMMDD-HHMM>.cfg.
func BackupFileName(host string, t time.Time) string {
	return BackupPrefix(host) + t.Format(backupTimeLayout) + BackupExt
}
