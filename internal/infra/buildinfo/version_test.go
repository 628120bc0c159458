package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should not be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	oldV, oldC, oldT := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldV, oldC, oldT })

	Version, Commit, BuildTime = "v1.2.3", "0123456789abcdef", "2026-01-02T03:04:05Z"
	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "0123456789abcdef" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("Get() = %+v, ldflags values not used", info)
	}

	s := String()
	if !strings.HasPrefix(s, "v1.2.3 (0123456789ab) built at 2026-01-02T03:04:05Z") {
		t.Errorf("String() = %q", s)
	}
	if !strings.HasSuffix(s, runtime.Version()) {
		t.Errorf("String() = %q, want Go version suffix", s)
	}
}

func TestShortCommit(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"unknown", "unknown"},
		{"abc", "abc"},
		{"0123456789abcdef0123", "0123456789ab"},
	}
	for _, tt := range tests {
		if got := shortCommit(tt.in); got != tt.want {
			t.Errorf("shortCommit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
