package logger

import (
	"log/slog"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"payload", slog.String("value", "blue"), "<4 bytes>"},
		{"empty payload", slog.String("value", ""), "<0 bytes>"},
		{"key is not sensitive", slog.String("key", "color"), "color"},
		{"password", slog.String("password", "hunter2"), redactedValue},
		{"auth token", slog.String("auth_token", "abc"), redactedValue},
		{"empty secret", slog.String("secret", ""), ""},
		{"normal", slog.String("remote", "127.0.0.1:1"), "127.0.0.1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("redactSensitive(%v) = %q, want %q", tt.attr, got.Value.String(), tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	attr := slog.Group("cmd", slog.String("key", "color"), slog.String("value", "blue"))

	got := redactSensitive(attr)
	group := got.Value.Group()
	if len(group) != 2 {
		t.Fatalf("group len = %d, want 2", len(group))
	}
	if group[0].Value.String() != "color" {
		t.Errorf("key = %q, want color", group[0].Value.String())
	}
	if group[1].Value.String() != "<4 bytes>" {
		t.Errorf("value = %q, want <4 bytes>", group[1].Value.String())
	}
}

func TestMaskPayload(t *testing.T) {
	if got := MaskPayload("hello world"); got != "<11 bytes>" {
		t.Errorf("MaskPayload() = %q", got)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"DB_PASSWORD", true},
		{"bearer", true},
		{"key", false},
		{"remote", false},
		{"conn", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
