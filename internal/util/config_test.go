package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
root_path = "/srv/scripts"
max_call_depth = 250
http_timeout = "5s"
locale = "fr-FR"
log_level = "debug"
`)

	cfg := DefaultConfiguration()
	if err := LoadConfigFile(path, &cfg); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	if cfg.RootPath != "/srv/scripts" {
		t.Fatalf("RootPath wrong. got=%q", cfg.RootPath)
	}
	if cfg.MaxCallDepth != 250 {
		t.Fatalf("MaxCallDepth wrong. got=%d", cfg.MaxCallDepth)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("HTTPTimeout wrong. got=%s", cfg.HTTPTimeout)
	}
	if cfg.Locale != "fr-FR" {
		t.Fatalf("Locale wrong. got=%q", cfg.Locale)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel wrong. got=%q", cfg.LogLevel)
	}
	if cfg.LogFile != "" {
		t.Fatalf("LogFile should be untouched. got=%q", cfg.LogFile)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		content string
	}{
		{`http_timeout = "soon"`},
		{`colour = "blue"`},
		{`max_call_depth = `},
	}

	for i, tt := range tests {
		path := writeConfig(t, t.TempDir(), tt.content)
		cfg := DefaultConfiguration()
		if err := LoadConfigFile(path, &cfg); err == nil {
			t.Fatalf("tests[%d] - expected an error for %q", i, tt.content)
		}
	}
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	if got := ConfigPath("", home); got != "" {
		t.Fatalf("expected no config without a file. got=%q", got)
	}
	path := writeConfig(t, home, "")
	if got := ConfigPath("", home); got != path {
		t.Fatalf("expected %q. got=%q", path, got)
	}
	if got := ConfigPath("other.toml", home); got != "other.toml" {
		t.Fatalf("explicit path should win. got=%q", got)
	}
	if got := ConfigPath("", ""); got != "" {
		t.Fatalf("expected no config without a home. got=%q", got)
	}
}

func TestGetLineAndColumn(t *testing.T) {
	src := "~a is 1\n~b is 2\n"
	tests := []struct {
		pos          int
		line, column int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{8, 2, 1},
		{10, 2, 3},
	}

	for i, tt := range tests {
		line, col := GetLineAndColumn(src, tt.pos)
		if line != tt.line || col != tt.column {
			t.Fatalf("tests[%d] - wrong position. want=%d:%d, got=%d:%d", i, tt.line, tt.column, line, col)
		}
	}
}
