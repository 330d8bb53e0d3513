package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig_Full(t *testing.T) {
	yaml := `
output: yaml
color: never
index: build/symbols.db
watch:
  debounce: 1s
serve:
  addr: 0.0.0.0:9000
`
	cfg, err := ParseConfig([]byte(yaml), "decaf.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output != FormatYAML {
		t.Errorf("output = %q, want yaml", cfg.Output)
	}
	if cfg.Color != ColorNever {
		t.Errorf("color = %q, want never", cfg.Color)
	}
	if cfg.Index != "build/symbols.db" {
		t.Errorf("index = %q, want build/symbols.db", cfg.Index)
	}
	if time.Duration(cfg.Watch.Debounce) != time.Second {
		t.Errorf("debounce = %v, want 1s", time.Duration(cfg.Watch.Debounce))
	}
	if cfg.Serve.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q, want 0.0.0.0:9000", cfg.Serve.Addr)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("{}"), "decaf.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if cfg.Output != want.Output || cfg.Color != want.Color || cfg.Index != want.Index {
		t.Errorf("defaults = %+v, want %+v", cfg, want)
	}
	if time.Duration(cfg.Watch.Debounce) != DefaultDebounce {
		t.Errorf("debounce = %v, want %v", time.Duration(cfg.Watch.Debounce), DefaultDebounce)
	}
	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Serve.Addr, DefaultAddr)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown output", "output: xml", "unknown output format"},
		{"unknown color", "color: sometimes", "unknown color mode"},
		{"bad duration", "watch:\n  debounce: soon", "invalid duration"},
		{"negative duration", "watch:\n  debounce: -1s", "must not be negative"},
		{"malformed", "output: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "decaf.yaml")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestFindConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("output: json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != cfgPath {
		t.Errorf("found = %q, want %q", found, cfgPath)
	}

	cfg, err := LoadConfig(found)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != root {
		t.Errorf("dir = %q, want %q", cfg.Dir, root)
	}
	if got, want := cfg.IndexPath(), filepath.Join(root, DefaultIndexPath); got != want {
		t.Errorf("index path = %q, want %q", got, want)
	}
}

func TestFindConfig_NotFound(t *testing.T) {
	found, err := FindConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A decaf.yaml above the temp dir would be picked up; only check it is not inside.
	if found != "" && !strings.HasSuffix(found, ConfigFileName) {
		t.Errorf("found = %q", found)
	}
}
