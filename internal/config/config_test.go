package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/akhildatla/intcode/internal/testutil"
)

func writeProfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	dir := t.TempDir()
	path := writeProfile(t, dir, `
[program]
path = "day9.txt"
inputs = [1, 2]

[limits]
max_steps = 100000
timeout = "5s"

[amplifier]
phases = [5, 6, 7, 8, 9]
signal = 3
feedback = true

[log]
level = "debug"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Program.Path != filepath.Join(dir, "day9.txt") {
		t.Errorf("expected program path resolved against profile, got %s", c.Program.Path)
	}
	testutil.AssertCellsEqual(t, []int64{1, 2}, c.Program.Inputs)
	testutil.AssertInt64Equal(t, 100000, c.Limits.MaxSteps)
	if c.Limits.Timeout.Duration != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.Limits.Timeout)
	}
	testutil.AssertCellsEqual(t, []int64{5, 6, 7, 8, 9}, c.Amplifier.Phases)
	testutil.AssertInt64Equal(t, 3, c.Amplifier.Signal)
	if !c.Amplifier.Feedback {
		t.Error("expected feedback enabled")
	}
	if c.Log.Level != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %v", c.Log.Level)
	}
	if c.Path != path {
		t.Errorf("expected Path %s, got %s", path, c.Path)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "[program]\ninputs = [7]\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	testutil.AssertCellsEqual(t, []int64{0, 1, 2, 3, 4}, c.Amplifier.Phases)
	if c.Log.Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %v", c.Log.Level)
	}
	if c.Limits.MaxSteps != 0 || c.Limits.Timeout.Duration != 0 {
		t.Errorf("expected unlimited, got %+v", c.Limits)
	}
	if c.Program.Path != "" {
		t.Errorf("expected empty program path, got %q", c.Program.Path)
	}
}

func TestLoad_AbsoluteProgramPath(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "[program]\npath = \"/abs/prog.txt\"\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Program.Path != "/abs/prog.txt" {
		t.Errorf("expected absolute path kept, got %s", c.Program.Path)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[program\n", "parse error"},
		{"bad duration", "[limits]\ntimeout = \"soon\"\n", "parse error"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "parse error"},
		{"negative steps", "[limits]\nmax_steps = -1\n", "max_steps"},
		{"negative timeout", "[limits]\ntimeout = \"-1s\"\n", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load("/nonexistent/intcode.toml"); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeProfile(t, root, "[limits]\nmax_steps = 10\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	testutil.AssertInt64Equal(t, 10, c.Limits.MaxSteps)
	if c.Path != filepath.Join(root, FileName) {
		t.Errorf("expected profile from %s, got %s", root, c.Path)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ENVE_LOGDISABLED", "1")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvMaxSteps, "500")
	t.Setenv(EnvTimeout, "250ms")

	c := Default()
	c.Limits.MaxSteps = 10
	c.ApplyEnv()

	if c.Log.Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v", c.Log.Level)
	}
	testutil.AssertInt64Equal(t, 500, c.Limits.MaxSteps)
	if c.Limits.Timeout.Duration != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", c.Limits.Timeout)
	}
}

func TestApplyEnv_InvalidKeepsProfile(t *testing.T) {
	t.Setenv("ENVE_LOGDISABLED", "1")
	t.Setenv(EnvLogLevel, "loud")
	t.Setenv(EnvMaxSteps, "-3")
	t.Setenv(EnvTimeout, "soon")

	c := Default()
	c.Log.Level = zapcore.ErrorLevel
	c.Limits.MaxSteps = 10
	c.Limits.Timeout.Duration = time.Second
	c.ApplyEnv()

	if c.Log.Level != zapcore.ErrorLevel {
		t.Errorf("expected error level kept, got %v", c.Log.Level)
	}
	testutil.AssertInt64Equal(t, 10, c.Limits.MaxSteps)
	if c.Limits.Timeout.Duration != time.Second {
		t.Errorf("expected 1s kept, got %v", c.Limits.Timeout)
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "1m30s" {
		t.Errorf("expected 1m30s, got %s", text)
	}
}
