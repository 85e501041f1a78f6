// main_test.go - Tests for flag parsing and batch modes

package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	t.Setenv(ENV_SOUNDLAB_DIR, "/tmp/lab")
	cfg, err := parseFlags(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.mode != MODE_SHELL || cfg.dataDir != "/tmp/lab" || cfg.volume != DEFAULT_MASTER_VOLUME {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseFlagsModes(t *testing.T) {
	tests := []struct {
		args   []string
		mode   appMode
		target string
		output string
	}{
		{[]string{"-viewer"}, MODE_VIEWER, "", ""},
		{[]string{"-play", "click"}, MODE_PLAY, "click", ""},
		{[]string{"-render", "Palette Open"}, MODE_RENDER, "Palette Open", "palette-open.wav"},
		{[]string{"-render", "hover", "-o", "h.wav"}, MODE_RENDER, "hover", "h.wav"},
		{[]string{"-export", "out"}, MODE_EXPORT, "out", ""},
		{[]string{"-list"}, MODE_LIST, "", ""},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cfg, err := parseFlags(tt.args, &bytes.Buffer{})
			if err != nil {
				t.Fatal(err)
			}
			if cfg.mode != tt.mode || cfg.target != tt.target || cfg.output != tt.output {
				t.Fatalf("cfg = %+v", cfg)
			}
		})
	}
}

func TestParseFlagsLuaRepeatable(t *testing.T) {
	cfg, err := parseFlags([]string{"-lua", "a.lua", "-lua", "b.lua", "-no-audio"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.luaFiles) != 2 || cfg.luaFiles[1] != "b.lua" || !cfg.noAudio {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseFlagsRejects(t *testing.T) {
	for _, args := range [][]string{
		{"-viewer", "-list"},
		{"-play", "click", "-render", "click"},
		{"-volume", "1.5"},
		{"-volume", "-0.1"},
		{"-bogus"},
	} {
		if _, err := parseFlags(args, &bytes.Buffer{}); err == nil {
			t.Errorf("%v accepted", args)
		}
	}
}

func TestParseFlagsHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &out)
	if err != flag.ErrHelp {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
	if !strings.Contains(out.String(), "Usage: ./soundlab") || !strings.Contains(out.String(), "-render") {
		t.Fatalf("usage = %q", out.String())
	}
}

func TestRunRenderAndExport(t *testing.T) {
	dataDir := t.TempDir()
	outFile := filepath.Join(t.TempDir(), "click.wav")
	var stdout bytes.Buffer
	cfg := appConfig{mode: MODE_RENDER, dataDir: dataDir, target: "click", output: outFile, volume: 0.5}
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "wrote "+outFile) {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if _, err := os.Stat(outFile); err != nil {
		t.Fatal(err)
	}

	exportDir := filepath.Join(t.TempDir(), "wavs")
	stdout.Reset()
	cfg = appConfig{mode: MODE_EXPORT, dataDir: dataDir, target: exportDir, volume: 0.5}
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(stdout.String(), ".wav"); n != len(DefaultSoundNames) {
		t.Fatalf("exported %d files", n)
	}
}

func TestRunListWithLuaImport(t *testing.T) {
	dataDir := t.TempDir()
	script := filepath.Join(t.TempDir(), "zap.lua")
	os.WriteFile(script, []byte(`return { oscA = osc{ waveform = "sawtooth" } }`), 0o644)

	var stdout bytes.Buffer
	cfg := appConfig{mode: MODE_LIST, dataDir: dataDir, luaFiles: []string{script}, volume: 0.7}
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatal(err)
	}
	out := stdout.String()
	if !strings.Contains(out, "imported ") || !strings.Contains(out, "paletteClose") {
		t.Fatalf("stdout = %q", out)
	}
}

func TestRunRenderUnknown(t *testing.T) {
	cfg := appConfig{mode: MODE_RENDER, dataDir: t.TempDir(), target: "nope", output: filepath.Join(t.TempDir(), "x.wav")}
	if err := run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("unknown sound rendered")
	}
}

func TestRunListShowsCustomOverrides(t *testing.T) {
	dataDir := t.TempDir()
	fs, err := OpenFileStore(dataDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	custom := NewSound("Chirp", SOUND_SIMPLE)
	click, _ := DefaultSound(SOUND_CLICK)
	data, _ := EncodeSoundTable(map[string]Sound{custom.ID: custom, "click": click})
	fs.Set(KEY_SOUND_TABLE, data)

	var stdout bytes.Buffer
	cfg := appConfig{mode: MODE_LIST, dataDir: dataDir, volume: 0.7}
	if err := run(context.Background(), cfg, &stdout); err != nil {
		t.Fatal(err)
	}
	out := stdout.String()
	if !strings.Contains(out, "click          (override)") {
		t.Fatalf("stdout = %q", out)
	}
	if !strings.Contains(out, custom.ID) || !strings.Contains(out, "(custom)") {
		t.Fatalf("custom sound not listed: %q", out)
	}
}
