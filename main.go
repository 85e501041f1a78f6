// main.go - Entry point for the Warm Terminal Sound Lab

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/term"
)

const (
	ENV_SOUNDLAB_DIR = "SOUNDLAB_DIR"
	APP_DIR_NAME     = "warmterminal"
	PLAY_TAIL        = 150 * time.Millisecond
)

type appMode int

const (
	MODE_SHELL appMode = iota
	MODE_VIEWER
	MODE_PLAY
	MODE_RENDER
	MODE_EXPORT
	MODE_LIST
)

type appConfig struct {
	mode     appMode
	dataDir  string
	target   string // sound name for play/render, directory for export
	output   string
	luaFiles []string
	volume   float64
	noAudio  bool
}

type luaFlag []string

func (f *luaFlag) String() string { return fmt.Sprint(*f) }

func (f *luaFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func defaultDataDir() string {
	if dir := os.Getenv(ENV_SOUNDLAB_DIR); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, APP_DIR_NAME)
}

func parseFlags(args []string, stdout io.Writer) (appConfig, error) {
	var (
		cfg       appConfig
		modeView  bool
		modePlay  string
		modeRend  string
		modeExp   string
		modeList  bool
		luaScript luaFlag
	)

	flagSet := flag.NewFlagSet("soundlab", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&modeView, "viewer", false, "Open the lab window")
	flagSet.StringVar(&modePlay, "play", "", "Play one sound by name and exit")
	flagSet.StringVar(&modeRend, "render", "", "Render one sound by name to a WAV file")
	flagSet.StringVar(&modeExp, "export", "", "Render every lab sound into a directory")
	flagSet.BoolVar(&modeList, "list", false, "List sound names and durations")
	flagSet.StringVar(&cfg.output, "o", "", "Output file for -render (default <name>.wav)")
	flagSet.StringVar(&cfg.dataDir, "dir", defaultDataDir(), "Settings directory (env "+ENV_SOUNDLAB_DIR+")")
	flagSet.Var(&luaScript, "lua", "Import a Lua sound script into the lab (repeatable)")
	flagSet.Float64Var(&cfg.volume, "volume", DEFAULT_MASTER_VOLUME, "Master volume 0..1")
	flagSet.BoolVar(&cfg.noAudio, "no-audio", false, "Do not open an audio device")

	flagSet.Usage = func() {
		flagSet.SetOutput(stdout)
		fmt.Fprintln(stdout, "Usage: ./soundlab [-viewer | -play name | -render name [-o file] | -export dir | -list] [-lua script.lua]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}
	cfg.luaFiles = luaScript

	modeCount := 0
	for _, on := range []bool{modeView, modePlay != "", modeRend != "", modeExp != "", modeList} {
		if on {
			modeCount++
		}
	}
	if modeCount > 1 {
		return cfg, errors.New("select at most one of -viewer, -play, -render, -export, -list")
	}
	switch {
	case modeView:
		cfg.mode = MODE_VIEWER
	case modePlay != "":
		cfg.mode, cfg.target = MODE_PLAY, modePlay
	case modeRend != "":
		cfg.mode, cfg.target = MODE_RENDER, modeRend
		if cfg.output == "" {
			cfg.output = ExportFilename(modeRend)
		}
	case modeExp != "":
		cfg.mode, cfg.target = MODE_EXPORT, modeExp
	case modeList:
		cfg.mode = MODE_LIST
	default:
		cfg.mode = MODE_SHELL
	}
	if cfg.volume < 0 || cfg.volume > 1 {
		return cfg, fmt.Errorf("volume %v out of range 0..1", cfg.volume)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stdout)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "soundlab: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, stdout io.Writer) error {
	store, watch, err := openStore(cfg.dataDir, os.Stderr)
	if err != nil {
		return err
	}
	notifier := NewChangeNotifier()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	// Writes from another lab process reach the registry through the notifier.
	if err := watch(watchCtx, notifier); err != nil {
		fmt.Fprintf(os.Stderr, "soundlab: %v\n", err)
	}

	newContext := NewDeviceContext
	if cfg.noAudio || cfg.mode == MODE_RENDER || cfg.mode == MODE_EXPORT || cfg.mode == MODE_LIST {
		newContext = nil
	}
	system := NewSoundSystem(SoundSystemConfig{
		Store:      store,
		Notifier:   notifier,
		NewContext: newContext,
	})
	system.Init()
	system.SetMasterVolume(cfg.volume)
	defer system.Close()

	engine := NewEngine(system.Context())
	lab := NewLab(LabConfig{
		Store:     store,
		Notifier:  notifier,
		Engine:    engine,
		Clipboard: &SystemClipboard{},
	})
	for _, path := range cfg.luaFiles {
		s, err := lab.ImportLua(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %s from %s\n", s.ID, path)
	}

	switch cfg.mode {
	case MODE_PLAY:
		return playAndWait(ctx, system, SoundName(cfg.target))
	case MODE_RENDER:
		buf, err := system.RenderOffline(SoundName(cfg.target))
		if err != nil {
			return err
		}
		if err := WriteWAVFile(cfg.output, buf); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%.3fs, peak %.3f)\n", cfg.output, buf.Duration(), buf.Peak())
		return nil
	case MODE_EXPORT:
		paths, err := lab.ExportAll(ctx, cfg.target)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
		return nil
	case MODE_LIST:
		for _, name := range DefaultSoundNames {
			tag := ""
			if system.Registry().HasOverride(name) {
				tag = " (override)"
			}
			fmt.Fprintf(stdout, "%-14s%s\n", name, tag)
		}
		for _, key := range system.Registry().OverrideNames() {
			if !IsKnownSound(SoundName(key)) {
				fmt.Fprintf(stdout, "%-14s (custom)\n", key)
			}
		}
		return nil
	case MODE_VIEWER:
		return RunViewer(NewLabView(lab, system, cfg.dataDir))
	}
	return runShell(ctx, lab, system, filepath.Join(cfg.dataDir, "exports"))
}

// playAndWait plays name and sleeps until it has finished.
func playAndWait(ctx context.Context, system *SoundSystem, name SoundName) error {
	if !IsKnownSound(name) {
		return fmt.Errorf("%w: %q", ErrUnknownSound, name)
	}
	system.UnlockAudio()

	var ms float64
	switch name {
	case SOUND_STARTUP:
		ms = system.PlayStartup()
	case SOUND_WIND_DOWN:
		ms = system.PlayWindDown()
	default:
		sound, _ := system.Registry().Resolve(name)
		ms = ParamsDuration(sound.Params) * 1000
		system.Play(name)
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(ms)*time.Millisecond + PLAY_TAIL):
	}
	return nil
}

func runShell(ctx context.Context, lab *Lab, system *SoundSystem, exportDir string) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("shell: raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}
	rw := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	return NewShell(rw, lab, system, exportDir).Run(ctx)
}
