// lab_shell.go - Interactive Sound Lab command shell

/*
(c) 2025 - 2026 Sushanth Kashyap
https://github.com/ethereal-keys/warmterminal
License: GPLv3 or later
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const SHELL_PROMPT = "soundlab> "

var errShellQuit = errors.New("quit")

// Shell is a line editor over the lab. It works on any ReadWriter; main puts
// stdin into raw mode before handing it over.
type Shell struct {
	lab       *Lab
	system    *SoundSystem
	term      *term.Terminal
	exportDir string
}

type shellCommand struct {
	usage string
	run   func(sh *Shell, args []string) error
}

var shellCommands map[string]shellCommand

func init() {
	shellCommands = map[string]shellCommand{
		"list":   {"list", (*Shell).cmdList},
		"play":   {"play <id|name>", (*Shell).cmdPlay},
		"stop":   {"stop", (*Shell).cmdStop},
		"show":   {"show <id>", (*Shell).cmdShow},
		"set":    {"set <id> <field> <value>", (*Shell).cmdSet},
		"note":   {"note <id> add | note <id> rm <n>", (*Shell).cmdNote},
		"new":    {"new <name> [simple|sequence]", (*Shell).cmdNew},
		"dup":    {"dup <id>", (*Shell).cmdDup},
		"rm":     {"rm <id>", (*Shell).cmdRemove},
		"reset":  {"reset <id>", (*Shell).cmdReset},
		"save":   {"save", (*Shell).cmdSave},
		"export": {"export <id|all> [dir]", (*Shell).cmdExport},
		"copy":   {"copy <id>", (*Shell).cmdCopy},
		"paste":  {"paste", (*Shell).cmdPaste},
		"lua":    {"lua <file>", (*Shell).cmdLua},
		"toggle": {"toggle", (*Shell).cmdToggle},
		"volume": {"volume [0..1]", (*Shell).cmdVolume},
		"status": {"status", (*Shell).cmdStatus},
		"help":   {"help", (*Shell).cmdHelp},
		"quit":   {"quit", func(*Shell, []string) error { return errShellQuit }},
	}
}

func NewShell(rw io.ReadWriter, lab *Lab, system *SoundSystem, exportDir string) *Shell {
	sh := &Shell{
		lab:       lab,
		system:    system,
		term:      term.NewTerminal(rw, SHELL_PROMPT),
		exportDir: exportDir,
	}
	sh.term.AutoCompleteCallback = sh.complete
	return sh
}

// Run reads commands until quit, EOF or ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := sh.term.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("shell: %w", err)
		}
		if err := sh.Exec(line); err != nil {
			if errors.Is(err, errShellQuit) {
				return nil
			}
			sh.printf("error: %v\n", err)
		}
	}
}

// Exec runs one command line.
func (sh *Shell) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := shellCommands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return cmd.run(sh, fields[1:])
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.term, format, args...)
}

// complete fills in command names on tab.
func (sh *Shell) complete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || strings.Contains(line[:pos], " ") {
		return "", 0, false
	}
	var match string
	for name := range shellCommands {
		if strings.HasPrefix(name, line[:pos]) {
			if match != "" {
				return "", 0, false
			}
			match = name
		}
	}
	if match == "" {
		return "", 0, false
	}
	return match + " ", len(match) + 1, true
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

// lookup accepts an ID or an exact, case-insensitive name.
func (sh *Shell) lookup(key string) (Sound, error) {
	if s, err := sh.lab.Get(key); err == nil {
		return s, nil
	}
	for _, s := range sh.lab.List() {
		if strings.EqualFold(s.Name, key) {
			return s, nil
		}
	}
	return Sound{}, fmt.Errorf("%w: %q", ErrUnknownSound, key)
}

func (sh *Shell) cmdList(args []string) error {
	var cat Category
	for _, s := range sh.lab.List() {
		if s.Category != cat {
			cat = s.Category
			sh.printf("[%s]\n", cat)
		}
		flags := ""
		if s.Modified {
			flags += "*"
		}
		if s.Locked {
			flags += "L"
		}
		sh.printf("  %-24s %-9s %6.0fms %s\n", s.ID, s.Type, ParamsDuration(s.Params)*1000, flags)
	}
	if sh.lab.Dirty() {
		sh.printf("(unsaved changes)\n")
	}
	return nil
}

func (sh *Shell) cmdPlay(args []string) error {
	if err := needArgs(args, 1, shellCommands["play"].usage); err != nil {
		return err
	}
	key := strings.Join(args, " ")
	if name := SoundName(key); IsCompositeSound(name) && sh.system != nil {
		sh.system.UnlockAudio()
		sh.system.Play(name)
		return nil
	}
	s, err := sh.lookup(key)
	if err != nil {
		return err
	}
	if sh.system != nil {
		sh.system.UnlockAudio()
	}
	ms, err := sh.lab.Play(s.ID)
	if err != nil {
		return err
	}
	sh.printf("%s (%.0fms)\n", s.Name, ms)
	return nil
}

func (sh *Shell) cmdStop(args []string) error {
	sh.lab.Stop()
	return nil
}

func (sh *Shell) cmdShow(args []string) error {
	if err := needArgs(args, 1, shellCommands["show"].usage); err != nil {
		return err
	}
	s, err := sh.lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	sh.printf("%s\n", data)
	return nil
}

func (sh *Shell) cmdSet(args []string) error {
	if err := needArgs(args, 3, shellCommands["set"].usage); err != nil {
		return err
	}
	s, err := sh.lookup(args[0])
	if err != nil {
		return err
	}
	if err := SetSoundField(&s, args[1], strings.Join(args[2:], " ")); err != nil {
		return err
	}
	_, err = sh.lab.Update(s)
	return err
}

func (sh *Shell) cmdNote(args []string) error {
	usage := shellCommands["note"].usage
	if err := needArgs(args, 2, usage); err != nil {
		return err
	}
	s, err := sh.lookup(args[0])
	if err != nil {
		return err
	}
	switch args[1] {
	case "add":
		s, err = sh.lab.AddNote(s.ID)
		if err != nil {
			return err
		}
		sh.printf("%s: %d note(s)\n", s.ID, len(s.Params.(*SequenceParams).Notes))
		return nil
	case "rm":
		if err := needArgs(args, 3, usage); err != nil {
			return err
		}
		p, ok := s.Params.(*SequenceParams)
		if !ok {
			return fmt.Errorf("%w: %q", ErrNotSequence, s.ID)
		}
		i, err := strconv.Atoi(args[2])
		if err != nil || i < 1 || i > len(p.Notes) {
			return fmt.Errorf("no note %q", args[2])
		}
		s, err = sh.lab.DeleteNote(s.ID, p.Notes[i-1].ID)
		if err != nil {
			return err
		}
		sh.printf("%s: %d note(s)\n", s.ID, len(s.Params.(*SequenceParams).Notes))
		return nil
	}
	return fmt.Errorf("usage: %s", usage)
}

func (sh *Shell) cmdNew(args []string) error {
	if err := needArgs(args, 1, shellCommands["new"].usage); err != nil {
		return err
	}
	t := SOUND_SIMPLE
	if len(args) > 1 {
		t = SoundType(args[len(args)-1])
		if t != SOUND_SIMPLE && t != SOUND_SEQUENCE {
			return fmt.Errorf("unknown sound type %q", t)
		}
		args = args[:len(args)-1]
	}
	s := sh.lab.Create(strings.Join(args, " "), t)
	sh.printf("created %s\n", s.ID)
	return nil
}

func (sh *Shell) cmdDup(args []string) error {
	if err := needArgs(args, 1, shellCommands["dup"].usage); err != nil {
		return err
	}
	s, err := sh.lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	d, err := sh.lab.Duplicate(s.ID)
	if err != nil {
		return err
	}
	sh.printf("created %s\n", d.ID)
	return nil
}

func (sh *Shell) cmdRemove(args []string) error {
	if err := needArgs(args, 1, shellCommands["rm"].usage); err != nil {
		return err
	}
	s, err := sh.lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return sh.lab.Delete(s.ID)
}

func (sh *Shell) cmdReset(args []string) error {
	if err := needArgs(args, 1, shellCommands["reset"].usage); err != nil {
		return err
	}
	_, err := sh.lab.Reset(args[0])
	return err
}

func (sh *Shell) cmdSave(args []string) error {
	if err := sh.lab.Save(); err != nil {
		return err
	}
	sh.printf("saved %d override(s)\n", len(sh.lab.Table()))
	return nil
}

func (sh *Shell) cmdExport(args []string) error {
	if err := needArgs(args, 1, shellCommands["export"].usage); err != nil {
		return err
	}
	dir := sh.exportDir
	if len(args) > 1 {
		dir = args[1]
	}
	if args[0] == "all" {
		paths, err := sh.lab.ExportAll(context.Background(), dir)
		if err != nil {
			return err
		}
		sh.printf("wrote %d file(s) to %s\n", len(paths), dir)
		return nil
	}
	s, err := sh.lookup(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path, err := sh.lab.ExportWAV(s.ID, dir)
	if err != nil {
		return err
	}
	sh.printf("wrote %s\n", path)
	return nil
}

func (sh *Shell) cmdCopy(args []string) error {
	if err := needArgs(args, 1, shellCommands["copy"].usage); err != nil {
		return err
	}
	s, err := sh.lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return sh.lab.CopyToClipboard(s.ID)
}

func (sh *Shell) cmdPaste(args []string) error {
	s, err := sh.lab.PasteFromClipboard()
	if err != nil {
		return err
	}
	sh.printf("imported %s\n", s.ID)
	return nil
}

func (sh *Shell) cmdLua(args []string) error {
	if err := needArgs(args, 1, shellCommands["lua"].usage); err != nil {
		return err
	}
	s, err := sh.lab.ImportLua(context.Background(), args[0])
	if err != nil {
		return err
	}
	sh.printf("imported %s\n", s.ID)
	return nil
}

func (sh *Shell) cmdToggle(args []string) error {
	if sh.system == nil {
		return errors.New("no sound system")
	}
	if sh.system.Toggle() {
		sh.printf("sound on\n")
	} else {
		sh.printf("sound off\n")
	}
	return nil
}

func (sh *Shell) cmdVolume(args []string) error {
	if sh.system == nil {
		return errors.New("no sound system")
	}
	if len(args) > 0 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bad volume %q", args[0])
		}
		sh.system.SetMasterVolume(v)
	}
	sh.printf("volume %.2f\n", sh.system.GetMasterVolume())
	return nil
}

func (sh *Shell) cmdStatus(args []string) error {
	if sh.system == nil {
		return errors.New("no sound system")
	}
	state := "off"
	if sh.system.IsEnabled() {
		state = "on"
	}
	sh.printf("sound %s, volume %.2f\n", state, sh.system.GetMasterVolume())
	if sh.system.IsStartupPlaying() {
		sh.printf("startup playing\n")
	}
	if sh.system.IsWindDownPlaying() {
		sh.printf("windDown playing\n")
	}
	if names := sh.system.Registry().OverrideNames(); len(names) > 0 {
		sh.printf("overrides: %s\n", strings.Join(names, " "))
	}
	return nil
}

func (sh *Shell) cmdHelp(args []string) error {
	for _, name := range []string{"list", "play", "stop", "show", "set", "note", "new", "dup", "rm", "reset",
		"save", "export", "copy", "paste", "lua", "toggle", "volume", "status", "help", "quit"} {
		sh.printf("  %s\n", shellCommands[name].usage)
	}
	sh.printf("fields: name description category oscA.* oscB.* envelope.* filter.* notes.<n>.*\n")
	return nil
}

// SetSoundField assigns one dotted field path, e.g. "oscA.frequency" or
// "notes.2.delay". Values for frequency fields may be note names.
func SetSoundField(s *Sound, path, value string) error {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "name":
		s.Name = value
		return nil
	case "description":
		s.Description = value
		return nil
	case "category":
		s.Category = Category(value)
		return nil
	}

	switch p := s.Params.(type) {
	case *SimpleParams:
		switch parts[0] {
		case "oscA":
			return setOscField(&p.OscA, parts[1:], value)
		case "oscB":
			return setOscField(&p.OscB, parts[1:], value)
		case "envelope":
			return setEnvelopeField(&p.Envelope, parts[1:], value)
		case "filter":
			return setFilterField(&p.Filter, parts[1:], value)
		}
	case *SequenceParams:
		switch parts[0] {
		case "envelope":
			return setEnvelopeField(&p.Envelope, parts[1:], value)
		case "filter":
			return setFilterField(&p.Filter, parts[1:], value)
		case "notes":
			if len(parts) != 3 {
				return fmt.Errorf("usage: notes.<n>.<field>")
			}
			i, err := strconv.Atoi(parts[1])
			if err != nil || i < 1 || i > len(p.Notes) {
				return fmt.Errorf("no note %q", parts[1])
			}
			return setNoteField(&p.Notes[i-1], parts[2], value)
		}
	}
	return fmt.Errorf("unknown field %q", path)
}

func parseFrequency(value string) (float64, error) {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f, nil
	}
	return ParseNote(value)
}

func parseField(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", value)
	}
	return f, nil
}

func setOscField(o *OscillatorParams, path []string, value string) error {
	if len(path) == 0 {
		return fmt.Errorf("missing oscillator field")
	}
	var err error
	switch strings.Join(path, ".") {
	case "enabled":
		o.Enabled, err = strconv.ParseBool(value)
	case "waveform":
		o.Waveform, err = ParseWaveform(value)
	case "frequency":
		o.Frequency, err = parseFrequency(value)
	case "detune":
		o.Detune, err = parseField(value)
	case "level":
		o.Level, err = parseField(value)
	case "pitch.enabled":
		o.PitchEnvelope.Enabled, err = strconv.ParseBool(value)
	case "pitch.from":
		o.PitchEnvelope.StartFreq, err = parseFrequency(value)
	case "pitch.to":
		o.PitchEnvelope.EndFreq, err = parseFrequency(value)
	case "pitch.time":
		o.PitchEnvelope.TimeMs, err = parseField(value)
	default:
		return fmt.Errorf("unknown oscillator field %q", strings.Join(path, "."))
	}
	return err
}

func setEnvelopeField(e *EnvelopeParams, path []string, value string) error {
	if len(path) != 1 {
		return fmt.Errorf("missing envelope field")
	}
	v, err := parseField(value)
	if err != nil {
		return err
	}
	switch path[0] {
	case "attack":
		e.AttackMs = v
	case "decay":
		e.DecayMs = v
	case "sustain":
		e.Sustain = v
	case "release":
		e.ReleaseMs = v
	default:
		return fmt.Errorf("unknown envelope field %q", path[0])
	}
	return nil
}

func setFilterField(f *FilterParams, path []string, value string) error {
	if len(path) != 1 {
		return fmt.Errorf("missing filter field")
	}
	var err error
	switch path[0] {
	case "enabled":
		f.Enabled, err = strconv.ParseBool(value)
	case "type":
		f.Type, err = ParseFilterType(value)
	case "cutoff":
		f.Cutoff, err = parseFrequency(value)
	case "resonance":
		f.Resonance, err = parseField(value)
	case "amount", "envelopeAmount":
		f.EnvelopeAmount, err = parseField(value)
	default:
		return fmt.Errorf("unknown filter field %q", path[0])
	}
	return err
}

func setNoteField(n *SequenceNote, field, value string) error {
	var err error
	switch field {
	case "delay":
		n.DelayMs, err = parseField(value)
	case "duration":
		n.DurationMs, err = parseField(value)
	case "frequency":
		n.Frequency, err = parseFrequency(value)
	case "level":
		n.Level, err = parseField(value)
	case "waveform":
		n.Waveform, err = ParseWaveform(value)
	default:
		return fmt.Errorf("unknown note field %q", field)
	}
	return err
}
