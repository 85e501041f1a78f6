package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	strict := flag.Bool("strict", false, "Fail unless every file is 16-bit mono PCM at 44100 Hz")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wavinfo [options] file.wav...\n\nPrints format and level information for WAV files.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wavinfo click.wav\n")
		fmt.Fprintf(os.Stderr, "  wavinfo -strict exports/*.wav\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	failed := false
	for _, path := range flag.Args() {
		info, err := inspectFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: %s\n", path, info)
		if *strict {
			if err := checkLabFormat(info); err != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
				failed = true
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return Inspect(f)
}

// checkLabFormat matches what the sound lab exporter writes.
func checkLabFormat(i Info) error {
	if i.Format != 1 || i.BitDepth != 16 || i.Channels != 1 || i.SampleRate != 44100 {
		return fmt.Errorf("want PCM 16-bit mono 44100 Hz, got format %d %d-bit %d channel(s) %d Hz",
			i.Format, i.BitDepth, i.Channels, i.SampleRate)
	}
	return nil
}
