package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"

	"github.com/lukad/rbf/internal/core"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: rbf [options] <file>

options:
  -t, --tape-size N   tape size in bytes (default 30000, rounded up to 16)
  -e ast              print the optimized program instead of running it`)
	os.Exit(1)
}

func readSource(file string) []byte {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return src
}

func main() {
	fs := flag.NewFlagSet("rbf", flag.ContinueOnError)
	fs.Usage = usage

	defaultTape := env.Int("RBF_TAPE_SIZE", core.TapeSize)
	var tapeSize int
	fs.IntVar(&tapeSize, "t", defaultTape, "tape size in bytes")
	fs.IntVar(&tapeSize, "tape-size", defaultTape, "tape size in bytes")
	emit := fs.String("e", "", "emit mode (ast)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fs.Usage()
	}

	if tapeSize <= 0 {
		fmt.Fprintf(os.Stderr, "invalid tape size: %d\n", tapeSize)
		os.Exit(1)
	}

	switch *emit {
	case "", "ast":
	default:
		fmt.Fprintf(os.Stderr, "invalid emit mode: %q (supported: ast)\n", *emit)
		os.Exit(1)
	}

	file := filepath.Clean(fs.Arg(0))
	src := readSource(file)

	prog, errs := core.Parse(src)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	prog = core.Optimise(prog)

	if *emit == "ast" {
		fmt.Print(core.Dump(prog))
		return
	}

	if err := runProgram(prog, tapeSize); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
