package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/evaluator"
)

const usage = `Usage: funcalc [options] [file...]

Without files or -e, funcalc starts an interactive session when stdin is a
terminal and evaluates stdin as one script otherwise.

Options:
  -e <text>        evaluate text and print the result
  -config <path>   settings file (default: funcalc.yaml found upwards from .)
  -degrees         trig functions take and return degrees
  -debug           log interpreter activity to stderr
  -help            show this help
`

type options struct {
	exprs      []string
	files      []string
	configPath string
	degrees    bool
	debug      bool
	help       bool
}

func parseArgs(args []string) (*options, error) {
	o := &options{}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-e", "--eval", "-config", "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s needs an argument", arg)
			}
			i++
			if strings.HasSuffix(arg, "eval") || arg == "-e" {
				o.exprs = append(o.exprs, args[i])
			} else {
				o.configPath = args[i]
			}
		case "-degrees", "--degrees":
			o.degrees = true
		case "-debug", "--debug":
			o.debug = true
		case "-help", "--help", "-h", "help":
			o.help = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option %s", arg)
			}
			o.files = append(o.files, arg)
		}
	}
	return o, nil
}

// loadSettings reads the explicit settings file, or the nearest one found
// from the working directory upwards, or the defaults.
func loadSettings(o *options) (*config.Settings, error) {
	path := o.configPath
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	s := config.Default()
	if path != "" {
		var err error
		if s, err = config.LoadSettings(path); err != nil {
			return nil, err
		}
	}
	if o.degrees {
		s.Degrees = true
	}
	return s, nil
}

// run is main without the process exit. It returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, interactive bool) int {
	o, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "funcalc: %s\n", err)
		fmt.Fprint(stderr, usage)
		return 2
	}
	if o.help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	settings, err := loadSettings(o)
	if err != nil {
		fmt.Fprintf(stderr, "funcalc: %s\n", err)
		return 1
	}

	logger := log.New(io.Discard, "funcalc: ", 0)
	if o.debug {
		logger.SetOutput(stderr)
	}
	quit := false
	in := evaluator.New(
		evaluator.WithSettings(*settings),
		evaluator.WithLogger(logger),
		evaluator.WithQuit(func() { quit = true }),
	)
	paint := newPainter(stdout)

	status := 0
	evaluate := func(text string) {
		out := in.In(text)
		if in.LastError() != nil {
			status = 1
			out = paint.err(out)
		}
		fmt.Fprintln(stdout, out)
	}

	switch {
	case len(o.exprs) > 0 || len(o.files) > 0:
		for _, path := range o.files {
			content, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(stderr, "Error reading file: %s\n", err)
				return 1
			}
			evaluate(string(content))
			if quit {
				return status
			}
		}
		for _, e := range o.exprs {
			evaluate(e)
			if quit {
				break
			}
		}
	case interactive:
		return repl(in, settings, stdout, stderr, &quit, logger)
	default:
		content, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading input: %s\n", err)
			return 1
		}
		evaluate(string(content))
	}
	return status
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, interactive))
}
