package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lmorg/readline"
	"github.com/mattn/go-isatty"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/evaluator"
	"github.com/funvibe/funcalc/internal/history"
	"github.com/funvibe/funcalc/internal/lexer"
)

const (
	continuationPrompt = "... "
	historyLimit       = 1000
)

// painter colours error output when it goes to a terminal.
type painter struct{ enabled bool }

func newPainter(w io.Writer) painter {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		return painter{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return painter{}
	}
	return painter{enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

func (p painter) err(s string) string {
	if !p.enabled {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

// repl reads lines until quit or end of input. Lines that leave a bracket
// or string open are joined with the following ones.
func repl(in *evaluator.Interpreter, settings *config.Settings, stdout, stderr io.Writer, quit *bool, logger *log.Logger) int {
	rl := readline.NewInstance()
	rl.TabCompleter = completer(in)

	if settings.History != "" {
		store, err := history.Open(settings.History, historyLimit)
		if err != nil {
			fmt.Fprintf(stderr, "funcalc: history disabled: %s\n", err)
		} else {
			defer store.Close()
			rl.History = store
			logger.Printf("history: %s (%d lines)", settings.History, store.Len())
		}
	}

	paint := newPainter(stdout)
	fmt.Fprintf(stdout, "%s. Type ? for help.\n", config.Version)

	var buf strings.Builder
	for !*quit {
		if buf.Len() == 0 {
			rl.SetPrompt(settings.Prompt)
		} else {
			rl.SetPrompt(continuationPrompt)
		}
		line, err := rl.Readline()
		if err != nil {
			if interrupted(err) {
				buf.Reset()
				continue
			}
			break
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		text := buf.String()
		if lexer.Unclosed(text) {
			continue
		}
		buf.Reset()
		if strings.TrimSpace(text) == "" {
			continue
		}

		out := in.In(text)
		if in.LastError() != nil {
			out = paint.err(out)
		}
		fmt.Fprintln(stdout, out)
	}
	return 0
}

// interrupted reports whether Readline returned because of Ctrl-C. The
// library reports it as an error whose text is ErrCtrlC.
func interrupted(err error) bool {
	return err != nil && err.Error() == readline.ErrCtrlC
}

// completer offers the names visible in the session for the word before
// the cursor.
func completer(in *evaluator.Interpreter) func([]rune, int, readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
	return func(line []rune, pos int, dtx readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
		if pos > len(line) {
			pos = len(line)
		}
		start := pos
		for start > 0 && isWordRune(line[start-1]) {
			start--
		}
		word := string(line[start:pos])
		var suggestions []string
		if word != "" {
			for _, name := range in.Completions(word) {
				// readline appends suggestions to what was typed
				suggestions = append(suggestions, name[len(word):])
			}
		}
		return word, suggestions, nil, readline.TabDisplayGrid
	}
}

func isWordRune(r rune) bool {
	return r < 0x80 && lexer.IsNameChar(byte(r))
}
