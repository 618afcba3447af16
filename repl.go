package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".jack_history"
	promptMain  = "jack> "
	promptCont  = "...> "
)

type prompter interface {
	Prompt(prompt string) (string, error)
}

// historyPath is empty when there is no home directory to keep history in.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

func runInteractive(stdout, stderr io.Writer, opts options) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath := historyPath(); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintln(stdout, "Type a class to see its VM code, :quit to exit.")
	interactiveLoop(ln, stdout, stderr, opts, func(src string) {
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	})
	return 0
}

// interactiveLoop compiles one class per completed input until EOF or :quit.
func interactiveLoop(p prompter, stdout, stderr io.Writer, opts options, remember func(string)) {
	for {
		src, ok := readClass(p)
		if !ok {
			fmt.Fprintln(stdout)
			return
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return
		}

		var output bytes.Buffer
		if err := CompileSource(strings.NewReader(src), &output, opts.trace); err != nil {
			fmt.Fprintln(stderr, WrapErrorWithName(err, "", src))
		} else {
			fmt.Fprint(stdout, output.String())
		}
		if remember != nil {
			remember(src)
		}
	}
}

// readClass keeps prompting while the input so far is a class cut short.
func readClass(p prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// liner.ErrPromptAborted drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || strings.TrimSpace(src) == "" {
			return src, true
		}
		if err := CompileSource(strings.NewReader(src), io.Discard, nil); IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
