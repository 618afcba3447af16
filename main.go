package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type options struct {
	tokens bool
	trace  io.Writer
}

func removeExtension(filePath string) string {
	extension := filepath.Ext(filePath)
	return filePath[:len(filePath)-len(extension)]
}

func getOutputPath(filePath string) string {
	return removeExtension(filePath) + ".vm"
}

func getTokensPath(filePath string) string {
	return removeExtension(filePath) + "T.xml"
}

func compileFile(src []byte, w io.Writer, opts options) error {
	return CompileSource(bytes.NewReader(src), w, opts.trace)
}

func writeTokensFile(path string, src []byte) error {
	tokenizer, err := NewTokenizer(bytes.NewReader(src))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteTokensXML(&buf, tokenizer.Tokens()); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// processFile writes the .vm file only when the whole class compiled.
func processFile(path string, opts options) (outputPath string, err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not open file %q for reading: %w", path, err)
	}

	if opts.tokens {
		if err := writeTokensFile(getTokensPath(path), src); err != nil {
			return "", WrapErrorWithName(err, path, string(src))
		}
	}

	var output bytes.Buffer
	if err := compileFile(src, &output, opts); err != nil {
		return "", WrapErrorWithName(err, path, string(src))
	}

	outputPath = getOutputPath(path)
	if err := os.WriteFile(outputPath, output.Bytes(), 0644); err != nil {
		return outputPath, fmt.Errorf("could not write output file %q: %w", outputPath, err)
	}
	return outputPath, nil
}

func collectFiles(fileOrDir string) (files []string, err error) {
	fileOrDirStat, err := os.Stat(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file/dir %q: %w", fileOrDir, err)
	}

	if !fileOrDirStat.IsDir() {
		if filepath.Ext(fileOrDir) != ".jack" {
			return nil, fmt.Errorf("%q is not a .jack file", fileOrDir)
		}
		return []string{fileOrDir}, nil
	}

	// ReadDir sorts by file name.
	dirEntries, err := os.ReadDir(fileOrDir)
	if err != nil {
		return nil, fmt.Errorf("could not open directory %q: %w", fileOrDir, err)
	}
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(fileOrDir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .jack files in directory %q", fileOrDir)
	}
	return files, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("jackcompiler", flag.ContinueOnError)
	flags.SetOutput(stderr)
	filename := flags.String("d", "", ".jack file to compile or directory containing .jack files")
	tokens := flags.Bool("t", false, "also write the token stream of every file as <Name>T.xml")
	verbose := flags.Bool("v", false, "trace grammar rules and symbols to stderr")
	interactive := flags.Bool("i", false, "compile classes typed at an interactive prompt")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	opts := options{tokens: *tokens}
	if *verbose {
		opts.trace = stderr
	}

	if *interactive {
		return runInteractive(stdout, stderr, opts)
	}
	if *filename == "" {
		flags.Usage()
		return 2
	}

	files, err := collectFiles(*filename)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	status := 0
	for _, file := range files {
		fmt.Fprintf(stdout, "Compiling file %q\n", file)
		outputPath, err := processFile(file, opts)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to compile %q: %s\n", file, err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "Saved as %q\n", outputPath)
	}
	return status
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
