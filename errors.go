package main

import (
	"errors"
	"fmt"
	"strings"
)

// LexError reports source text the tokenizer cannot classify.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at %s: %s", e.Pos, e.Msg)
}

// SyntaxError reports a token that does not fit the grammar at the current
// position. AtEnd is set when the input ran out instead.
type SyntaxError struct {
	Expected string
	Actual   Token
	AtEnd    bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: expected %s, got %s", e.Actual.pos, e.Expected, e.Actual)
}

// SemanticError reports a well-formed construct that cannot be translated,
// such as a duplicate declaration or an undeclared variable.
type SemanticError struct {
	Pos  Position
	Name string
	Msg  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %q %s", e.Pos, e.Name, e.Msg)
}

// IsIncomplete reports whether err was caused by the input ending in the
// middle of a class.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.AtEnd
}

// WrapErrorWithName renders lexical, syntax and semantic errors as a snippet
// of src with a caret under the offending column. Other errors are returned
// unchanged.
func WrapErrorWithName(err error, name string, src string) error {
	var (
		lexErr      *LexError
		syntaxErr   *SyntaxError
		semanticErr *SemanticError
	)
	switch {
	case errors.As(err, &lexErr):
		return errors.New(snippet(src, "LEXICAL ERROR", name, lexErr.Pos, lexErr.Msg))
	case errors.As(err, &syntaxErr):
		msg := fmt.Sprintf("expected %s, got %s", syntaxErr.Expected, syntaxErr.Actual)
		return errors.New(snippet(src, "SYNTAX ERROR", name, syntaxErr.Actual.pos, msg))
	case errors.As(err, &semanticErr):
		msg := fmt.Sprintf("%q %s", semanticErr.Name, semanticErr.Msg)
		return errors.New(snippet(src, "SEMANTIC ERROR", name, semanticErr.Pos, msg))
	default:
		return err
	}
}

// snippet shows at most one line of context on either side of pos.
// Coordinates are clamped to the source bounds.
func snippet(src, header, name string, pos Position, msg string) string {
	lines := strings.Split(src, "\n")
	line, col := pos.Line, pos.Column
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
