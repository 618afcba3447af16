package main

import (
	"fmt"
	"strconv"
)

type MachineWord int16

// MaxConstant is the largest integer literal the VM can push.
const MaxConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolToken     TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

// Position is a 1-based line and column in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	tokenType TokenType
	terminal  string
	pos       Position
}

func (t Token) Type() TokenType { return t.tokenType }

func (t Token) Terminal() string { return t.terminal }

func (t Token) Pos() Position { return t.pos }

func (t Token) String() string {
	if t.tokenType == InvalidToken {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.tokenType, t.terminal)
}

// is reports whether t is the keyword or symbol spelled terminal.
func (t Token) is(terminal string) bool {
	return (t.tokenType == Keyword || t.tokenType == SymbolToken) && t.terminal == terminal
}

func (t Token) asInt() (MachineWord, error) {
	word, err := strconv.Atoi(t.terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxConstant || word < 0 {
		return 0, &LexError{Pos: t.pos, Msg: fmt.Sprintf("integer constant %s out of range [0, %d]", t.terminal, MaxConstant)}
	}
	return MachineWord(word), nil
}
