package main

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLookahead bounds how far past the cursor Peek may look.
const MaxLookahead = 2

var (
	keywordRegex         = regexp.MustCompile(`^(?:class|constructor|function|method|field|static|var|int|char|boolean|void|true|false|null|this|let|do|if|else|while|return)\b`)
	symbolRegex          = regexp.MustCompile(`^[\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]`)
	integerConstantRegex = regexp.MustCompile(`^\d+`)
	stringConstantRegex  = regexp.MustCompile(`^"[^"\n]*"`)
	identifierRegex      = regexp.MustCompile(`^[a-zA-Z_]\w*`)

	whitespaceRegex   = regexp.MustCompile(`^\s+`)
	lineCommentRegex  = regexp.MustCompile(`^//[^\n]*`)
	blockCommentRegex = regexp.MustCompile(`^/\*(?s:.*?)\*/`)

	// Tried in order; the first match wins.
	tokenRules = []struct {
		regex     *regexp.Regexp
		tokenType TokenType
	}{
		{stringConstantRegex, StringConstant},
		{keywordRegex, Keyword},
		{symbolRegex, SymbolToken},
		{integerConstantRegex, IntegerConstant},
		{identifierRegex, Identifier},
	}
	skipRegexes = []*regexp.Regexp{whitespaceRegex, lineCommentRegex, blockCommentRegex}

	keywords = map[string]bool{
		"class": true, "constructor": true, "function": true, "method": true,
		"field": true, "static": true, "var": true, "int": true, "char": true,
		"boolean": true, "void": true, "true": true, "false": true, "null": true,
		"this": true, "let": true, "do": true, "if": true, "else": true,
		"while": true, "return": true,
	}
)

// Tokenizer holds the complete token sequence of one source unit and a
// cursor into it. The cursor starts before the first token; Advance moves it
// onto the next one.
type Tokenizer struct {
	tokens []Token
	cursor int
	end    Position
}

func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	tokens, end, err := tokenize(string(src))
	if err != nil {
		return nil, err
	}
	return &Tokenizer{tokens: tokens, cursor: -1, end: end}, nil
}

// advancePos moves p over text.
func advancePos(p Position, text string) Position {
	if n := strings.Count(text, "\n"); n > 0 {
		p.Line += n
		p.Column = 1
		text = text[strings.LastIndexByte(text, '\n')+1:]
	}
	p.Column += utf8.RuneCountInString(text)
	return p
}

func skip(src string) int {
	for _, regex := range skipRegexes {
		if match := regex.FindStringIndex(src); match != nil {
			return match[1]
		}
	}
	return 0
}

func matchToken(src string, pos Position) (Token, int, error) {
	// Closed comments were already skipped.
	if strings.HasPrefix(src, "/*") {
		return Token{}, 0, &LexError{Pos: pos, Msg: "unclosed comment"}
	}
	for _, rule := range tokenRules {
		match := rule.regex.FindStringIndex(src)
		if match == nil {
			continue
		}
		token := Token{tokenType: rule.tokenType, terminal: src[:match[1]], pos: pos}
		switch rule.tokenType {
		case StringConstant:
			token.terminal = token.terminal[1 : len(token.terminal)-1]
			if err := checkStringConstant(token.terminal, pos); err != nil {
				return Token{}, 0, err
			}
		case IntegerConstant:
			if _, err := token.asInt(); err != nil {
				return Token{}, 0, err
			}
		case Identifier:
			if keywords[token.terminal] {
				token.tokenType = Keyword
			}
		}
		return token, match[1], nil
	}

	if strings.HasPrefix(src, `"`) {
		return Token{}, 0, &LexError{Pos: pos, Msg: "unterminated string constant"}
	}
	r, _ := utf8.DecodeRuneInString(src)
	return Token{}, 0, &LexError{Pos: pos, Msg: fmt.Sprintf("unknown token %q", r)}
}

// checkStringConstant rejects characters String.appendChar cannot receive
// as a VM constant. pos is the position of the opening quote.
func checkStringConstant(constant string, pos Position) error {
	for i, r := range constant {
		if r == utf8.RuneError || r > MaxConstant {
			_, size := utf8.DecodeRuneInString(constant[i:])
			return &LexError{
				Pos: advancePos(pos, `"`+constant[:i]),
				Msg: fmt.Sprintf("character %q in string constant has no VM character code", constant[i:i+size]),
			}
		}
	}
	return nil
}

func tokenize(src string) ([]Token, Position, error) {
	var tokens []Token
	pos := Position{Line: 1, Column: 1}

	for len(src) > 0 {
		if n := skip(src); n > 0 {
			pos = advancePos(pos, src[:n])
			src = src[n:]
			continue
		}
		token, n, err := matchToken(src, pos)
		if err != nil {
			return nil, pos, err
		}
		tokens = append(tokens, token)
		pos = advancePos(pos, src[:n])
		src = src[n:]
	}

	return tokens, pos, nil
}

func (t *Tokenizer) HasMoreTokens() bool {
	return t.cursor < len(t.tokens)-1
}

// Advance must only be called while HasMoreTokens reports true.
func (t *Tokenizer) Advance() {
	if !t.HasMoreTokens() {
		panic("tokenizer: Advance called with no tokens left")
	}
	t.cursor++
}

// Token returns the token under the cursor, or the zero Token before the
// first Advance.
func (t *Tokenizer) Token() Token {
	if t.cursor < 0 {
		return Token{}
	}
	return t.tokens[t.cursor]
}

func (t *Tokenizer) TokenType() TokenType {
	return t.Token().tokenType
}

// Peek returns the token n places after the cursor without moving it.
func (t *Tokenizer) Peek(n int) (Token, bool) {
	if n < 1 || n > MaxLookahead {
		panic(fmt.Sprintf("tokenizer: lookahead %d outside [1, %d]", n, MaxLookahead))
	}
	i := t.cursor + n
	if i >= len(t.tokens) {
		return Token{}, false
	}
	return t.tokens[i], true
}

// End is the position just past the last character of the source.
func (t *Tokenizer) End() Position {
	return t.end
}

// Tokens returns the whole sequence regardless of the cursor.
func (t *Tokenizer) Tokens() []Token {
	return t.tokens
}

func (t *Tokenizer) terminalOf(tokenType TokenType) string {
	token := t.Token()
	if token.tokenType != tokenType {
		panic(fmt.Sprintf("tokenizer: current token is %s, not %s", token, tokenType))
	}
	return token.terminal
}

func (t *Tokenizer) Keyword() string { return t.terminalOf(Keyword) }

func (t *Tokenizer) Symbol() string { return t.terminalOf(SymbolToken) }

func (t *Tokenizer) Identifier() string { return t.terminalOf(Identifier) }

func (t *Tokenizer) StringVal() string { return t.terminalOf(StringConstant) }

func (t *Tokenizer) IntVal() MachineWord {
	word, err := t.Token().asInt()
	if t.TokenType() != IntegerConstant || err != nil {
		panic(fmt.Sprintf("tokenizer: current token %s is not an integer constant", t.Token()))
	}
	return word
}
