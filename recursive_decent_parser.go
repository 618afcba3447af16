package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

type TokenScanner interface {
	HasMoreTokens() bool
	Advance()
	Token() Token
	Peek(n int) (Token, bool)
	End() Position
}

var (
	statementKeywords  = []string{"let", "if", "while", "do", "return"}
	subroutineKeywords = []string{"constructor", "function", "method"}

	binaryOperations = map[string]VMOperation{
		"+": AddVMOperation,
		"-": SubVMOperation,
		"=": EqVMOperation,
		">": GtVMOperation,
		"<": LtVMOperation,
		"&": AndVMOperation,
		"|": OrVMOperation,
	}
	// Operators the VM has no instruction for; they call into the OS.
	runtimeOperations = map[string]string{
		"*": "Math.multiply",
		"/": "Math.divide",
	}
	unaryOperations = map[string]VMOperation{
		"-": NegVMOperation,
		"~": NotVMOperation,
	}
)

// JackCompiler translates exactly one class. Each compileXxx method expects
// the construct Xxx to start at the current token, advances exactly past it
// and writes the VM code realising it. Constructs with a value leave that
// value on top of the stack.
type JackCompiler struct {
	tokens  TokenScanner
	writer  *VMWriter
	symbols *SymbolTable
	trace   io.Writer
	atEnd   bool

	className      string
	subroutineKind string
	subroutineName string
	returnType     string

	ifCounter    int
	whileCounter int
}

func NewJackCompiler(tokens TokenScanner, writer *VMWriter) *JackCompiler {
	return &JackCompiler{
		tokens:  tokens,
		writer:  writer,
		symbols: NewSymbolTable(),
	}
}

// SetTrace sends a line per grammar rule and declared symbol to w.
func (c *JackCompiler) SetTrace(w io.Writer) {
	c.trace = w
}

func (c *JackCompiler) Symbols() *SymbolTable {
	return c.symbols
}

// Compile translates the class. Output already written when an error is
// returned is incomplete and must be discarded.
func (c *JackCompiler) Compile() error {
	c.advance()
	if err := c.compileClass(); err != nil {
		return err
	}
	if !c.atEnd {
		return c.expected("end of input")
	}
	return c.writer.Err()
}

// CompileSource compiles the class read from r and writes its VM code to w.
func CompileSource(r io.Reader, w io.Writer, trace io.Writer) error {
	tokenizer, err := NewTokenizer(r)
	if err != nil {
		return err
	}
	compiler := NewJackCompiler(tokenizer, NewVMWriter(w))
	compiler.SetTrace(trace)
	return compiler.Compile()
}

func (c *JackCompiler) tracef(format string, args ...any) {
	if c.trace != nil {
		fmt.Fprintf(c.trace, format+"\n", args...)
	}
}

func (c *JackCompiler) token() Token {
	if c.atEnd {
		return Token{pos: c.tokens.End()}
	}
	return c.tokens.Token()
}

func (c *JackCompiler) peek() Token {
	if c.atEnd {
		return Token{}
	}
	token, _ := c.tokens.Peek(1)
	return token
}

func (c *JackCompiler) advance() {
	if c.tokens.HasMoreTokens() {
		c.tokens.Advance()
	} else {
		c.atEnd = true
	}
}

func (c *JackCompiler) expected(what string) error {
	return &SyntaxError{Expected: what, Actual: c.token(), AtEnd: c.atEnd}
}

func (c *JackCompiler) isOneOf(terminals []string) bool {
	for _, terminal := range terminals {
		if c.token().is(terminal) {
			return true
		}
	}
	return false
}

func (c *JackCompiler) compileTerminal(terminal string) error {
	if !c.token().is(terminal) {
		return c.expected(strconv.Quote(terminal))
	}
	c.advance()
	return nil
}

func (c *JackCompiler) compileIdentifier(what string) (Token, error) {
	token := c.token()
	if token.tokenType != Identifier {
		return Token{}, c.expected(what)
	}
	c.advance()
	return token, nil
}

// compileType accepts int, char, boolean or a class name, and void when
// allowVoid is set.
func (c *JackCompiler) compileType(allowVoid bool) (string, error) {
	token := c.token()
	switch {
	case token.is("int"), token.is("char"), token.is("boolean"), allowVoid && token.is("void"):
		c.advance()
		return token.terminal, nil
	case token.tokenType == Identifier:
		c.advance()
		return token.terminal, nil
	}
	if allowVoid {
		return "", c.expected("return type")
	}
	return "", c.expected("type")
}

func (c *JackCompiler) define(name Token, variableType string, kind SymbolKind) error {
	symbol, err := c.symbols.Define(name.terminal, variableType, kind)
	if err != nil {
		var semanticErr *SemanticError
		if errors.As(err, &semanticErr) {
			semanticErr.Pos = name.pos
		}
		return err
	}
	c.tracef("Registered symbol %q: %s %s %d", symbol.name, symbol.kind, symbol.variableType, symbol.index)
	return nil
}

func (c *JackCompiler) resolve(name Token) (Symbol, error) {
	symbol, ok := c.symbols.Lookup(name.terminal)
	if !ok {
		return Symbol{}, &SemanticError{Pos: name.pos, Name: name.terminal, Msg: "is not declared"}
	}
	if symbol.kind.Segment() == InvalidVMSegmentType {
		return Symbol{}, &SemanticError{Pos: name.pos, Name: name.terminal, Msg: fmt.Sprintf("has kind %q without a memory segment", symbol.kind)}
	}
	return symbol, nil
}

func (c *JackCompiler) writePush(symbol Symbol) {
	c.writer.WritePush(symbol.kind.Segment(), symbol.index)
}

func (c *JackCompiler) writePop(symbol Symbol) {
	c.writer.WritePop(symbol.kind.Segment(), symbol.index)
}

func (c *JackCompiler) compileClass() error {
	c.tracef("Compiling class")
	if err := c.compileTerminal("class"); err != nil {
		return err
	}
	name, err := c.compileIdentifier("class name")
	if err != nil {
		return err
	}
	c.className = name.terminal
	if err := c.compileTerminal("{"); err != nil {
		return err
	}

	for c.token().is("static") || c.token().is("field") {
		if err := c.compileClassVarDec(); err != nil {
			return err
		}
	}
	for c.isOneOf(subroutineKeywords) {
		if err := c.compileSubroutineDec(); err != nil {
			return err
		}
	}

	if !c.token().is("}") {
		return c.expected(`subroutine declaration or "}"`)
	}
	return c.compileTerminal("}")
}

func (c *JackCompiler) compileClassVarDec() error {
	c.tracef("Compiling class var declaration")
	kind := SymbolKind(c.token().terminal)
	c.advance()

	variableType, err := c.compileType(false)
	if err != nil {
		return err
	}
	return c.compileVarNames(variableType, kind)
}

// compileVarNames compiles varName (',' varName)* ';' defining every name.
func (c *JackCompiler) compileVarNames(variableType string, kind SymbolKind) error {
	for {
		name, err := c.compileIdentifier("variable name")
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, kind); err != nil {
			return err
		}
		if !c.token().is(",") {
			break
		}
		c.advance()
	}
	return c.compileTerminal(";")
}

func (c *JackCompiler) compileSubroutineDec() error {
	c.tracef("Compiling subroutine declaration")
	c.symbols.StartSubroutine()
	c.subroutineKind = c.token().terminal
	c.advance()

	returnType, err := c.compileType(true)
	if err != nil {
		return err
	}
	name, err := c.compileIdentifier("subroutine name")
	if err != nil {
		return err
	}
	c.returnType = returnType
	c.subroutineName = name.terminal

	if c.subroutineKind == "method" {
		if err := c.define(Token{tokenType: Keyword, terminal: "this", pos: name.pos}, c.className, ArgumentSymbol); err != nil {
			return err
		}
	}

	if err := c.compileTerminal("("); err != nil {
		return err
	}
	if err := c.compileParameterList(); err != nil {
		return err
	}
	if err := c.compileTerminal(")"); err != nil {
		return err
	}
	return c.compileSubroutineBody()
}

func (c *JackCompiler) compileParameterList() error {
	c.tracef("Compiling parameter list")
	if c.token().is(")") {
		return nil
	}
	for {
		variableType, err := c.compileType(false)
		if err != nil {
			return err
		}
		name, err := c.compileIdentifier("parameter name")
		if err != nil {
			return err
		}
		if err := c.define(name, variableType, ArgumentSymbol); err != nil {
			return err
		}
		if !c.token().is(",") {
			return nil
		}
		c.advance()
	}
}

func (c *JackCompiler) compileSubroutineBody() error {
	c.tracef("Compiling subroutine body")
	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	for c.token().is("var") {
		if err := c.compileVarDec(); err != nil {
			return err
		}
	}

	// All locals are declared before the first statement.
	c.writer.WriteFunction(c.className+"."+c.subroutineName, c.symbols.VarCount(LocalSymbol))
	switch c.subroutineKind {
	case "method":
		c.writer.WritePush(ArgumentVMSegment, 0)
		c.writer.WritePop(PointerVMSegment, 0)
	case "constructor":
		c.writer.WritePush(ConstVMSegment, c.symbols.VarCount(FieldSymbol))
		c.writer.WriteCall("Memory.alloc", 1)
		c.writer.WritePop(PointerVMSegment, 0)
	}

	if err := c.compileStatements(); err != nil {
		return err
	}
	if !c.token().is("}") {
		return c.expected(`statement or "}"`)
	}
	return c.compileTerminal("}")
}

func (c *JackCompiler) compileVarDec() error {
	c.tracef("Compiling var declaration")
	c.advance()
	variableType, err := c.compileType(false)
	if err != nil {
		return err
	}
	return c.compileVarNames(variableType, LocalSymbol)
}

func (c *JackCompiler) compileStatements() error {
	c.tracef("Compiling statements")
	for c.isOneOf(statementKeywords) {
		var err error
		switch c.token().terminal {
		case "let":
			err = c.compileLetStatement()
		case "if":
			err = c.compileIfStatement()
		case "while":
			err = c.compileWhileStatement()
		case "do":
			err = c.compileDoStatement()
		case "return":
			err = c.compileReturnStatement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *JackCompiler) compileLetStatement() error {
	c.tracef("Compiling let statement")
	c.advance()
	name, err := c.compileIdentifier("variable name")
	if err != nil {
		return err
	}
	target, err := c.resolve(name)
	if err != nil {
		return err
	}

	if !c.token().is("[") {
		if err := c.compileTerminal("="); err != nil {
			return err
		}
		if err := c.compileExpression(); err != nil {
			return err
		}
		c.writePop(target)
		return c.compileTerminal(";")
	}

	// The target address is computed before the right hand side, which may
	// itself go through pointer 1.
	c.advance()
	c.writePush(target)
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal("]"); err != nil {
		return err
	}
	if err := c.writer.WriteArithmetic(AddVMOperation); err != nil {
		return err
	}
	if err := c.compileTerminal("="); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	c.writer.WritePop(TempVMSegment, 0)
	c.writer.WritePop(PointerVMSegment, 1)
	c.writer.WritePush(TempVMSegment, 0)
	c.writer.WritePop(ThatVMSegment, 0)
	return c.compileTerminal(";")
}

// compileBlock compiles '{' statements '}'.
func (c *JackCompiler) compileBlock() error {
	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	if !c.token().is("}") {
		return c.expected(`statement or "}"`)
	}
	return c.compileTerminal("}")
}

// compileCondition compiles '(' expression ')'.
func (c *JackCompiler) compileCondition() error {
	if err := c.compileTerminal("("); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	return c.compileTerminal(")")
}

func (c *JackCompiler) compileIfStatement() error {
	c.tracef("Compiling if statement")
	n := c.ifCounter
	c.ifCounter++
	trueLabel := fmt.Sprintf("IF_TRUE%d", n)
	falseLabel := fmt.Sprintf("IF_FALSE%d", n)
	endLabel := fmt.Sprintf("IF_END%d", n)

	c.advance()
	if err := c.compileCondition(); err != nil {
		return err
	}
	c.writer.WriteIf(trueLabel)
	c.writer.WriteGoto(falseLabel)
	c.writer.WriteLabel(trueLabel)
	if err := c.compileBlock(); err != nil {
		return err
	}

	if !c.token().is("else") {
		c.writer.WriteLabel(falseLabel)
		return nil
	}
	c.advance()
	c.writer.WriteGoto(endLabel)
	c.writer.WriteLabel(falseLabel)
	if err := c.compileBlock(); err != nil {
		return err
	}
	c.writer.WriteLabel(endLabel)
	return nil
}

func (c *JackCompiler) compileWhileStatement() error {
	c.tracef("Compiling while statement")
	n := c.whileCounter
	c.whileCounter++
	loopLabel := fmt.Sprintf("WHILE_EXP%d", n)
	endLabel := fmt.Sprintf("WHILE_END%d", n)

	c.advance()
	c.writer.WriteLabel(loopLabel)
	if err := c.compileCondition(); err != nil {
		return err
	}
	if err := c.writer.WriteArithmetic(NotVMOperation); err != nil {
		return err
	}
	c.writer.WriteIf(endLabel)
	if err := c.compileBlock(); err != nil {
		return err
	}
	c.writer.WriteGoto(loopLabel)
	c.writer.WriteLabel(endLabel)
	return nil
}

func (c *JackCompiler) compileDoStatement() error {
	c.tracef("Compiling do statement")
	c.advance()
	if err := c.compileSubroutineCall(); err != nil {
		return err
	}
	// Every call leaves a value, void ones included.
	c.writer.WritePop(TempVMSegment, 0)
	return c.compileTerminal(";")
}

func (c *JackCompiler) compileReturnStatement() error {
	c.tracef("Compiling return statement")
	c.advance()

	// Void subroutines still leave a value for the caller to pop.
	if c.returnType == "void" {
		c.writer.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}
	c.writer.WriteReturn()
	return nil
}

// compileExpression applies operators strictly left to right.
func (c *JackCompiler) compileExpression() error {
	c.tracef("Compiling expression")
	if err := c.compileTerm(); err != nil {
		return err
	}
	for {
		token := c.token()
		if token.tokenType != SymbolToken {
			return nil
		}
		operation, isBinary := binaryOperations[token.terminal]
		routine, isRuntime := runtimeOperations[token.terminal]
		if !isBinary && !isRuntime {
			return nil
		}
		c.advance()
		if err := c.compileTerm(); err != nil {
			return err
		}
		if isRuntime {
			c.writer.WriteCall(routine, 2)
			continue
		}
		if err := c.writer.WriteArithmetic(operation); err != nil {
			return err
		}
	}
}

func (c *JackCompiler) compileTerm() error {
	c.tracef("Compiling term")
	token := c.token()

	switch token.tokenType {
	case IntegerConstant:
		return c.compileIntegerConstant()
	case StringConstant:
		return c.compileStringConstant()
	case Keyword:
		return c.compileKeywordConstant()
	case Identifier:
		switch next := c.peek(); {
		case next.is("["):
			return c.compileArrayAccess()
		case next.is("("), next.is("."):
			return c.compileSubroutineCall()
		}
		c.advance()
		symbol, err := c.resolve(token)
		if err != nil {
			return err
		}
		c.writePush(symbol)
		return nil
	case SymbolToken:
		if token.is("(") {
			c.advance()
			if err := c.compileExpression(); err != nil {
				return err
			}
			return c.compileTerminal(")")
		}
		if operation, ok := unaryOperations[token.terminal]; ok {
			c.advance()
			if err := c.compileTerm(); err != nil {
				return err
			}
			return c.writer.WriteArithmetic(operation)
		}
	}
	return c.expected("term")
}

func (c *JackCompiler) compileIntegerConstant() error {
	word, err := c.token().asInt()
	if err != nil {
		return err
	}
	c.advance()
	c.writer.WritePush(ConstVMSegment, word)
	return nil
}

func (c *JackCompiler) compileStringConstant() error {
	constant := []rune(c.token().terminal)
	c.advance()
	c.writer.WritePush(ConstVMSegment, MachineWord(len(constant)))
	c.writer.WriteCall("String.new", 1)
	// appendChar returns the string, so it stays on the stack.
	for _, char := range constant {
		c.writer.WritePush(ConstVMSegment, MachineWord(char))
		c.writer.WriteCall("String.appendChar", 2)
	}
	return nil
}

func (c *JackCompiler) compileKeywordConstant() error {
	switch c.token().terminal {
	case "true":
		c.writer.WritePush(ConstVMSegment, 0)
		if err := c.writer.WriteArithmetic(NotVMOperation); err != nil {
			return err
		}
	case "false", "null":
		c.writer.WritePush(ConstVMSegment, 0)
	case "this":
		c.writer.WritePush(PointerVMSegment, 0)
	default:
		return c.expected("term")
	}
	c.advance()
	return nil
}

// compileArrayAccess compiles varName '[' expression ']' leaving the element
// on the stack.
func (c *JackCompiler) compileArrayAccess() error {
	name := c.token()
	c.advance()
	symbol, err := c.resolve(name)
	if err != nil {
		return err
	}
	c.advance() // [
	c.writePush(symbol)
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal("]"); err != nil {
		return err
	}
	if err := c.writer.WriteArithmetic(AddVMOperation); err != nil {
		return err
	}
	c.writer.WritePop(PointerVMSegment, 1)
	c.writer.WritePush(ThatVMSegment, 0)
	return nil
}

// compileSubroutineCall resolves the three call forms:
//
//	name(args)         method on the current object
//	variable.name(args) method on the object held by variable
//	Class.name(args)   function or constructor
func (c *JackCompiler) compileSubroutineCall() error {
	c.tracef("Compiling subroutine call")
	name, err := c.compileIdentifier("subroutine, class or variable name")
	if err != nil {
		return err
	}

	var (
		callee   string
		receiver MachineWord
	)
	if c.token().is(".") {
		c.advance()
		member, err := c.compileIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if symbol, ok := c.symbols.Lookup(name.terminal); ok {
			if !symbol.IsObject() {
				return &SemanticError{Pos: name.pos, Name: name.terminal, Msg: fmt.Sprintf("has primitive type %s and no methods", symbol.variableType)}
			}
			c.writePush(symbol)
			callee = symbol.variableType + "." + member.terminal
			receiver = 1
		} else {
			callee = name.terminal + "." + member.terminal
		}
	} else {
		c.writer.WritePush(PointerVMSegment, 0)
		callee = c.className + "." + name.terminal
		receiver = 1
	}

	if err := c.compileTerminal("("); err != nil {
		return err
	}
	nargs, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.compileTerminal(")"); err != nil {
		return err
	}
	c.writer.WriteCall(callee, receiver+nargs)
	return nil
}

func (c *JackCompiler) compileExpressionList() (MachineWord, error) {
	c.tracef("Compiling expression list")
	if c.token().is(")") {
		return 0, nil
	}
	var n MachineWord
	for {
		if err := c.compileExpression(); err != nil {
			return 0, err
		}
		n++
		if !c.token().is(",") {
			return n, nil
		}
		c.advance()
	}
}
