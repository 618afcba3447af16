package main

import "fmt"

type Scope string

const (
	SubroutineScope Scope = "SubroutineScope"
	ClassScope      Scope = "ClassScope"
	InvalidScope    Scope = ""
)

func scopeOf(kind SymbolKind) Scope {
	switch kind {
	case StaticSymbol, FieldSymbol:
		return ClassScope
	case ArgumentSymbol, LocalSymbol:
		return SubroutineScope
	default:
		return InvalidScope
	}
}

type scopeTable struct {
	symbols  map[string]Symbol
	counters map[SymbolKind]MachineWord
}

func newScopeTable() *scopeTable {
	return &scopeTable{
		symbols:  make(map[string]Symbol),
		counters: make(map[SymbolKind]MachineWord),
	}
}

// SymbolTable maps identifiers to storage locations. Static and field
// symbols live in the class scope for the whole class, argument and local
// symbols in the subroutine scope until the next StartSubroutine.
type SymbolTable struct {
	classScopeTable      *scopeTable
	subroutineScopeTable *scopeTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:      newScopeTable(),
		subroutineScopeTable: newScopeTable(),
	}
}

func (s *SymbolTable) table(kind SymbolKind) *scopeTable {
	switch scopeOf(kind) {
	case ClassScope:
		return s.classScopeTable
	case SubroutineScope:
		return s.subroutineScopeTable
	default:
		return nil
	}
}

// Define registers name with the next running index of its kind.
func (s *SymbolTable) Define(name, variableType string, kind SymbolKind) (Symbol, error) {
	table := s.table(kind)
	if table == nil {
		return Symbol{}, &SemanticError{Name: name, Msg: fmt.Sprintf("has unknown kind %q", kind)}
	}
	if _, ok := table.symbols[name]; ok {
		return Symbol{}, &SemanticError{Name: name, Msg: fmt.Sprintf("already declared in %s", scopeOf(kind))}
	}

	symbol := Symbol{name: name, variableType: variableType, kind: kind, index: table.counters[kind]}
	table.symbols[name] = symbol
	table.counters[kind]++
	return symbol, nil
}

// StartSubroutine forgets every argument and local symbol.
func (s *SymbolTable) StartSubroutine() {
	s.subroutineScopeTable = newScopeTable()
}

func (s *SymbolTable) VarCount(kind SymbolKind) MachineWord {
	if table := s.table(kind); table != nil {
		return table.counters[kind]
	}
	return 0
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := s.subroutineScopeTable.symbols[name]; ok {
		return symbol, true
	}
	symbol, ok := s.classScopeTable.symbols[name]
	return symbol, ok
}

// KindOf returns InvalidSymbol for unknown names.
func (s *SymbolTable) KindOf(name string) SymbolKind {
	symbol, _ := s.Lookup(name)
	return symbol.kind
}

// TypeOf returns "" for unknown names.
func (s *SymbolTable) TypeOf(name string) string {
	symbol, _ := s.Lookup(name)
	return symbol.variableType
}

// IndexOf returns -1 for unknown names.
func (s *SymbolTable) IndexOf(name string) MachineWord {
	if symbol, ok := s.Lookup(name); ok {
		return symbol.index
	}
	return -1
}
