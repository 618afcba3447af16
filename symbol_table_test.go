package main

import (
	"errors"
	"testing"
)

func mustDefine(t *testing.T, s *SymbolTable, name, variableType string, kind SymbolKind) Symbol {
	t.Helper()
	symbol, err := s.Define(name, variableType, kind)
	if err != nil {
		t.Fatalf("Define(%q): %v", name, err)
	}
	return symbol
}

func TestSymbolTable(t *testing.T) {
	t.Run("IndicesPerKind", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "a", "int", StaticSymbol)
		mustDefine(t, s, "b", "int", FieldSymbol)
		mustDefine(t, s, "c", "Point", StaticSymbol)
		mustDefine(t, s, "d", "boolean", FieldSymbol)
		mustDefine(t, s, "e", "char", FieldSymbol)

		expected := map[string]MachineWord{"a": 0, "c": 1, "b": 0, "d": 1, "e": 2}
		for name, index := range expected {
			if got := s.IndexOf(name); got != index {
				t.Errorf("IndexOf(%q): expected %d, got %d", name, index, got)
			}
		}
		if n := s.VarCount(StaticSymbol); n != 2 {
			t.Errorf("VarCount(static): expected 2, got %d", n)
		}
		if n := s.VarCount(FieldSymbol); n != 3 {
			t.Errorf("VarCount(field): expected 3, got %d", n)
		}
		if s.TypeOf("c") != "Point" || s.KindOf("c") != StaticSymbol {
			t.Errorf("c: expected static Point, got %s %s", s.KindOf("c"), s.TypeOf("c"))
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "x", "int", FieldSymbol)
		_, err := s.Define("x", "int", StaticSymbol)
		var semanticErr *SemanticError
		if !errors.As(err, &semanticErr) {
			t.Fatalf("expected *SemanticError, got %v", err)
		}
		if s.VarCount(StaticSymbol) != 0 {
			t.Errorf("failed Define must not consume an index")
		}

		mustDefine(t, s, "y", "int", ArgumentSymbol)
		if _, err := s.Define("y", "int", LocalSymbol); err == nil {
			t.Error("expected duplicate error in subroutine scope")
		}
	})

	t.Run("InvalidKind", func(t *testing.T) {
		s := NewSymbolTable()
		if _, err := s.Define("x", "int", InvalidSymbol); err == nil {
			t.Error("expected error for invalid kind")
		}
	})

	t.Run("Shadowing", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "x", "int", FieldSymbol)
		mustDefine(t, s, "x", "Point", LocalSymbol)

		if kind := s.KindOf("x"); kind != LocalSymbol {
			t.Errorf("KindOf(x): expected local, got %q", kind)
		}
		if typ := s.TypeOf("x"); typ != "Point" {
			t.Errorf("TypeOf(x): expected Point, got %q", typ)
		}

		s.StartSubroutine()
		if kind := s.KindOf("x"); kind != FieldSymbol {
			t.Errorf("KindOf(x) after StartSubroutine: expected field, got %q", kind)
		}
	})

	t.Run("StartSubroutine", func(t *testing.T) {
		s := NewSymbolTable()
		mustDefine(t, s, "count", "int", StaticSymbol)
		mustDefine(t, s, "a", "int", ArgumentSymbol)
		mustDefine(t, s, "b", "int", ArgumentSymbol)
		mustDefine(t, s, "i", "int", LocalSymbol)

		s.StartSubroutine()

		if n := s.VarCount(ArgumentSymbol); n != 0 {
			t.Errorf("VarCount(argument): expected 0, got %d", n)
		}
		if n := s.VarCount(LocalSymbol); n != 0 {
			t.Errorf("VarCount(local): expected 0, got %d", n)
		}
		if _, ok := s.Lookup("a"); ok {
			t.Error("argument a still resolves")
		}
		if s.KindOf("i") != InvalidSymbol || s.TypeOf("i") != "" || s.IndexOf("i") != -1 {
			t.Error("local i still resolves")
		}
		if s.VarCount(StaticSymbol) != 1 {
			t.Error("class scope must survive StartSubroutine")
		}

		if got := mustDefine(t, s, "z", "int", ArgumentSymbol).Index(); got != 0 {
			t.Errorf("first argument after reset: expected index 0, got %d", got)
		}
	})

	t.Run("Segments", func(t *testing.T) {
		expected := map[SymbolKind]VMSegmentType{
			StaticSymbol:   StaticVMSegment,
			FieldSymbol:    ThisVMSegment,
			ArgumentSymbol: ArgumentVMSegment,
			LocalSymbol:    LocalVMSegment,
			InvalidSymbol:  InvalidVMSegmentType,
		}
		for kind, segment := range expected {
			if got := kind.Segment(); got != segment {
				t.Errorf("%q.Segment(): expected %q, got %q", kind, segment, got)
			}
		}
	})

	t.Run("IsObject", func(t *testing.T) {
		s := NewSymbolTable()
		for _, typ := range []string{"int", "char", "boolean"} {
			if mustDefine(t, s, typ+"Var", typ, LocalSymbol).IsObject() {
				t.Errorf("%s must not be an object type", typ)
			}
		}
		if !mustDefine(t, s, "p", "Point", LocalSymbol).IsObject() {
			t.Error("Point must be an object type")
		}
	})
}
