package main

type SymbolKind string

const (
	StaticSymbol   SymbolKind = "static"
	FieldSymbol    SymbolKind = "field"
	ArgumentSymbol SymbolKind = "argument"
	LocalSymbol    SymbolKind = "local"
	InvalidSymbol  SymbolKind = ""
)

// Segment is the VM memory segment variables of this kind live in.
func (k SymbolKind) Segment() VMSegmentType {
	switch k {
	case StaticSymbol:
		return StaticVMSegment
	case FieldSymbol:
		return ThisVMSegment
	case ArgumentSymbol:
		return ArgumentVMSegment
	case LocalSymbol:
		return LocalVMSegment
	default:
		return InvalidVMSegmentType
	}
}

type Symbol struct {
	name         string
	variableType string
	kind         SymbolKind
	index        MachineWord
}

func (s Symbol) Name() string { return s.name }

func (s Symbol) Type() string { return s.variableType }

func (s Symbol) Kind() SymbolKind { return s.kind }

func (s Symbol) Index() MachineWord { return s.index }

// IsObject reports whether the declared type names a class rather than one
// of the primitive types.
func (s Symbol) IsObject() bool {
	switch s.variableType {
	case "int", "char", "boolean", "":
		return false
	}
	return true
}
