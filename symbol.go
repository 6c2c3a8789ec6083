package main

import "fmt"

type SymbolKind int

const (
	InvalidSymbol SymbolKind = iota
	StaticSymbol
	FieldSymbol
	ArgumentSymbol
	VarSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case StaticSymbol:
		return "static"
	case FieldSymbol:
		return "field"
	case ArgumentSymbol:
		return "argument"
	case VarSymbol:
		return "var"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

func (k SymbolKind) Scope() Scope {
	switch k {
	case StaticSymbol, FieldSymbol:
		return ClassScope
	default:
		return FunctionScope
	}
}

// Segment is the VM memory segment holding variables of this kind.
func (k SymbolKind) Segment() VMSegmentType {
	switch k {
	case StaticSymbol:
		return StaticVMSegment
	case FieldSymbol:
		return ThisVMSegment
	case ArgumentSymbol:
		return ArgumentVMSegment
	case VarSymbol:
		return LocalVMSegment
	default:
		return InvalidVMSegmentType
	}
}

type Symbol struct {
	name         string
	symbolType   SymbolKind
	variableType string
	index        MachineWord
}

func (s Symbol) Name() string { return s.name }

func (s Symbol) Kind() SymbolKind { return s.symbolType }

// Type is the declared type: int, char, boolean or a class name.
func (s Symbol) Type() string { return s.variableType }

func (s Symbol) Index() MachineWord { return s.index }

func (s Symbol) String() string {
	return fmt.Sprintf("%s %s %s #%d", s.symbolType, s.variableType, s.name, s.index)
}
