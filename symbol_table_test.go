package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTable(t *testing.T) {
	t.Run("Define then query", func(t *testing.T) {
		s := NewSymbolTable()
		for _, tc := range []struct {
			name, variableType string
			kind               SymbolKind
			index              MachineWord
		}{
			{"count", "int", StaticSymbol, 0},
			{"x", "int", FieldSymbol, 0},
			{"y", "int", FieldSymbol, 1},
			{"name", "String", StaticSymbol, 1},
			{"a", "Array", ArgumentSymbol, 0},
			{"i", "int", VarSymbol, 0},
			{"b", "boolean", ArgumentSymbol, 1},
			{"c", "char", VarSymbol, 1},
		} {
			before := s.VarCount(tc.kind)
			symbol := s.Define(tc.name, tc.variableType, tc.kind)
			assert.Equal(t, tc.index, symbol.Index())
			assert.Equal(t, before+1, s.VarCount(tc.kind), "count of %s", tc.kind)

			kind, err := s.KindOf(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)

			variableType, err := s.TypeOf(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.variableType, variableType)

			index, err := s.IndexOf(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.index, index)

			assert.True(t, s.Contains(tc.name))
		}
	})

	t.Run("StartSubroutine keeps class scope", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("count", "int", StaticSymbol)
		s.Define("x", "int", FieldSymbol)
		s.Define("y", "int", FieldSymbol)
		s.Define("this", "Point", ArgumentSymbol)
		s.Define("other", "Point", ArgumentSymbol)
		s.Define("dx", "int", VarSymbol)

		s.StartSubroutine()

		assert.Equal(t, MachineWord(0), s.VarCount(ArgumentSymbol))
		assert.Equal(t, MachineWord(0), s.VarCount(VarSymbol))
		assert.Equal(t, MachineWord(1), s.VarCount(StaticSymbol))
		assert.Equal(t, MachineWord(2), s.VarCount(FieldSymbol))
		assert.False(t, s.Contains("other"))
		assert.False(t, s.Contains("dx"))
		assert.True(t, s.Contains("y"))

		symbol := s.Define("n", "int", ArgumentSymbol)
		assert.Equal(t, MachineWord(0), symbol.Index(), "indexes restart per subroutine")
	})

	t.Run("Subroutine scope is searched first", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("x", "int", FieldSymbol)
		s.Define("x", "char", VarSymbol)

		symbol, err := s.Lookup("x")
		require.NoError(t, err)
		assert.Equal(t, VarSymbol, symbol.Kind())
		assert.Equal(t, "char", symbol.Type())

		s.StartSubroutine()
		symbol, err = s.Lookup("x")
		require.NoError(t, err)
		assert.Equal(t, FieldSymbol, symbol.Kind())
	})

	t.Run("Unknown symbol", func(t *testing.T) {
		s := NewSymbolTable()
		_, err := s.Lookup("ghost")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		_, err = s.KindOf("ghost")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		_, err = s.TypeOf("ghost")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		_, err = s.IndexOf("ghost")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		assert.False(t, s.Contains("ghost"))
	})

	t.Run("Symbols in definition order", func(t *testing.T) {
		s := NewSymbolTable()
		s.Define("b", "int", FieldSymbol)
		s.Define("a", "int", StaticSymbol)
		s.Define("c", "int", FieldSymbol)

		var names []string
		for _, symbol := range s.Symbols(ClassScope) {
			names = append(names, symbol.Name())
		}
		assert.Equal(t, []string{"b", "a", "c"}, names)
		assert.Empty(t, s.Symbols(FunctionScope))
	})
}

func TestSymbolKindSegment(t *testing.T) {
	assert.Equal(t, StaticVMSegment, StaticSymbol.Segment())
	assert.Equal(t, ThisVMSegment, FieldSymbol.Segment())
	assert.Equal(t, ArgumentVMSegment, ArgumentSymbol.Segment())
	assert.Equal(t, LocalVMSegment, VarSymbol.Segment())
	assert.Equal(t, ClassScope, FieldSymbol.Scope())
	assert.Equal(t, FunctionScope, VarSymbol.Scope())
}
