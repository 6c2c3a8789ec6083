package main

import "github.com/pkg/errors"

type Scope int

const (
	FunctionScope Scope = iota
	ClassScope
)

// scopeTable keeps symbols in definition order together with a running count
// per kind, so the next index of a kind is always its current count.
type scopeTable struct {
	byName map[string]int
	order  []Symbol
	counts map[SymbolKind]MachineWord
}

func newScopeTable() scopeTable {
	return scopeTable{
		byName: make(map[string]int),
		counts: make(map[SymbolKind]MachineWord),
	}
}

func (s *scopeTable) register(symbol Symbol) Symbol {
	symbol.index = s.counts[symbol.symbolType]
	s.counts[symbol.symbolType]++
	s.byName[symbol.name] = len(s.order)
	s.order = append(s.order, symbol)
	return symbol
}

func (s *scopeTable) lookup(name string) (Symbol, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return s.order[i], true
}

type SymbolTable struct {
	classScopeTable    scopeTable
	functionScopeTable scopeTable
	log                *Logger
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:    newScopeTable(),
		functionScopeTable: newScopeTable(),
		log:                NopLogger(),
	}
}

func (s *SymbolTable) table(kind SymbolKind) *scopeTable {
	if kind.Scope() == ClassScope {
		return &s.classScopeTable
	}
	return &s.functionScopeTable
}

// Define registers name in the scope owned by kind and assigns it the next
// free index of that kind.
func (s *SymbolTable) Define(name, variableType string, kind SymbolKind) Symbol {
	symbol := s.table(kind).register(Symbol{name: name, symbolType: kind, variableType: variableType})
	s.log.Debugf("Registered symbol %q: %s", name, symbol)
	return symbol
}

// StartSubroutine drops all arguments and locals; statics and fields stay.
func (s *SymbolTable) StartSubroutine() {
	s.functionScopeTable = newScopeTable()
}

func (s *SymbolTable) VarCount(kind SymbolKind) MachineWord {
	return s.table(kind).counts[kind]
}

// Lookup searches the subroutine scope first, then the class scope.
func (s *SymbolTable) Lookup(name string) (Symbol, error) {
	if symbol, ok := s.functionScopeTable.lookup(name); ok {
		return symbol, nil
	}
	if symbol, ok := s.classScopeTable.lookup(name); ok {
		return symbol, nil
	}
	return Symbol{}, errors.Wrapf(ErrUnknownSymbol, "no symbol with name %q declared", name)
}

func (s *SymbolTable) Contains(name string) bool {
	_, err := s.Lookup(name)
	return err == nil
}

func (s *SymbolTable) KindOf(name string) (SymbolKind, error) {
	symbol, err := s.Lookup(name)
	return symbol.symbolType, err
}

func (s *SymbolTable) TypeOf(name string) (string, error) {
	symbol, err := s.Lookup(name)
	return symbol.variableType, err
}

func (s *SymbolTable) IndexOf(name string) (MachineWord, error) {
	symbol, err := s.Lookup(name)
	return symbol.index, err
}

// Symbols lists the symbols of one scope in definition order.
func (s *SymbolTable) Symbols(scope Scope) []Symbol {
	if scope == ClassScope {
		return append([]Symbol(nil), s.classScopeTable.order...)
	}
	return append([]Symbol(nil), s.functionScopeTable.order...)
}
