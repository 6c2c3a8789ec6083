package main

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type MachineWord int16

// MaxIntegerConstant is the largest literal the target word can hold; negative
// numbers are written with the unary minus operator.
const MaxIntegerConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolTokenType TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

type KeywordType int

const (
	NoKeyword KeywordType = iota
	ClassKeyword
	ConstructorKeyword
	FunctionKeyword
	MethodKeyword
	FieldKeyword
	StaticKeyword
	VarKeyword
	IntKeyword
	CharKeyword
	BooleanKeyword
	VoidKeyword
	TrueKeyword
	FalseKeyword
	NullKeyword
	ThisKeyword
	LetKeyword
	DoKeyword
	IfKeyword
	ElseKeyword
	WhileKeyword
	ReturnKeyword
)

var keywords = map[string]KeywordType{
	"class":       ClassKeyword,
	"constructor": ConstructorKeyword,
	"function":    FunctionKeyword,
	"method":      MethodKeyword,
	"field":       FieldKeyword,
	"static":      StaticKeyword,
	"var":         VarKeyword,
	"int":         IntKeyword,
	"char":        CharKeyword,
	"boolean":     BooleanKeyword,
	"void":        VoidKeyword,
	"true":        TrueKeyword,
	"false":       FalseKeyword,
	"null":        NullKeyword,
	"this":        ThisKeyword,
	"let":         LetKeyword,
	"do":          DoKeyword,
	"if":          IfKeyword,
	"else":        ElseKeyword,
	"while":       WhileKeyword,
	"return":      ReturnKeyword,
}

var keywordNames = func() map[KeywordType]string {
	names := make(map[KeywordType]string, len(keywords))
	for text, kw := range keywords {
		names[kw] = text
	}
	return names
}()

func (k KeywordType) String() string {
	if text, ok := keywordNames[k]; ok {
		return text
	}
	return fmt.Sprintf("KeywordType(%d)", int(k))
}

type Token struct {
	tokenType TokenType
	terminal  string
	keyword   KeywordType
	pos       lexer.Position
}

func (t Token) Type() TokenType { return t.tokenType }

// Text returns the token text; string constants come without their quotes.
func (t Token) Text() string { return t.terminal }

func (t Token) Keyword() KeywordType { return t.keyword }

func (t Token) Pos() lexer.Position { return t.pos }

func (t Token) isKeyword(kws ...KeywordType) bool {
	if t.tokenType != Keyword {
		return false
	}
	for _, kw := range kws {
		if t.keyword == kw {
			return true
		}
	}
	return false
}

func (t Token) isSymbol(symbols ...rune) bool {
	if t.tokenType != SymbolTokenType {
		return false
	}
	for _, s := range symbols {
		if t.symbol() == s {
			return true
		}
	}
	return false
}

func (t Token) symbol() rune {
	if t.tokenType != SymbolTokenType || len(t.terminal) != 1 {
		return 0
	}
	return rune(t.terminal[0])
}

func (t Token) asInt() (MachineWord, error) {
	word, err := strconv.Atoi(t.terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxIntegerConstant || word < 0 {
		return 0, errors.Wrapf(ErrMalformedToken, "%s: cannot parse %q as 16 bit int", t.pos, t.terminal)
	}
	return MachineWord(word), nil
}

func (t Token) String() string {
	if t.tokenType == InvalidToken {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.tokenType, t.terminal)
}
