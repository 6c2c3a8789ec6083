package main

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Rules are tried in order at every position and each one matches greedily, so
// "x[i+1]" splits into five tokens and "classy" stays a single identifier.
var (
	jackLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
		{Name: "UnterminatedComment", Pattern: `/\*(?s:.*)`},
		{Name: "String", Pattern: `"[^"\n]*"`},
		{Name: "UnterminatedString", Pattern: `"[^"\n]*`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
		{Name: "Punct", Pattern: `[{}()\[\].,;+\-*/&|<>=~^#]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	lexerSymbols            = jackLexer.Symbols()
	commentRule             = lexerSymbols["Comment"]
	unterminatedCommentRule = lexerSymbols["UnterminatedComment"]
	stringRule              = lexerSymbols["String"]
	unterminatedStringRule  = lexerSymbols["UnterminatedString"]
	intRule                 = lexerSymbols["Int"]
	identRule               = lexerSymbols["Ident"]
	punctRule               = lexerSymbols["Punct"]
	whitespaceRule          = lexerSymbols["Whitespace"]
)

type Tokenizer struct {
	tokens []Token
	// index of the current token, -1 before the first Scan
	cursor int
}

func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	return NewNamedTokenizer("", r)
}

// NewNamedTokenizer tokenizes all of r up front; filename only shows up in
// token positions.
func NewNamedTokenizer(filename string, r io.Reader) (*Tokenizer, error) {
	tokens, err := Tokenize(filename, r)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{tokens: tokens, cursor: -1}, nil
}

// Tokenize returns the classified tokens of r with comments and whitespace
// removed.
func Tokenize(filename string, r io.Reader) ([]Token, error) {
	var tokens []Token
	err := lex(filename, r, func(lt lexer.Token) error {
		switch lt.Type {
		case commentRule, whitespaceRule:
			return nil
		}
		token, err := parseToken(lt)
		if err != nil {
			return err
		}
		tokens = append(tokens, token)
		return nil
	})
	return tokens, err
}

// StripComments returns src with every comment replaced by a single space.
// String literals are left untouched, even when they contain comment markers.
func StripComments(src string) (string, error) {
	var b strings.Builder
	err := lex("", strings.NewReader(src), func(lt lexer.Token) error {
		if lt.Type == commentRule {
			b.WriteByte(' ')
		} else {
			b.WriteString(lt.Value)
		}
		return nil
	})
	return b.String(), err
}

func lex(filename string, r io.Reader, yield func(lexer.Token) error) error {
	lx, err := jackLexer.Lex(filename, r)
	if err != nil {
		return errors.Wrap(err, "cannot read source")
	}
	for {
		lt, err := lx.Next()
		if err != nil {
			return errors.Wrapf(ErrMalformedToken, "%v", err)
		}
		if lt.EOF() {
			return nil
		}
		if err := yield(lt); err != nil {
			return err
		}
	}
}

func parseToken(lt lexer.Token) (token Token, err error) {
	token.terminal = lt.Value
	token.pos = lt.Pos

	switch lt.Type {
	case identRule:
		if kw, ok := keywords[lt.Value]; ok {
			token.tokenType = Keyword
			token.keyword = kw
		} else {
			token.tokenType = Identifier
		}
	case punctRule:
		token.tokenType = SymbolTokenType
	case intRule:
		token.tokenType = IntegerConstant
		if _, err = token.asInt(); err != nil {
			return Token{}, err
		}
	case stringRule:
		token.tokenType = StringConstant
		token.terminal = lt.Value[1 : len(lt.Value)-1]
		for _, char := range token.terminal {
			if char == utf8.RuneError || char > MaxIntegerConstant {
				return Token{}, errors.Wrapf(ErrMalformedToken, "%s: character %q does not fit a machine word", lt.Pos, char)
			}
		}
	case unterminatedStringRule:
		err = errors.Wrapf(ErrMalformedToken, "%s: unterminated string constant", lt.Pos)
	case unterminatedCommentRule:
		err = errors.Wrapf(ErrMalformedToken, "%s: unterminated comment", lt.Pos)
	default:
		err = errors.Wrapf(ErrMalformedToken, "%s: unknown token %q", lt.Pos, lt.Value)
	}
	return
}

func (t *Tokenizer) HasMoreTokens() bool {
	return t.cursor+1 < len(t.tokens)
}

// Scan moves to the next token. It returns false once the sequence is
// exhausted; Token fails from then on.
func (t *Tokenizer) Scan() bool {
	if t.cursor < len(t.tokens) {
		t.cursor++
	}
	return t.cursor < len(t.tokens)
}

func (t *Tokenizer) Token() (Token, error) {
	if t.cursor < 0 {
		return Token{}, errors.Wrap(ErrNoToken, "tokenizer has not been advanced")
	}
	if t.cursor >= len(t.tokens) {
		return Token{}, errors.Wrap(ErrNoToken, "past the last token")
	}
	return t.tokens[t.cursor], nil
}

// Seek makes the token at index i current. Seek(-1) restarts the sequence.
func (t *Tokenizer) Seek(i int) {
	switch {
	case i < -1:
		i = -1
	case i > len(t.tokens):
		i = len(t.tokens)
	}
	t.cursor = i
}

func (t *Tokenizer) Reset() { t.Seek(-1) }

func (t *Tokenizer) Index() int { return t.cursor }

func (t *Tokenizer) Len() int { return len(t.tokens) }

func (t *Tokenizer) Tokens() []Token {
	return append([]Token(nil), t.tokens...)
}
