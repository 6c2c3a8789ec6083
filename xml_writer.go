package main

import (
	"bufio"
	"io"
	"strings"
)

// ParseTreeListener is told about every non-terminal the compiler enters and
// leaves and every terminal it consumes.
type ParseTreeListener interface {
	OpenNonTerminal(tag string)
	CloseNonTerminal(tag string)
	Terminal(token Token)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// XMLWriter renders the parse tree as nested tags, two spaces per level.
type XMLWriter struct {
	output *bufio.Writer
	depth  int
	err    error
}

func NewXMLWriter(w io.Writer) *XMLWriter {
	return &XMLWriter{output: bufio.NewWriter(w)}
}

func (w *XMLWriter) writeLine(parts ...string) {
	if w.err != nil {
		return
	}
	if _, err := w.output.WriteString(strings.Repeat("  ", w.depth)); err != nil {
		w.err = err
		return
	}
	for _, p := range parts {
		if _, err := w.output.WriteString(p); err != nil {
			w.err = err
			return
		}
	}
	w.err = w.output.WriteByte('\n')
}

func (w *XMLWriter) OpenNonTerminal(tag string) {
	w.writeLine("<", tag, ">")
	w.depth++
}

func (w *XMLWriter) CloseNonTerminal(tag string) {
	w.depth--
	w.writeLine("</", tag, ">")
}

func (w *XMLWriter) Terminal(token Token) {
	tag := string(token.tokenType)
	w.writeLine("<", tag, "> ", xmlEscaper.Replace(token.terminal), " </", tag, ">")
}

// WriteTokens dumps a flat token list wrapped in a single tokens element.
func (w *XMLWriter) WriteTokens(tokens []Token) {
	w.writeLine("<tokens>")
	for _, token := range tokens {
		w.Terminal(token)
	}
	w.writeLine("</tokens>")
}

func (w *XMLWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.output.Flush()
	return w.err
}

type nopListener struct{}

func (nopListener) OpenNonTerminal(string)  {}
func (nopListener) CloseNonTerminal(string) {}
func (nopListener) Terminal(Token)          {}
