package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type TokenScanner interface {
	Scan() bool
	Token() (Token, error)
}

// cursor holds the single lookahead token. Every compile routine starts with
// its first token under the cursor and leaves the cursor on the token right
// after its last one.
type cursor struct {
	tokens  TokenScanner
	current Token
	last    Token
	tree    ParseTreeListener
}

func (c *cursor) load() error {
	if !c.tokens.Scan() {
		// end of input: an invalid token positioned after the last real one
		c.current = Token{pos: c.last.pos}
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	c.current = token
	return nil
}

func (c *cursor) peek() Token {
	return c.current
}

func (c *cursor) advance() (Token, error) {
	token := c.current
	if token.tokenType == InvalidToken {
		return token, errors.Wrapf(ErrUnexpectedToken, "%s: unexpected end of input", token.pos)
	}
	c.tree.Terminal(token)
	c.last = token
	return token, c.load()
}

type Option func(*JackCompiler)

// WithParseTree reports the parse tree of the class to l while compiling.
func WithParseTree(l ParseTreeListener) Option {
	return func(c *JackCompiler) { c.tree = l }
}

// WithUndeclaredNames lets unknown variable names through as unresolved
// symbols instead of failing. Only useful when the generated code is discarded.
func WithUndeclaredNames() Option {
	return func(c *JackCompiler) { c.undeclaredNames = true }
}

func WithLogger(l *Logger) Option {
	return func(c *JackCompiler) { c.log = l }
}

// JackCompiler translates exactly one class in a single pass. It is not safe
// for concurrent use and must not be reused for another class.
type JackCompiler struct {
	cursor
	code    CodeEmitter
	symbols *SymbolTable
	log     *Logger

	className      string
	subroutineKind KeywordType
	labelCount     int

	undeclaredNames bool
}

func NewJackCompiler(tokens TokenScanner, code CodeEmitter, opts ...Option) *JackCompiler {
	c := &JackCompiler{
		cursor:  cursor{tokens: tokens, tree: nopListener{}},
		code:    code,
		symbols: NewSymbolTable(),
		log:     NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.symbols.log = c.log
	return c
}

// Compile translates the class. Output produced before a failure is
// incomplete and should be thrown away.
func (c *JackCompiler) Compile() error {
	if err := c.load(); err != nil {
		return err
	}
	if err := c.compileClass(); err != nil {
		return err
	}
	if next := c.peek(); next.tokenType != InvalidToken {
		return c.unexpected(next, "end of input")
	}
	return nil
}

func (c *JackCompiler) ClassName() string { return c.className }

func (c *JackCompiler) Symbols() *SymbolTable { return c.symbols }

func (c *JackCompiler) open(tag string) {
	c.log.Debugf("Compiling %s", tag)
	c.tree.OpenNonTerminal(tag)
}

func (c *JackCompiler) close(tag string) {
	c.tree.CloseNonTerminal(tag)
}

func (c *JackCompiler) unexpected(token Token, expectation string) error {
	return errors.Wrapf(ErrUnexpectedToken, "%s: expected %s, got %s", token.pos, expectation, token)
}

func (c *JackCompiler) nextLabel() int {
	n := c.labelCount
	c.labelCount++
	return n
}

// compileTerminal consumes the keyword or symbol spelled expectation.
func (c *JackCompiler) compileTerminal(expectation string) error {
	token := c.peek()
	if (token.tokenType != Keyword && token.tokenType != SymbolTokenType) || token.terminal != expectation {
		return c.unexpected(token, fmt.Sprintf("%q", expectation))
	}
	_, err := c.advance()
	return err
}

func (c *JackCompiler) compileKeyword(kws ...KeywordType) (Token, error) {
	token := c.peek()
	if !token.isKeyword(kws...) {
		return token, c.unexpected(token, fmt.Sprintf("one of %v", kws))
	}
	return c.advance()
}

func (c *JackCompiler) compileIdentifier() (Token, error) {
	token := c.peek()
	if token.tokenType != Identifier {
		return token, c.unexpected(token, "identifier")
	}
	return c.advance()
}

func (c *JackCompiler) lookup(token Token) (Symbol, error) {
	symbol, err := c.symbols.Lookup(token.terminal)
	if err != nil {
		if c.undeclaredNames {
			c.log.Debugf("Unresolved symbol %q at %s", token.terminal, token.pos)
			return Symbol{name: token.terminal}, nil
		}
		return symbol, errors.Wrapf(err, "%s", token.pos)
	}
	return symbol, nil
}

func (c *JackCompiler) pushSymbol(symbol Symbol) {
	c.code.WritePush(symbol.symbolType.Segment(), symbol.index)
}

func (c *JackCompiler) popSymbol(symbol Symbol) {
	c.code.WritePop(symbol.symbolType.Segment(), symbol.index)
}

// class: 'class' className '{' classVarDec* subroutineDec* '}'
func (c *JackCompiler) compileClass() error {
	c.open("class")
	defer c.close("class")

	if err := c.compileTerminal("class"); err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	c.className = name.terminal
	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	for c.peek().isKeyword(StaticKeyword, FieldKeyword) {
		if err := c.compileClassVarDec(); err != nil {
			return err
		}
	}
	for c.peek().isKeyword(ConstructorKeyword, FunctionKeyword, MethodKeyword) {
		if err := c.compileSubroutineDec(); err != nil {
			return err
		}
	}
	return c.compileTerminal("}")
}

// classVarDec: ('static' | 'field') type varName (',' varName)* ';'
func (c *JackCompiler) compileClassVarDec() error {
	c.open("classVarDec")
	defer c.close("classVarDec")

	token, err := c.compileKeyword(StaticKeyword, FieldKeyword)
	if err != nil {
		return err
	}
	kind := FieldSymbol
	if token.keyword == StaticKeyword {
		kind = StaticSymbol
	}
	if err := c.compileVarNames(kind); err != nil {
		return err
	}
	return c.compileTerminal(";")
}

// varDec: 'var' type varName (',' varName)* ';'
func (c *JackCompiler) compileVarDec() error {
	c.open("varDec")
	defer c.close("varDec")

	if err := c.compileTerminal("var"); err != nil {
		return err
	}
	if err := c.compileVarNames(VarSymbol); err != nil {
		return err
	}
	return c.compileTerminal(";")
}

// compileVarNames handles the shared "type varName (',' varName)*" tail of
// class and local variable declarations.
func (c *JackCompiler) compileVarNames(kind SymbolKind) error {
	variableType, err := c.compileType()
	if err != nil {
		return err
	}
	for {
		name, err := c.compileIdentifier()
		if err != nil {
			return err
		}
		c.symbols.Define(name.terminal, variableType, kind)
		if !c.peek().isSymbol(',') {
			return nil
		}
		if _, err := c.advance(); err != nil {
			return err
		}
	}
}

// type: 'int' | 'char' | 'boolean' | className
func (c *JackCompiler) compileType() (string, error) {
	token := c.peek()
	if !token.isKeyword(IntKeyword, CharKeyword, BooleanKeyword) && token.tokenType != Identifier {
		return "", c.unexpected(token, "type")
	}
	if _, err := c.advance(); err != nil {
		return "", err
	}
	return token.terminal, nil
}

// subroutineDec: ('constructor' | 'function' | 'method') ('void' | type)
// subroutineName '(' parameterList ')' subroutineBody
func (c *JackCompiler) compileSubroutineDec() error {
	c.open("subroutineDec")
	defer c.close("subroutineDec")

	token, err := c.compileKeyword(ConstructorKeyword, FunctionKeyword, MethodKeyword)
	if err != nil {
		return err
	}
	c.subroutineKind = token.keyword
	c.symbols.StartSubroutine()
	if c.subroutineKind == MethodKeyword {
		// the receiver travels as argument 0
		c.symbols.Define("this", c.className, ArgumentSymbol)
	}

	if c.peek().isKeyword(VoidKeyword) {
		_, err = c.advance()
	} else {
		_, err = c.compileType()
	}
	if err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
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
	return c.compileSubroutineBody(c.className + "." + name.terminal)
}

// parameterList: ((type varName) (',' type varName)*)?
func (c *JackCompiler) compileParameterList() error {
	c.open("parameterList")
	defer c.close("parameterList")

	if c.peek().isSymbol(')') {
		return nil
	}
	for {
		variableType, err := c.compileType()
		if err != nil {
			return err
		}
		name, err := c.compileIdentifier()
		if err != nil {
			return err
		}
		c.symbols.Define(name.terminal, variableType, ArgumentSymbol)
		if !c.peek().isSymbol(',') {
			return nil
		}
		if _, err := c.advance(); err != nil {
			return err
		}
	}
}

// subroutineBody: '{' varDec* statements '}'
func (c *JackCompiler) compileSubroutineBody(functionName string) error {
	c.open("subroutineBody")
	defer c.close("subroutineBody")

	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	for c.peek().isKeyword(VarKeyword) {
		if err := c.compileVarDec(); err != nil {
			return err
		}
	}

	c.code.WriteFunction(functionName, c.symbols.VarCount(VarSymbol))
	switch c.subroutineKind {
	case ConstructorKeyword:
		c.code.WritePush(ConstVMSegment, c.symbols.VarCount(FieldSymbol))
		c.code.WriteCall("Memory.alloc", 1)
		c.code.WritePop(PointerVMSegment, 0)
	case MethodKeyword:
		c.code.WritePush(ArgumentVMSegment, 0)
		c.code.WritePop(PointerVMSegment, 0)
	}

	if err := c.compileStatements(); err != nil {
		return err
	}
	return c.compileTerminal("}")
}

// statements: statement*
func (c *JackCompiler) compileStatements() error {
	c.open("statements")
	defer c.close("statements")

	for {
		token := c.peek()
		if token.tokenType != Keyword {
			return nil
		}
		var err error
		switch token.keyword {
		case LetKeyword:
			err = c.compileLetStatement()
		case IfKeyword:
			err = c.compileIfStatement()
		case WhileKeyword:
			err = c.compileWhileStatement()
		case DoKeyword:
			err = c.compileDoStatement()
		case ReturnKeyword:
			err = c.compileReturnStatement()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// letStatement: 'let' varName ('[' expression ']')? '=' expression ';'
func (c *JackCompiler) compileLetStatement() error {
	c.open("letStatement")
	defer c.close("letStatement")

	if err := c.compileTerminal("let"); err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	target, err := c.lookup(name)
	if err != nil {
		return err
	}

	indexed := c.peek().isSymbol('[')
	if indexed {
		if _, err := c.advance(); err != nil {
			return err
		}
		c.pushSymbol(target)
		if err := c.compileExpression(); err != nil {
			return err
		}
		if err := c.compileTerminal("]"); err != nil {
			return err
		}
		c.code.WriteArithmetic(AddVMOperation)
	}

	if err := c.compileTerminal("="); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}

	if !indexed {
		c.popSymbol(target)
		return nil
	}
	// the right hand side may itself have used THAT, so the address is only
	// installed once the value is computed
	c.code.WritePop(TempVMSegment, 0)
	c.code.WritePop(PointerVMSegment, 1)
	c.code.WritePush(TempVMSegment, 0)
	c.code.WritePop(ThatVMSegment, 0)
	return nil
}

// compileCondition handles the "'(' expression ')' '{' statements '}'" part
// shared by if and while, branching to skip when the condition is false.
func (c *JackCompiler) compileCondition(skip string) error {
	if err := c.compileTerminal("("); err != nil {
		return err
	}
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal(")"); err != nil {
		return err
	}
	c.code.WriteArithmetic(NotVMOperation)
	c.code.WriteIf(skip)
	return c.compileBlock()
}

func (c *JackCompiler) compileBlock() error {
	if err := c.compileTerminal("{"); err != nil {
		return err
	}
	if err := c.compileStatements(); err != nil {
		return err
	}
	return c.compileTerminal("}")
}

// ifStatement: 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (c *JackCompiler) compileIfStatement() error {
	c.open("ifStatement")
	defer c.close("ifStatement")

	if err := c.compileTerminal("if"); err != nil {
		return err
	}
	n := c.nextLabel()
	falseLabel := fmt.Sprintf("IF_FALSE%d", n)
	endLabel := fmt.Sprintf("IF_END%d", n)

	if err := c.compileCondition(falseLabel); err != nil {
		return err
	}
	c.code.WriteGoto(endLabel)
	c.code.WriteLabel(falseLabel)
	if c.peek().isKeyword(ElseKeyword) {
		if _, err := c.advance(); err != nil {
			return err
		}
		if err := c.compileBlock(); err != nil {
			return err
		}
	}
	c.code.WriteLabel(endLabel)
	return nil
}

// whileStatement: 'while' '(' expression ')' '{' statements '}'
func (c *JackCompiler) compileWhileStatement() error {
	c.open("whileStatement")
	defer c.close("whileStatement")

	if err := c.compileTerminal("while"); err != nil {
		return err
	}
	n := c.nextLabel()
	topLabel := fmt.Sprintf("WHILE_EXP%d", n)
	endLabel := fmt.Sprintf("WHILE_END%d", n)

	c.code.WriteLabel(topLabel)
	if err := c.compileCondition(endLabel); err != nil {
		return err
	}
	c.code.WriteGoto(topLabel)
	c.code.WriteLabel(endLabel)
	return nil
}

// doStatement: 'do' subroutineCall ';'
func (c *JackCompiler) compileDoStatement() error {
	c.open("doStatement")
	defer c.close("doStatement")

	if err := c.compileTerminal("do"); err != nil {
		return err
	}
	name, err := c.compileIdentifier()
	if err != nil {
		return err
	}
	if err := c.compileSubroutineCall(name); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}
	// calls always return a value
	c.code.WritePop(TempVMSegment, 0)
	return nil
}

// returnStatement: 'return' expression? ';'
func (c *JackCompiler) compileReturnStatement() error {
	c.open("returnStatement")
	defer c.close("returnStatement")

	if err := c.compileTerminal("return"); err != nil {
		return err
	}
	if c.peek().isSymbol(';') {
		c.code.WritePush(ConstVMSegment, 0)
	} else if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal(";"); err != nil {
		return err
	}
	c.code.WriteReturn()
	return nil
}

func binaryOperation(op rune) (operation VMOperation, function string) {
	switch op {
	case '+':
		return AddVMOperation, ""
	case '-':
		return SubVMOperation, ""
	case '*':
		return InvalidVMOperation, "Math.multiply"
	case '/':
		return InvalidVMOperation, "Math.divide"
	case '&':
		return AndVMOperation, ""
	case '|':
		return OrVMOperation, ""
	case '<':
		return LtVMOperation, ""
	case '>':
		return GtVMOperation, ""
	case '=':
		return EqVMOperation, ""
	}
	return InvalidVMOperation, ""
}

func unaryOperation(op rune) VMOperation {
	switch op {
	case '-':
		return NegVMOperation
	case '~':
		return NotVMOperation
	case '^':
		return ShiftLeftVMOperation
	case '#':
		return ShiftRightVMOperation
	}
	return InvalidVMOperation
}

// expression: term (op term)*
func (c *JackCompiler) compileExpression() error {
	c.open("expression")
	defer c.close("expression")

	if err := c.compileTerm(); err != nil {
		return err
	}
	for c.peek().isSymbol('+', '-', '*', '/', '&', '|', '<', '>', '=') {
		op, err := c.advance()
		if err != nil {
			return err
		}
		if err := c.compileTerm(); err != nil {
			return err
		}
		operation, function := binaryOperation(op.symbol())
		if function != "" {
			c.code.WriteCall(function, 2)
		} else {
			c.code.WriteArithmetic(operation)
		}
	}
	return nil
}

// term: integerConstant | stringConstant | keywordConstant | varName |
// varName '[' expression ']' | subroutineCall | '(' expression ')' | unaryOp term
func (c *JackCompiler) compileTerm() error {
	c.open("term")
	defer c.close("term")

	token := c.peek()
	switch token.tokenType {
	case IntegerConstant:
		value, err := token.asInt()
		if err != nil {
			return err
		}
		if _, err := c.advance(); err != nil {
			return err
		}
		c.code.WritePush(ConstVMSegment, value)
		return nil

	case StringConstant:
		if _, err := c.advance(); err != nil {
			return err
		}
		c.compileStringConstant(token.terminal)
		return nil

	case Keyword:
		return c.compileKeywordConstant()

	case Identifier:
		if _, err := c.advance(); err != nil {
			return err
		}
		switch c.peek().symbol() {
		case '[':
			return c.compileArrayAccess(token)
		case '(', '.':
			return c.compileSubroutineCall(token)
		}
		symbol, err := c.lookup(token)
		if err != nil {
			return err
		}
		c.pushSymbol(symbol)
		return nil

	case SymbolTokenType:
		switch token.symbol() {
		case '(':
			if _, err := c.advance(); err != nil {
				return err
			}
			if err := c.compileExpression(); err != nil {
				return err
			}
			return c.compileTerminal(")")
		case '-', '~', '^', '#':
			if _, err := c.advance(); err != nil {
				return err
			}
			if err := c.compileTerm(); err != nil {
				return err
			}
			c.code.WriteArithmetic(unaryOperation(token.symbol()))
			return nil
		}
	}
	return c.unexpected(token, "term")
}

// keywordConstant: 'true' | 'false' | 'null' | 'this'
func (c *JackCompiler) compileKeywordConstant() error {
	token, err := c.compileKeyword(TrueKeyword, FalseKeyword, NullKeyword, ThisKeyword)
	if err != nil {
		return err
	}
	switch token.keyword {
	case TrueKeyword:
		c.code.WritePush(ConstVMSegment, 0)
		c.code.WriteArithmetic(NotVMOperation)
	case FalseKeyword, NullKeyword:
		c.code.WritePush(ConstVMSegment, 0)
	case ThisKeyword:
		c.code.WritePush(PointerVMSegment, 0)
	}
	return nil
}

// compileStringConstant builds the literal at run time, since the VM has no
// string constants: String.appendChar returns the string, so the reference
// stays on the stack between appends.
func (c *JackCompiler) compileStringConstant(constant string) {
	c.code.WritePush(ConstVMSegment, MachineWord(utf8.RuneCountInString(constant)))
	c.code.WriteCall("String.new", 1)
	for _, char := range constant {
		c.code.WritePush(ConstVMSegment, MachineWord(char))
		c.code.WriteCall("String.appendChar", 2)
	}
}

// compileArrayAccess reads name[expression]; the identifier is already
// consumed.
func (c *JackCompiler) compileArrayAccess(name Token) error {
	base, err := c.lookup(name)
	if err != nil {
		return err
	}
	if err := c.compileTerminal("["); err != nil {
		return err
	}
	c.pushSymbol(base)
	if err := c.compileExpression(); err != nil {
		return err
	}
	if err := c.compileTerminal("]"); err != nil {
		return err
	}
	c.code.WriteArithmetic(AddVMOperation)
	c.code.WritePop(PointerVMSegment, 1)
	c.code.WritePush(ThatVMSegment, 0)
	return nil
}

// subroutineCall: subroutineName '(' expressionList ')' |
// (className | varName) '.' subroutineName '(' expressionList ')'
//
// The leading identifier is already consumed. A variable before the dot makes
// it a method call on that object; any other name is taken as a class.
// Without a dot the call goes to a method of the current object.
func (c *JackCompiler) compileSubroutineCall(name Token) error {
	var (
		function string
		nargs    MachineWord
	)
	if c.peek().isSymbol('.') {
		if _, err := c.advance(); err != nil {
			return err
		}
		subroutine, err := c.compileIdentifier()
		if err != nil {
			return err
		}
		if receiver, err := c.symbols.Lookup(name.terminal); err == nil {
			c.pushSymbol(receiver)
			function = receiver.variableType + "." + subroutine.terminal
			nargs = 1
		} else {
			function = name.terminal + "." + subroutine.terminal
		}
	} else {
		c.code.WritePush(PointerVMSegment, 0)
		function = c.className + "." + name.terminal
		nargs = 1
	}

	if err := c.compileTerminal("("); err != nil {
		return err
	}
	n, err := c.compileExpressionList()
	if err != nil {
		return err
	}
	if err := c.compileTerminal(")"); err != nil {
		return err
	}
	c.code.WriteCall(function, nargs+n)
	return nil
}

// expressionList: (expression (',' expression)*)?
func (c *JackCompiler) compileExpressionList() (MachineWord, error) {
	c.open("expressionList")
	defer c.close("expressionList")

	if c.peek().isSymbol(')') {
		return 0, nil
	}
	var n MachineWord
	for {
		if err := c.compileExpression(); err != nil {
			return n, err
		}
		n++
		if !c.peek().isSymbol(',') {
			return n, nil
		}
		if _, err := c.advance(); err != nil {
			return n, err
		}
	}
}
