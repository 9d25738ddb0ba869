package msl

import (
	"sort"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// MaxAttributeLength is the longest identifier or literal the lexer accepts.
const MaxAttributeLength = 64

// fixedByFirst indexes fixedTokens by first byte, longest spelling first.
var fixedByFirst = func() [256][]fixedToken {
	var idx [256][]fixedToken
	for _, ft := range fixedTokens {
		c := ft.text[0]
		idx[c] = append(idx[c], ft)
	}
	for i := range idx {
		sort.SliceStable(idx[i], func(a, b int) bool {
			return len(idx[i][a].text) > len(idx[i][b].text)
		})
	}
	return idx
}()

// Lexer tokenizes MSL source into a caller-provided token buffer.
type Lexer struct {
	source string
	pos    int
	line   int
	column int

	start       int
	startLine   int
	startColumn int

	tokens []Token
	count  int
}

// NewLexer creates a lexer that writes into buf. A NUL byte in source
// terminates it.
func NewLexer(source string, buf []Token) *Lexer {
	if i := strings.IndexByte(source, 0); i >= 0 {
		source = source[:i]
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: buf,
	}
}

// Tokenize fills the buffer and returns the number of tokens written,
// including the trailing EOF token.
func (l *Lexer) Tokenize() (int, error) {
	if len(l.tokens) == 0 {
		return 0, ir.Errorf(ir.PhaseLex, ir.ErrInvalidArguments, "token buffer has no capacity")
	}
	for {
		if err := l.skipTrivia(); err != nil {
			return 0, err
		}
		l.start = l.pos
		l.startLine = l.line
		l.startColumn = l.column
		if l.isAtEnd() {
			break
		}
		if err := l.scanToken(); err != nil {
			return 0, err
		}
	}
	if err := l.addToken(SymEOF, CategoryPunctuation, ""); err != nil {
		return 0, err
	}
	return l.count, nil
}

// TokenizeInto tokenizes source into buf and returns the token count.
func TokenizeInto(source string, buf []Token) (int, error) {
	return NewLexer(source, buf).Tokenize()
}

// Tokenize tokenizes source with room for at most maxTokens tokens.
func Tokenize(source string, maxTokens int) ([]Token, error) {
	if maxTokens <= 0 {
		return nil, ir.Errorf(ir.PhaseLex, ir.ErrInvalidArguments, "token capacity must be positive, got %d", maxTokens)
	}
	buf := make([]Token, maxTokens)
	n, err := TokenizeInto(source, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (l *Lexer) scanToken() error {
	c := l.peek()

	if isDigit(c) {
		return l.number()
	}

	for _, ft := range fixedByFirst[c] {
		if !strings.HasPrefix(l.source[l.pos:], ft.text) {
			continue
		}
		end := l.pos + len(ft.text)
		if isIdentStart(ft.text[0]) && end < len(l.source) && isIdentPart(l.source[end]) {
			continue
		}
		l.advanceN(len(ft.text))
		return l.addToken(ft.symbol, ft.category, "")
	}

	if isIdentStart(c) {
		return l.identifier()
	}

	return l.errorf(ir.ErrUnknownToken, "unknown token")
}

// skipTrivia skips whitespace and comments. A block comment must be
// closed before the end of the source.
func (l *Lexer) skipTrivia() error {
	for !l.isAtEnd() {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			l.advance()
		case c == '/' && l.peekNext() == '/':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekNext() == '*':
			l.start = l.pos
			l.startLine = l.line
			l.startColumn = l.column
			l.advanceN(2)
			for !l.isAtEnd() && !(l.peek() == '*' && l.peekNext() == '/') {
				l.advance()
			}
			if l.isAtEnd() {
				return l.errorf(ir.ErrUnexpectedEOF, "unterminated block comment")
			}
			l.advanceN(2)
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) number() error {
	for isDigit(l.peek()) {
		l.advance()
	}

	sym := SymIntLiteral
	// One '.' makes a float; a second '.' starts a new token.
	if l.peek() == '.' {
		sym = SymFloatLiteral
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.source[l.start:l.pos]

	if sym == SymFloatLiteral && l.peek() == 'f' {
		l.advance()
	}

	if len(text) > MaxAttributeLength {
		return l.errorf(ir.ErrAttributeTooBig, "literal longer than %d bytes", MaxAttributeLength)
	}
	return l.addToken(sym, CategoryLiteral, text)
}

func (l *Lexer) identifier() error {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.pos]
	if len(text) > MaxAttributeLength {
		return l.errorf(ir.ErrAttributeTooBig, "identifier longer than %d bytes", MaxAttributeLength)
	}
	return l.addToken(SymIdent, CategoryIdentifier, text)
}

func (l *Lexer) addToken(sym Symbol, cat TokenCategory, attr string) error {
	if l.count >= len(l.tokens) {
		return l.errorf(ir.ErrTokenOverflow, "more than %d tokens", len(l.tokens))
	}
	l.tokens[l.count] = Token{
		Symbol:    sym,
		Category:  cat,
		Attribute: attr,
		Pos: Position{
			Offset: l.start,
			Line:   l.startLine,
			Column: l.startColumn,
		},
	}
	l.count++
	return nil
}

func (l *Lexer) errorf(kind ir.ErrorKind, format string, args ...any) error {
	frag := l.source[l.start:]
	if i := strings.IndexAny(frag, " \t\r\n;"); i > 0 {
		frag = frag[:i]
	}
	return ir.Errorf(ir.PhaseLex, kind, format, args...).At(l.startLine, l.startColumn, frag)
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
