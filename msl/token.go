package msl

import "github.com/gogpu/mslc/ir"

// Symbol identifies a token.
type Symbol uint8

const (
	SymEOF Symbol = iota

	// Identifiers and literals
	SymIdent
	SymIntLiteral
	SymFloatLiteral

	// Punctuation
	SymLeftParen    // (
	SymRightParen   // )
	SymLeftBrace    // {
	SymRightBrace   // }
	SymLeftBracket  // [
	SymRightBracket // ]
	SymSemicolon    // ;
	SymComma        // ,
	SymDot          // .
	SymColon        // :

	// Operators
	SymPlus    // +
	SymMinus   // -
	SymStar    // *
	SymSlash   // /
	SymPercent // %
	SymBang    // !
	SymAssign  // =

	// Conditional operators
	SymEqualEqual   // ==
	SymBangEqual    // !=
	SymLess         // <
	SymGreater      // >
	SymLessEqual    // <=
	SymGreaterEqual // >=
	SymAmpAmp       // &&
	SymPipePipe     // ||

	// Type keywords
	SymVoid
	SymBool
	SymInt
	SymInt1
	SymInt2
	SymInt3
	SymInt4
	SymInt2x2
	SymInt3x3
	SymInt4x4
	SymFloat
	SymFloat1
	SymFloat2
	SymFloat3
	SymFloat4
	SymFloat2x2
	SymFloat3x3
	SymFloat4x4
	SymTexture1D
	SymTexture2D
	SymTexture3D

	// Reserved keywords
	SymInput
	SymOutput
	SymCbuffer
	SymIf
	SymElse
	SymWhile
	SymFor
	SymReturn
	SymDiscard
	SymBreak
	SymContinue
	SymTrue
	SymFalse
)

// TokenCategory is the coarse class of a token.
type TokenCategory uint8

const (
	CategoryPunctuation TokenCategory = iota
	CategoryIdentifier
	CategoryLiteral
	CategoryTypeKeyword
	CategoryOperator
	CategoryReservedKeyword
	CategoryConditionalOperator
)

// String returns the category name.
func (c TokenCategory) String() string {
	switch c {
	case CategoryPunctuation:
		return "punctuation"
	case CategoryIdentifier:
		return "identifier"
	case CategoryLiteral:
		return "literal"
	case CategoryTypeKeyword:
		return "type-keyword"
	case CategoryOperator:
		return "operator"
	case CategoryReservedKeyword:
		return "reserved-keyword"
	case CategoryConditionalOperator:
		return "conditional-operator"
	default:
		return "unknown"
	}
}

// fixedToken is one entry of the fixed-spelling token table.
type fixedToken struct {
	text     string
	symbol   Symbol
	category TokenCategory
	typ      ir.Type
}

// fixedTokens lists every token with a fixed spelling. The lexer tries
// them longest first; keywords additionally need an identifier boundary.
var fixedTokens = []fixedToken{
	{"(", SymLeftParen, CategoryPunctuation, ir.TypeVoid},
	{")", SymRightParen, CategoryPunctuation, ir.TypeVoid},
	{"{", SymLeftBrace, CategoryPunctuation, ir.TypeVoid},
	{"}", SymRightBrace, CategoryPunctuation, ir.TypeVoid},
	{"[", SymLeftBracket, CategoryPunctuation, ir.TypeVoid},
	{"]", SymRightBracket, CategoryPunctuation, ir.TypeVoid},
	{";", SymSemicolon, CategoryPunctuation, ir.TypeVoid},
	{",", SymComma, CategoryPunctuation, ir.TypeVoid},
	{".", SymDot, CategoryPunctuation, ir.TypeVoid},
	{":", SymColon, CategoryPunctuation, ir.TypeVoid},

	{"+", SymPlus, CategoryOperator, ir.TypeVoid},
	{"-", SymMinus, CategoryOperator, ir.TypeVoid},
	{"*", SymStar, CategoryOperator, ir.TypeVoid},
	{"/", SymSlash, CategoryOperator, ir.TypeVoid},
	{"%", SymPercent, CategoryOperator, ir.TypeVoid},
	{"!", SymBang, CategoryOperator, ir.TypeVoid},
	{"=", SymAssign, CategoryOperator, ir.TypeVoid},

	{"==", SymEqualEqual, CategoryConditionalOperator, ir.TypeVoid},
	{"!=", SymBangEqual, CategoryConditionalOperator, ir.TypeVoid},
	{"<=", SymLessEqual, CategoryConditionalOperator, ir.TypeVoid},
	{">=", SymGreaterEqual, CategoryConditionalOperator, ir.TypeVoid},
	{"&&", SymAmpAmp, CategoryConditionalOperator, ir.TypeVoid},
	{"||", SymPipePipe, CategoryConditionalOperator, ir.TypeVoid},
	{"<", SymLess, CategoryConditionalOperator, ir.TypeVoid},
	{">", SymGreater, CategoryConditionalOperator, ir.TypeVoid},

	{"void", SymVoid, CategoryTypeKeyword, ir.TypeVoid},
	{"bool", SymBool, CategoryTypeKeyword, ir.TypeBool},
	{"int", SymInt, CategoryTypeKeyword, ir.TypeInt1},
	{"int1", SymInt1, CategoryTypeKeyword, ir.TypeInt1},
	{"int2", SymInt2, CategoryTypeKeyword, ir.TypeInt2},
	{"int3", SymInt3, CategoryTypeKeyword, ir.TypeInt3},
	{"int4", SymInt4, CategoryTypeKeyword, ir.TypeInt4},
	{"int2x2", SymInt2x2, CategoryTypeKeyword, ir.TypeInt2x2},
	{"int3x3", SymInt3x3, CategoryTypeKeyword, ir.TypeInt3x3},
	{"int4x4", SymInt4x4, CategoryTypeKeyword, ir.TypeInt4x4},
	{"float", SymFloat, CategoryTypeKeyword, ir.TypeFloat1},
	{"float1", SymFloat1, CategoryTypeKeyword, ir.TypeFloat1},
	{"float2", SymFloat2, CategoryTypeKeyword, ir.TypeFloat2},
	{"float3", SymFloat3, CategoryTypeKeyword, ir.TypeFloat3},
	{"float4", SymFloat4, CategoryTypeKeyword, ir.TypeFloat4},
	{"float2x2", SymFloat2x2, CategoryTypeKeyword, ir.TypeFloat2x2},
	{"float3x3", SymFloat3x3, CategoryTypeKeyword, ir.TypeFloat3x3},
	{"float4x4", SymFloat4x4, CategoryTypeKeyword, ir.TypeFloat4x4},
	{"texture1d", SymTexture1D, CategoryTypeKeyword, ir.TypeTexture1D},
	{"texture2d", SymTexture2D, CategoryTypeKeyword, ir.TypeTexture2D},
	{"texture3d", SymTexture3D, CategoryTypeKeyword, ir.TypeTexture3D},

	{"input", SymInput, CategoryReservedKeyword, ir.TypeVoid},
	{"output", SymOutput, CategoryReservedKeyword, ir.TypeVoid},
	{"cbuffer", SymCbuffer, CategoryReservedKeyword, ir.TypeVoid},
	{"if", SymIf, CategoryReservedKeyword, ir.TypeVoid},
	{"else", SymElse, CategoryReservedKeyword, ir.TypeVoid},
	{"while", SymWhile, CategoryReservedKeyword, ir.TypeVoid},
	{"for", SymFor, CategoryReservedKeyword, ir.TypeVoid},
	{"return", SymReturn, CategoryReservedKeyword, ir.TypeVoid},
	{"discard", SymDiscard, CategoryReservedKeyword, ir.TypeVoid},
	{"break", SymBreak, CategoryReservedKeyword, ir.TypeVoid},
	{"continue", SymContinue, CategoryReservedKeyword, ir.TypeVoid},
	{"true", SymTrue, CategoryReservedKeyword, ir.TypeVoid},
	{"false", SymFalse, CategoryReservedKeyword, ir.TypeVoid},
}

var symbolText = func() map[Symbol]string {
	m := make(map[Symbol]string, len(fixedTokens))
	for _, ft := range fixedTokens {
		m[ft.symbol] = ft.text
	}
	return m
}()

var symbolType = func() map[Symbol]ir.Type {
	m := make(map[Symbol]ir.Type)
	for _, ft := range fixedTokens {
		if ft.category == CategoryTypeKeyword {
			m[ft.symbol] = ft.typ
		}
	}
	return m
}()

// String returns the spelling of a fixed symbol or a descriptive name.
func (s Symbol) String() string {
	switch s {
	case SymEOF:
		return "EOF"
	case SymIdent:
		return "identifier"
	case SymIntLiteral:
		return "integer literal"
	case SymFloatLiteral:
		return "float literal"
	}
	if text, ok := symbolText[s]; ok {
		return text
	}
	return "unknown"
}

// IsType reports whether s is a type keyword.
func (s Symbol) IsType() bool {
	_, ok := symbolType[s]
	return ok
}

// Type returns the type spelled by a type keyword symbol.
func (s Symbol) Type() ir.Type {
	return symbolType[s]
}

// Token is a lexical token. Attribute holds the identifier name or literal
// text and is empty for fixed symbols.
type Token struct {
	Symbol    Symbol
	Category  TokenCategory
	Attribute string
	Pos       Position
}

// String returns the token attribute or the symbol spelling.
func (t Token) String() string {
	if t.Attribute != "" {
		return t.Attribute
	}
	return t.Symbol.String()
}

// Position is a location in source text. Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}
