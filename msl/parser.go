package msl

import (
	"fmt"
	"strconv"

	"github.com/gogpu/mslc/ir"
)

// Parser turns a token stream into a type-checked ShaderUnit.
type Parser struct {
	tokens  []Token
	current int
	kind    ir.ShaderKind
	arena   *Arena
	unit    *ShaderUnit

	inputs  map[string]ir.Variable
	outputs map[string]ir.Variable
	globals map[string]global
	indices [4]map[uint16]string
	funcs   map[string]int

	fn        *funcState
	loopDepth int
}

type globalKind uint8

const (
	globalTexture globalKind = iota
	globalUniform
	globalBuffer
	globalFunction
)

type global struct {
	kind globalKind
	v    ir.Variable
}

// funcState tracks the function being parsed.
type funcState struct {
	ret    ir.Type
	locals []ir.Type
	scopes []map[string]int
}

// maxLocals is the number of slots addressable by a 16-bit operand.
const maxLocals = 1 << 16

// NewParser creates a parser over tokens, which must end with an EOF token.
func NewParser(tokens []Token, kind ir.ShaderKind, arena *Arena) *Parser {
	p := &Parser{
		tokens:  tokens,
		kind:    kind,
		arena:   arena,
		inputs:  make(map[string]ir.Variable),
		outputs: make(map[string]ir.Variable),
		globals: make(map[string]global),
		funcs:   make(map[string]int),
		unit: &ShaderUnit{
			Kind:  kind,
			Major: ir.VersionMajor,
			Minor: ir.VersionMinor,
			Nodes: arena,
		},
	}
	for i := range p.indices {
		p.indices[i] = make(map[uint16]string)
	}
	return p
}

// Parse parses tokens into a shader unit whose AST holds at most maxNodes
// nodes.
func Parse(tokens []Token, kind ir.ShaderKind, maxNodes int) (*ShaderUnit, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Symbol != SymEOF {
		return nil, ir.Errorf(ir.PhaseParse, ir.ErrInvalidArguments, "token stream must end with EOF")
	}
	if maxNodes <= 0 {
		return nil, ir.Errorf(ir.PhaseParse, ir.ErrInvalidArguments, "node capacity must be positive, got %d", maxNodes)
	}
	if !kind.IsValid() {
		return nil, ir.Errorf(ir.PhaseParse, ir.ErrInvalidArguments, "invalid shader kind %s", kind)
	}
	return NewParser(tokens, kind, NewArena(maxNodes)).Parse()
}

// Parse parses the whole program.
func (p *Parser) Parse() (*ShaderUnit, error) {
	for p.isInterfaceStart() {
		if err := p.interfaceDecl(); err != nil {
			return nil, err
		}
	}

	for !p.isAtEnd() {
		if p.isInterfaceStart() {
			return nil, p.errorf(p.peek(), ir.ErrUnexpectedToken, "interface declarations must precede functions")
		}
		if err := p.function(); err != nil {
			return nil, err
		}
	}

	entry, ok := p.funcs["main"]
	if !ok {
		return nil, p.errorf(p.peek(), ir.ErrUndeclaredIdentifier, "entry point main is not defined")
	}
	p.unit.Entry = entry

	if errs := ir.ValidateInterface(p.kind, &p.unit.Interface); len(errs) > 0 {
		return nil, ir.AsError(ir.PhaseParse, errs)
	}
	return p.unit, nil
}

func (p *Parser) isInterfaceStart() bool {
	switch tok := p.peek(); {
	case tok.Symbol == SymInput, tok.Symbol == SymOutput, tok.Symbol == SymCbuffer:
		return true
	case tok.Symbol.IsType():
		return tok.Symbol.Type().IsTexture()
	}
	return false
}

// Interface declarations

func (p *Parser) interfaceDecl() error {
	switch {
	case p.match(SymInput):
		return p.stageBlock(ir.CategoryInput)
	case p.match(SymOutput):
		return p.stageBlock(ir.CategoryOutput)
	case p.match(SymCbuffer):
		return p.cbuffer()
	default:
		return p.textureDecl()
	}
}

func (p *Parser) stageBlock(cat ir.Category) error {
	if _, err := p.expect(SymLeftBrace); err != nil {
		return err
	}
	for !p.check(SymRightBrace) {
		v, err := p.member(cat)
		if err != nil {
			return err
		}
		if cat == ir.CategoryInput {
			p.unit.Interface.Inputs = append(p.unit.Interface.Inputs, v)
		} else {
			p.unit.Interface.Outputs = append(p.unit.Interface.Outputs, v)
		}
	}
	p.advance()
	p.match(SymSemicolon)
	return nil
}

func (p *Parser) cbuffer() error {
	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return err
	}
	if err := p.claimGlobal(nameTok, global{kind: globalBuffer}); err != nil {
		return err
	}
	if _, err := p.expect(SymLeftBrace); err != nil {
		return err
	}
	cb := ir.ConstantBuffer{Name: nameTok.Attribute}
	for !p.check(SymRightBrace) {
		v, err := p.member(ir.CategoryUniform)
		if err != nil {
			return err
		}
		cb.Members = append(cb.Members, v)
	}
	p.advance()
	p.match(SymSemicolon)
	p.unit.Interface.ConstantBuffers = append(p.unit.Interface.ConstantBuffers, cb)
	return nil
}

func (p *Parser) textureDecl() error {
	typeTok := p.advance()
	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return err
	}
	index, err := p.binding()
	if err != nil {
		return err
	}
	v := ir.Variable{Name: nameTok.Attribute, Index: index, Type: typeTok.Symbol.Type()}
	if err := p.declareVar(ir.CategoryTexture, v, nameTok); err != nil {
		return err
	}
	p.unit.Interface.Textures = append(p.unit.Interface.Textures, v)
	return nil
}

// member parses `type name : index ;`.
func (p *Parser) member(cat ir.Category) (ir.Variable, error) {
	t, _, err := p.valueType()
	if err != nil {
		return ir.Variable{}, err
	}
	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return ir.Variable{}, err
	}
	index, err := p.binding()
	if err != nil {
		return ir.Variable{}, err
	}
	v := ir.Variable{Name: nameTok.Attribute, Index: index, Type: t}
	if err := p.declareVar(cat, v, nameTok); err != nil {
		return ir.Variable{}, err
	}
	return v, nil
}

// binding parses `: index ;`.
func (p *Parser) binding() (uint16, error) {
	if _, err := p.expect(SymColon); err != nil {
		return 0, err
	}
	tok, err := p.expect(SymIntLiteral)
	if err != nil {
		return 0, err
	}
	index, perr := strconv.ParseUint(tok.Attribute, 10, 16)
	if perr != nil {
		return 0, p.errorf(tok, ir.ErrUnexpectedToken, "index %s out of range", tok.Attribute)
	}
	if _, err := p.expect(SymSemicolon); err != nil {
		return 0, err
	}
	return uint16(index), nil
}

func (p *Parser) declareVar(cat ir.Category, v ir.Variable, tok Token) error {
	switch cat {
	case ir.CategoryInput, ir.CategoryOutput:
		names := p.inputs
		if cat == ir.CategoryOutput {
			names = p.outputs
		}
		if _, dup := names[v.Name]; dup {
			return p.errorf(tok, ir.ErrRedeclaration, "%s %s already declared", cat, v.Name)
		}
		names[v.Name] = v
	case ir.CategoryTexture:
		if err := p.claimGlobal(tok, global{kind: globalTexture, v: v}); err != nil {
			return err
		}
	case ir.CategoryUniform:
		if err := p.claimGlobal(tok, global{kind: globalUniform, v: v}); err != nil {
			return err
		}
	}

	if prev, dup := p.indices[cat][v.Index]; dup {
		return p.errorf(tok, ir.ErrRedeclaration, "%s index %d already used by %s", cat, v.Index, prev)
	}
	p.indices[cat][v.Index] = v.Name

	if ir.IsPosition(p.kind, cat, v) && v.Type != ir.TypeFloat4 {
		return p.errorf(tok, ir.ErrTypeMismatch, "%s %d of a %s shader is the position and must be float4", cat, v.Index, p.kind)
	}
	return nil
}

func (p *Parser) claimGlobal(tok Token, g global) error {
	name := tok.Attribute
	if _, dup := p.globals[name]; dup {
		return p.errorf(tok, ir.ErrRedeclaration, "%s already declared", name)
	}
	if _, ok := ir.LookupIntrinsic(name); ok || name == ir.SampleName {
		return p.errorf(tok, ir.ErrRedeclaration, "%s is a built-in function", name)
	}
	p.globals[name] = g
	return nil
}

// Functions

func (p *Parser) function() error {
	retTok := p.peek()
	if !retTok.Symbol.IsType() {
		return p.unexpected(retTok, "function or interface declaration")
	}
	ret := retTok.Symbol.Type()
	if ret.IsTexture() {
		return p.errorf(retTok, ir.ErrTypeMismatch, "function cannot return %s", ret)
	}
	p.advance()

	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return err
	}
	name := nameTok.Attribute
	if _, dup := p.funcs[name]; dup {
		return p.errorf(nameTok, ir.ErrRedeclaration, "function %s already defined", name)
	}
	if err := p.claimGlobal(nameTok, global{kind: globalFunction}); err != nil {
		return err
	}

	p.fn = &funcState{ret: ret, scopes: []map[string]int{{}}}
	defer func() { p.fn = nil }()

	if _, err := p.expect(SymLeftParen); err != nil {
		return err
	}
	var params []ir.Type
	if !p.check(SymRightParen) {
		for {
			t, _, err := p.valueType()
			if err != nil {
				return err
			}
			paramTok, err := p.expect(SymIdent)
			if err != nil {
				return err
			}
			if _, err := p.declareLocal(paramTok, t); err != nil {
				return err
			}
			params = append(params, t)
			if !p.match(SymComma) {
				break
			}
		}
	}
	if _, err := p.expect(SymRightParen); err != nil {
		return err
	}

	entry := name == "main"
	if entry && (ret != ir.TypeVoid || len(params) > 0) {
		return p.errorf(nameTok, ir.ErrTypeMismatch, "entry point main must return void and take no parameters")
	}

	body, err := p.block()
	if err != nil {
		return err
	}
	if ret != ir.TypeVoid && !p.returns(body) {
		return p.errorf(nameTok, ir.ErrTypeMismatch, "function %s does not return %s on every path", name, ret)
	}

	p.unit.Functions = append(p.unit.Functions, Function{
		Name:   name,
		Return: ret,
		Params: params,
		Locals: p.fn.locals,
		Body:   body,
		Entry:  entry,
		Pos:    retTok.Pos,
	})
	// Registered after the body so a function cannot call itself.
	p.funcs[name] = len(p.unit.Functions) - 1
	return nil
}

func (p *Parser) declareLocal(tok Token, t ir.Type) (int, error) {
	scope := p.fn.scopes[len(p.fn.scopes)-1]
	if _, dup := scope[tok.Attribute]; dup {
		return 0, p.errorf(tok, ir.ErrRedeclaration, "%s already declared in this scope", tok.Attribute)
	}
	if len(p.fn.locals) >= maxLocals {
		return 0, p.errorf(tok, ir.ErrNodeOverflow, "more than %d locals", maxLocals)
	}
	slot := len(p.fn.locals)
	p.fn.locals = append(p.fn.locals, t)
	scope[tok.Attribute] = slot
	return slot, nil
}

func (p *Parser) lookupLocal(name string) (int, bool) {
	if p.fn == nil {
		return 0, false
	}
	for i := len(p.fn.scopes) - 1; i >= 0; i-- {
		if slot, ok := p.fn.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (p *Parser) pushScope() { p.fn.scopes = append(p.fn.scopes, map[string]int{}) }
func (p *Parser) popScope()  { p.fn.scopes = p.fn.scopes[:len(p.fn.scopes)-1] }

// Statements

func (p *Parser) block() (NodeID, error) {
	open, err := p.expect(SymLeftBrace)
	if err != nil {
		return InvalidNode, err
	}
	p.pushScope()
	defer p.popScope()

	var stmts []NodeID
	for !p.check(SymRightBrace) {
		if p.isAtEnd() {
			return InvalidNode, p.unexpected(p.peek(), "}")
		}
		stmt, err := p.statement()
		if err != nil {
			return InvalidNode, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	return p.add(Node{Kind: NodeBlock, Children: stmts, Pos: open.Pos})
}

func (p *Parser) statement() (NodeID, error) {
	tok := p.peek()
	switch tok.Symbol {
	case SymLeftBrace:
		return p.block()
	case SymIf:
		return p.ifStmt()
	case SymWhile:
		return p.whileStmt()
	case SymFor:
		return p.forStmt()
	case SymReturn:
		return p.returnStmt()
	case SymDiscard:
		if p.kind != ir.KindPixel {
			return InvalidNode, p.errorf(tok, ir.ErrUnexpectedToken, "discard is only allowed in pixel shaders")
		}
		return p.jump(NodeDiscard)
	case SymBreak:
		if p.loopDepth == 0 {
			return InvalidNode, p.errorf(tok, ir.ErrUnexpectedToken, "break outside a loop")
		}
		return p.jump(NodeBreak)
	case SymContinue:
		if p.loopDepth == 0 {
			return InvalidNode, p.errorf(tok, ir.ErrUnexpectedToken, "continue outside a loop")
		}
		return p.jump(NodeContinue)
	}

	var (
		stmt NodeID
		err  error
	)
	if p.isLocalDecl() {
		stmt, err = p.localDecl()
	} else {
		stmt, err = p.exprOrAssign()
	}
	if err != nil {
		return InvalidNode, err
	}
	if _, err := p.expect(SymSemicolon); err != nil {
		return InvalidNode, err
	}
	return stmt, nil
}

func (p *Parser) jump(kind NodeKind) (NodeID, error) {
	tok := p.advance()
	if _, err := p.expect(SymSemicolon); err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: kind, Pos: tok.Pos})
}

func (p *Parser) isLocalDecl() bool {
	return p.peek().Symbol.IsType() && p.peekAt(1).Symbol == SymIdent
}

// localDecl parses `type name [= expr]` without the trailing semicolon.
func (p *Parser) localDecl() (NodeID, error) {
	t, typeTok, err := p.valueType()
	if err != nil {
		return InvalidNode, err
	}
	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return InvalidNode, err
	}

	var children []NodeID
	if p.match(SymAssign) {
		init, err := p.expression()
		if err != nil {
			return InvalidNode, err
		}
		init, err = p.coerce(init, t, nameTok)
		if err != nil {
			return InvalidNode, err
		}
		children = append(children, init)
	}

	// Declared after the initializer, which still sees outer names.
	slot, err := p.declareLocal(nameTok, t)
	if err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: NodeLocal, Type: t, Ref: slot, Children: children, Pos: typeTok.Pos})
}

func (p *Parser) ifStmt() (NodeID, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return InvalidNode, err
	}
	then, err := p.statement()
	if err != nil {
		return InvalidNode, err
	}
	els := InvalidNode
	if p.match(SymElse) {
		els, err = p.statement()
		if err != nil {
			return InvalidNode, err
		}
	}
	return p.add(Node{Kind: NodeIf, Children: []NodeID{cond, then, els}, Pos: tok.Pos})
}

func (p *Parser) whileStmt() (NodeID, error) {
	tok := p.advance()
	cond, err := p.condition()
	if err != nil {
		return InvalidNode, err
	}
	body, err := p.loopBody()
	if err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: NodeWhile, Children: []NodeID{cond, body}, Pos: tok.Pos})
}

func (p *Parser) forStmt() (NodeID, error) {
	tok := p.advance()
	if _, err := p.expect(SymLeftParen); err != nil {
		return InvalidNode, err
	}
	p.pushScope()
	defer p.popScope()

	init, cond, step := InvalidNode, InvalidNode, InvalidNode
	var err error

	if !p.check(SymSemicolon) {
		if p.isLocalDecl() {
			init, err = p.localDecl()
		} else {
			init, err = p.exprOrAssign()
		}
		if err != nil {
			return InvalidNode, err
		}
	}
	if _, err := p.expect(SymSemicolon); err != nil {
		return InvalidNode, err
	}

	if !p.check(SymSemicolon) {
		condTok := p.peek()
		cond, err = p.expression()
		if err != nil {
			return InvalidNode, err
		}
		if err := p.requireBool(cond, condTok); err != nil {
			return InvalidNode, err
		}
	}
	if _, err := p.expect(SymSemicolon); err != nil {
		return InvalidNode, err
	}

	if !p.check(SymRightParen) {
		step, err = p.exprOrAssign()
		if err != nil {
			return InvalidNode, err
		}
	}
	if _, err := p.expect(SymRightParen); err != nil {
		return InvalidNode, err
	}

	body, err := p.loopBody()
	if err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: NodeFor, Children: []NodeID{init, cond, step, body}, Pos: tok.Pos})
}

func (p *Parser) loopBody() (NodeID, error) {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.statement()
}

// condition parses a parenthesized boolean expression.
func (p *Parser) condition() (NodeID, error) {
	if _, err := p.expect(SymLeftParen); err != nil {
		return InvalidNode, err
	}
	tok := p.peek()
	cond, err := p.expression()
	if err != nil {
		return InvalidNode, err
	}
	if err := p.requireBool(cond, tok); err != nil {
		return InvalidNode, err
	}
	if _, err := p.expect(SymRightParen); err != nil {
		return InvalidNode, err
	}
	return cond, nil
}

func (p *Parser) returnStmt() (NodeID, error) {
	tok := p.advance()
	if p.match(SymSemicolon) {
		if p.fn.ret != ir.TypeVoid {
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "missing return value of type %s", p.fn.ret)
		}
		return p.add(Node{Kind: NodeReturn, Pos: tok.Pos})
	}

	value, err := p.expression()
	if err != nil {
		return InvalidNode, err
	}
	if p.fn.ret == ir.TypeVoid {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "void function cannot return a value")
	}
	value, err = p.coerce(value, p.fn.ret, tok)
	if err != nil {
		return InvalidNode, err
	}
	if _, err := p.expect(SymSemicolon); err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: NodeReturn, Type: p.fn.ret, Children: []NodeID{value}, Pos: tok.Pos})
}

// exprOrAssign parses an assignment or an expression statement without
// the trailing semicolon.
func (p *Parser) exprOrAssign() (NodeID, error) {
	tok := p.peek()
	target, err := p.expression()
	if err != nil {
		return InvalidNode, err
	}
	if !p.check(SymAssign) {
		return p.add(Node{Kind: NodeExprStmt, Children: []NodeID{target}, Pos: tok.Pos})
	}

	eq := p.advance()
	if err := p.checkAssignable(target, eq); err != nil {
		return InvalidNode, err
	}
	value, err := p.expression()
	if err != nil {
		return InvalidNode, err
	}
	t := p.typeOf(target)
	value, err = p.coerce(value, t, eq)
	if err != nil {
		return InvalidNode, err
	}
	return p.add(Node{Kind: NodeAssign, Type: t, Children: []NodeID{target, value}, Pos: tok.Pos})
}

func (p *Parser) checkAssignable(id NodeID, tok Token) error {
	n := p.arena.Get(id)
	switch n.Kind {
	case NodeOutput, NodeLocalRef:
		return nil
	case NodeSwizzle:
		var seen [4]bool
		for _, c := range n.Swizzle {
			if seen[c] {
				return p.errorf(tok, ir.ErrTypeMismatch, "cannot assign to a swizzle with repeated components")
			}
			seen[c] = true
		}
		return p.checkAssignable(n.Children[0], tok)
	case NodeIndex:
		return p.checkAssignable(n.Children[0], tok)
	case NodeInput:
		return p.errorf(tok, ir.ErrTypeMismatch, "inputs are read-only")
	case NodeUniform:
		return p.errorf(tok, ir.ErrTypeMismatch, "constant buffer members are read-only")
	}
	return p.errorf(tok, ir.ErrTypeMismatch, "expression is not assignable")
}

// Helpers

func (p *Parser) valueType() (ir.Type, Token, error) {
	tok := p.peek()
	if !tok.Symbol.IsType() {
		return ir.TypeVoid, tok, p.unexpected(tok, "type")
	}
	t := tok.Symbol.Type()
	if !t.IsValue() {
		return ir.TypeVoid, tok, p.errorf(tok, ir.ErrTypeMismatch, "%s is not a value type", t)
	}
	p.advance()
	return t, tok, nil
}

func (p *Parser) add(n Node) (NodeID, error) {
	return p.arena.Add(n)
}

func (p *Parser) typeOf(id NodeID) ir.Type {
	return p.arena.Get(id).Type
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Symbol == SymEOF
}

func (p *Parser) check(sym Symbol) bool {
	return p.peek().Symbol == sym
}

func (p *Parser) match(sym Symbol) bool {
	if p.check(sym) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(sym Symbol) (Token, error) {
	if p.check(sym) {
		return p.advance(), nil
	}
	return p.peek(), p.unexpected(p.peek(), sym.String())
}

func (p *Parser) unexpected(tok Token, expected string) error {
	if tok.Symbol == SymEOF {
		return p.errorf(tok, ir.ErrUnexpectedEOF, "unexpected end of input, expected %s", expected)
	}
	return p.errorf(tok, ir.ErrUnexpectedToken, "unexpected %s, expected %s", describe(tok), expected)
}

func (p *Parser) errorf(tok Token, kind ir.ErrorKind, format string, args ...any) error {
	frag := ""
	if tok.Symbol != SymEOF {
		frag = tok.String()
	}
	return ir.Errorf(ir.PhaseParse, kind, format, args...).At(tok.Pos.Line, tok.Pos.Column, frag)
}

func describe(tok Token) string {
	switch tok.Symbol {
	case SymIdent:
		return fmt.Sprintf("identifier %s", tok.Attribute)
	case SymIntLiteral, SymFloatLiteral:
		return fmt.Sprintf("literal %s", tok.Attribute)
	}
	return fmt.Sprintf("%q", tok.Symbol.String())
}
