package msl

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// expression parses an expression.
func (p *Parser) expression() (NodeID, error) {
	return p.logicalOr()
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (NodeID, error), ops map[Symbol]ir.Op) (NodeID, error) {
	left, err := next()
	if err != nil {
		return InvalidNode, err
	}
	for {
		op, ok := ops[p.peek().Symbol]
		if !ok {
			return left, nil
		}
		tok := p.advance()
		right, err := next()
		if err != nil {
			return InvalidNode, err
		}
		left, err = p.binary(op, left, right, tok)
		if err != nil {
			return InvalidNode, err
		}
	}
}

var (
	orOps         = map[Symbol]ir.Op{SymPipePipe: ir.OpOr}
	andOps        = map[Symbol]ir.Op{SymAmpAmp: ir.OpAnd}
	equalityOps   = map[Symbol]ir.Op{SymEqualEqual: ir.OpEq, SymBangEqual: ir.OpNe}
	comparisonOps = map[Symbol]ir.Op{
		SymLess:         ir.OpLt,
		SymGreater:      ir.OpGt,
		SymLessEqual:    ir.OpLe,
		SymGreaterEqual: ir.OpGe,
	}
	additiveOps       = map[Symbol]ir.Op{SymPlus: ir.OpAdd, SymMinus: ir.OpSub}
	multiplicativeOps = map[Symbol]ir.Op{SymStar: ir.OpMul, SymSlash: ir.OpDiv, SymPercent: ir.OpMod}
)

func (p *Parser) logicalOr() (NodeID, error) {
	return p.binaryLevel(p.logicalAnd, orOps)
}

func (p *Parser) logicalAnd() (NodeID, error) {
	return p.binaryLevel(p.equality, andOps)
}

func (p *Parser) equality() (NodeID, error) {
	return p.binaryLevel(p.comparison, equalityOps)
}

func (p *Parser) comparison() (NodeID, error) {
	return p.binaryLevel(p.additive, comparisonOps)
}

func (p *Parser) additive() (NodeID, error) {
	return p.binaryLevel(p.multiplicative, additiveOps)
}

func (p *Parser) multiplicative() (NodeID, error) {
	return p.binaryLevel(p.unary, multiplicativeOps)
}

func (p *Parser) unary() (NodeID, error) {
	if !p.check(SymMinus) && !p.check(SymBang) {
		return p.postfix()
	}
	tok := p.advance()
	operand, err := p.unary()
	if err != nil {
		return InvalidNode, err
	}
	t := p.typeOf(operand)

	op := ir.OpNeg
	if tok.Symbol == SymBang {
		op = ir.OpNot
		if t != ir.TypeBool {
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "operator ! needs bool, got %s", t)
		}
	} else if !t.IsNumeric() {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "operator - needs a numeric operand, got %s", t)
	}
	return p.add(Node{Kind: NodeUnary, Op: op, Type: t, Children: []NodeID{operand}, Pos: tok.Pos})
}

func (p *Parser) postfix() (NodeID, error) {
	expr, err := p.primary()
	if err != nil {
		return InvalidNode, err
	}
	for {
		switch {
		case p.check(SymDot):
			p.advance()
			nameTok, err := p.expect(SymIdent)
			if err != nil {
				return InvalidNode, err
			}
			expr, err = p.swizzle(expr, nameTok)
			if err != nil {
				return InvalidNode, err
			}
		case p.check(SymLeftBracket):
			tok := p.advance()
			index, err := p.expression()
			if err != nil {
				return InvalidNode, err
			}
			if _, err := p.expect(SymRightBracket); err != nil {
				return InvalidNode, err
			}
			expr, err = p.index(expr, index, tok)
			if err != nil {
				return InvalidNode, err
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) swizzle(base NodeID, nameTok Token) (NodeID, error) {
	bt := p.typeOf(base)
	if !bt.IsVector() {
		return InvalidNode, p.errorf(nameTok, ir.ErrTypeMismatch, "cannot swizzle %s", bt)
	}
	comps, ok := parseSwizzle(nameTok.Attribute)
	if !ok {
		return InvalidNode, p.errorf(nameTok, ir.ErrTypeMismatch, "invalid swizzle .%s", nameTok.Attribute)
	}
	for _, c := range comps {
		if int(c) >= bt.Size() {
			return InvalidNode, p.errorf(nameTok, ir.ErrTypeMismatch, "swizzle .%s out of range for %s", nameTok.Attribute, bt)
		}
	}
	return p.add(Node{
		Kind:     NodeSwizzle,
		Type:     ir.Vector(bt.Scalar(), len(comps)),
		Swizzle:  comps,
		Children: []NodeID{base},
		Pos:      nameTok.Pos,
	})
}

// parseSwizzle maps xyzw or rgba letters to component indices. The two
// sets cannot be mixed.
func parseSwizzle(s string) ([]uint8, bool) {
	if len(s) == 0 || len(s) > 4 {
		return nil, false
	}
	const xyzw, rgba = "xyzw", "rgba"
	set := xyzw
	if strings.IndexByte(rgba, s[0]) >= 0 {
		set = rgba
	}
	comps := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		c := strings.IndexByte(set, s[i])
		if c < 0 {
			return nil, false
		}
		comps[i] = uint8(c)
	}
	return comps, true
}

func (p *Parser) index(base, index NodeID, tok Token) (NodeID, error) {
	bt := p.typeOf(base)
	if !bt.IsVector() && !bt.IsMatrix() {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "cannot index %s", bt)
	}
	if it := p.typeOf(index); it != ir.TypeInt1 {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "index must be int1, got %s", it)
	}
	if n := p.arena.Get(index); n.Kind == NodeIntLit && (n.Int < 0 || int(n.Int) >= bt.Size()) {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "index %d out of range for %s", n.Int, bt)
	}
	return p.add(Node{Kind: NodeIndex, Type: bt.Row(), Children: []NodeID{base, index}, Pos: tok.Pos})
}

func (p *Parser) primary() (NodeID, error) {
	tok := p.peek()

	switch tok.Symbol {
	case SymIntLiteral:
		p.advance()
		v, err := strconv.ParseInt(tok.Attribute, 10, 32)
		if err != nil {
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "integer literal %s does not fit int1", tok.Attribute)
		}
		return p.add(Node{Kind: NodeIntLit, Type: ir.TypeInt1, Int: int32(v), Pos: tok.Pos})

	case SymFloatLiteral:
		p.advance()
		v, err := strconv.ParseFloat(tok.Attribute, 32)
		if err != nil || math.IsInf(v, 0) {
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "float literal %s does not fit float1", tok.Attribute)
		}
		return p.add(Node{Kind: NodeFloatLit, Type: ir.TypeFloat1, Float: float32(v), Pos: tok.Pos})

	case SymTrue, SymFalse:
		p.advance()
		var v int32
		if tok.Symbol == SymTrue {
			v = 1
		}
		return p.add(Node{Kind: NodeBoolLit, Type: ir.TypeBool, Int: v, Pos: tok.Pos})

	case SymInput, SymOutput:
		return p.stageAccess()

	case SymLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return InvalidNode, err
		}
		if _, err := p.expect(SymRightParen); err != nil {
			return InvalidNode, err
		}
		return expr, nil

	case SymIdent:
		if p.peekAt(1).Symbol == SymLeftParen {
			return p.call()
		}
		return p.identifier()
	}

	if tok.Symbol.IsType() {
		return p.constructor()
	}
	return InvalidNode, p.unexpected(tok, "expression")
}

// stageAccess parses input.NAME or output.NAME.
func (p *Parser) stageAccess() (NodeID, error) {
	tok := p.advance()
	if _, err := p.expect(SymDot); err != nil {
		return InvalidNode, err
	}
	nameTok, err := p.expect(SymIdent)
	if err != nil {
		return InvalidNode, err
	}

	kind, vars, cat := NodeInput, p.inputs, ir.CategoryInput
	if tok.Symbol == SymOutput {
		kind, vars, cat = NodeOutput, p.outputs, ir.CategoryOutput
	}
	v, ok := vars[nameTok.Attribute]
	if !ok {
		return InvalidNode, p.errorf(nameTok, ir.ErrUndeclaredIdentifier, "undeclared %s %s", cat, nameTok.Attribute)
	}
	return p.add(Node{Kind: kind, Type: v.Type, Ref: int(v.Index), Pos: tok.Pos})
}

func (p *Parser) identifier() (NodeID, error) {
	tok := p.advance()
	name := tok.Attribute

	if slot, ok := p.lookupLocal(name); ok {
		return p.add(Node{Kind: NodeLocalRef, Type: p.fn.locals[slot], Ref: slot, Pos: tok.Pos})
	}
	if g, ok := p.globals[name]; ok {
		switch g.kind {
		case globalUniform:
			return p.add(Node{Kind: NodeUniform, Type: g.v.Type, Ref: int(g.v.Index), Pos: tok.Pos})
		case globalTexture:
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "texture %s can only be used with sample", name)
		default:
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "%s is not a value", name)
		}
	}
	return InvalidNode, p.errorf(tok, ir.ErrUndeclaredIdentifier, "undeclared identifier %s", name)
}

// arguments parses `( [expr {, expr}] )`.
func (p *Parser) arguments() ([]NodeID, error) {
	if _, err := p.expect(SymLeftParen); err != nil {
		return nil, err
	}
	var args []NodeID
	if !p.check(SymRightParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(SymComma) {
				break
			}
		}
	}
	if _, err := p.expect(SymRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) call() (NodeID, error) {
	nameTok := p.peek()
	name := nameTok.Attribute

	if name == ir.SampleName {
		return p.sample()
	}
	p.advance()

	if idx, ok := p.funcs[name]; ok {
		args, err := p.arguments()
		if err != nil {
			return InvalidNode, err
		}
		fn := &p.unit.Functions[idx]
		if len(args) != len(fn.Params) {
			return InvalidNode, p.errorf(nameTok, ir.ErrTypeMismatch, "%s takes %d arguments, got %d", name, len(fn.Params), len(args))
		}
		for i := range args {
			if args[i], err = p.coerce(args[i], fn.Params[i], nameTok); err != nil {
				return InvalidNode, err
			}
		}
		return p.add(Node{Kind: NodeCall, Type: fn.Return, Ref: idx, Children: args, Pos: nameTok.Pos})
	}

	if in, ok := ir.LookupIntrinsic(name); ok {
		args, err := p.arguments()
		if err != nil {
			return InvalidNode, err
		}
		return p.intrinsic(in, args, nameTok)
	}

	return InvalidNode, p.errorf(nameTok, ir.ErrUndeclaredIdentifier, "undeclared function %s", name)
}

// sample parses sample(texture, coord).
func (p *Parser) sample() (NodeID, error) {
	nameTok := p.advance()
	if _, err := p.expect(SymLeftParen); err != nil {
		return InvalidNode, err
	}
	texTok, err := p.expect(SymIdent)
	if err != nil {
		return InvalidNode, err
	}
	g, ok := p.globals[texTok.Attribute]
	if !ok {
		return InvalidNode, p.errorf(texTok, ir.ErrUndeclaredIdentifier, "undeclared texture %s", texTok.Attribute)
	}
	if g.kind != globalTexture {
		return InvalidNode, p.errorf(texTok, ir.ErrTypeMismatch, "%s is not a texture", texTok.Attribute)
	}
	if _, err := p.expect(SymComma); err != nil {
		return InvalidNode, err
	}
	coord, err := p.expression()
	if err != nil {
		return InvalidNode, err
	}
	if _, err := p.expect(SymRightParen); err != nil {
		return InvalidNode, err
	}
	coord, err = p.coerce(coord, g.v.Type.TextureCoord(), nameTok)
	if err != nil {
		return InvalidNode, err
	}
	return p.add(Node{
		Kind:     NodeSample,
		Type:     ir.TypeFloat4,
		Ref:      int(g.v.Index),
		Children: []NodeID{coord},
		Pos:      nameTok.Pos,
	})
}

func (p *Parser) constructor() (NodeID, error) {
	tok := p.advance()
	t := tok.Symbol.Type()
	if !t.IsValue() {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "cannot construct %s", t)
	}
	args, err := p.arguments()
	if err != nil {
		return InvalidNode, err
	}
	return p.construct(t, args, tok)
}
