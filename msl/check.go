package msl

import "github.com/gogpu/mslc/ir"

// convert wraps id in an explicit conversion to t unless it already has
// that type.
func (p *Parser) convert(id NodeID, t ir.Type) (NodeID, error) {
	n := p.arena.Get(id)
	if n.Type == t {
		return id, nil
	}
	return p.add(Node{Kind: NodeConvert, Type: t, Children: []NodeID{id}, Pos: n.Pos})
}

// coerce checks that id can be used where want is expected, inserting the
// implicit int to float promotion when needed.
func (p *Parser) coerce(id NodeID, want ir.Type, tok Token) (NodeID, error) {
	have := p.typeOf(id)
	if have == want {
		return id, nil
	}
	if have.IsInt() && want.IsFloat() && have.WithScalar(ir.ScalarFloat) == want {
		return p.convert(id, want)
	}
	return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "cannot use %s as %s", have, want)
}

func (p *Parser) requireBool(id NodeID, tok Token) error {
	if t := p.typeOf(id); t != ir.TypeBool {
		return p.errorf(tok, ir.ErrTypeMismatch, "condition must be bool, got %s", t)
	}
	return nil
}

// promote raises int operands to float when the other side is float.
func (p *Parser) promote(a, b NodeID) (NodeID, NodeID, error) {
	at, bt := p.typeOf(a), p.typeOf(b)
	if at.Scalar() == bt.Scalar() {
		return a, b, nil
	}
	var err error
	if at.IsInt() && bt.IsFloat() {
		a, err = p.convert(a, at.WithScalar(ir.ScalarFloat))
	} else if at.IsFloat() && bt.IsInt() {
		b, err = p.convert(b, bt.WithScalar(ir.ScalarFloat))
	}
	return a, b, err
}

func (p *Parser) binary(op ir.Op, left, right NodeID, tok Token) (NodeID, error) {
	lt, rt := p.typeOf(left), p.typeOf(right)
	mismatch := func() (NodeID, error) {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "operator %s cannot combine %s and %s", op.Symbol(), lt, rt)
	}

	var result ir.Type
	switch op {
	case ir.OpAnd, ir.OpOr:
		if lt != ir.TypeBool || rt != ir.TypeBool {
			return mismatch()
		}
		result = ir.TypeBool

	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpGt, ir.OpLe, ir.OpGe:
		if (op == ir.OpEq || op == ir.OpNe) && lt == ir.TypeBool && rt == ir.TypeBool {
			result = ir.TypeBool
			break
		}
		if !lt.IsNumeric() || !rt.IsNumeric() || !lt.IsScalar() || !rt.IsScalar() {
			return mismatch()
		}
		var err error
		if left, right, err = p.promote(left, right); err != nil {
			return InvalidNode, err
		}
		result = ir.TypeBool

	default:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return mismatch()
		}
		if op == ir.OpMod && (!lt.IsInt() || !rt.IsInt()) {
			return mismatch()
		}
		var err error
		if left, right, err = p.promote(left, right); err != nil {
			return InvalidNode, err
		}
		a, b := p.typeOf(left), p.typeOf(right)
		switch {
		case a == b:
			result = a
		case a.IsScalar():
			result = b
		case b.IsScalar():
			result = a
		default:
			return mismatch()
		}
	}

	return p.add(Node{Kind: NodeBinary, Op: op, Type: result, Children: []NodeID{left, right}, Pos: tok.Pos})
}

// construct type-checks a constructor call. Scalar constructors are
// conversions; vector and matrix constructors convert each argument to
// the element kind.
func (p *Parser) construct(t ir.Type, args []NodeID, tok Token) (NodeID, error) {
	bad := func(format string, a ...any) (NodeID, error) {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, format, a...)
	}
	if len(args) == 0 {
		return bad("%s constructor needs arguments", t)
	}

	if t.IsScalar() {
		if len(args) != 1 || !p.typeOf(args[0]).IsScalar() {
			return bad("%s constructor takes one scalar", t)
		}
		return p.convert(args[0], t)
	}

	elem := t.Scalar()
	total, allScalar, allRows := 0, true, true
	for i, arg := range args {
		at := p.typeOf(arg)
		if !at.IsValue() || at.IsMatrix() {
			return bad("cannot use %s in a %s constructor", at, t)
		}
		if !at.IsScalar() {
			allScalar = false
		}
		if at.Size() != t.Size() || at.IsScalar() {
			allRows = false
		}
		total += at.Size()

		var err error
		if args[i], err = p.convert(arg, at.WithScalar(elem)); err != nil {
			return InvalidNode, err
		}
	}

	switch {
	case t.IsVector():
		if len(args) == 1 && allScalar {
			break
		}
		if total != t.Size() {
			return bad("%s constructor needs %d components, got %d", t, t.Size(), total)
		}
	case t.IsMatrix():
		n := t.Size()
		if !(allScalar && len(args) == n*n) && !(allRows && len(args) == n) {
			return bad("%s constructor needs %d scalars or %d vectors of size %d", t, n*n, n, n)
		}
	}
	return p.add(Node{Kind: NodeConstruct, Type: t, Children: args, Pos: tok.Pos})
}

// unify promotes arguments to one common scalar or vector type. With
// float set, int arguments are always promoted to float.
func (p *Parser) unify(args []NodeID, float bool, tok Token, name string) (ir.Type, error) {
	kind := ir.ScalarInt
	if float {
		kind = ir.ScalarFloat
	}
	size := 0
	for _, arg := range args {
		at := p.typeOf(arg)
		if !at.IsNumeric() || at.IsMatrix() {
			return ir.TypeVoid, p.errorf(tok, ir.ErrTypeMismatch, "%s does not accept %s", name, at)
		}
		if size != 0 && at.Size() != size {
			return ir.TypeVoid, p.errorf(tok, ir.ErrTypeMismatch, "%s arguments must have the same shape", name)
		}
		size = at.Size()
		if at.IsFloat() {
			kind = ir.ScalarFloat
		}
	}
	t := ir.Vector(kind, size)
	for i, arg := range args {
		var err error
		if args[i], err = p.convert(arg, t); err != nil {
			return ir.TypeVoid, err
		}
	}
	return t, nil
}

func (p *Parser) intrinsic(in ir.Intrinsic, args []NodeID, tok Token) (NodeID, error) {
	info := in.Info()
	if len(args) != info.Arity {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "%s takes %d arguments, got %d", info.Name, info.Arity, len(args))
	}
	bad := func(format string, a ...any) (NodeID, error) {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, format, a...)
	}

	var (
		result ir.Type
		err    error
	)
	switch in {
	case ir.IntrinsicAbs:
		result, err = p.unify(args, false, tok, info.Name)

	case ir.IntrinsicMin, ir.IntrinsicMax, ir.IntrinsicClamp:
		result, err = p.unify(args, false, tok, info.Name)

	case ir.IntrinsicNormalize, ir.IntrinsicReflect:
		result, err = p.unify(args, true, tok, info.Name)
		if err == nil && !result.IsVector() {
			return bad("%s needs vector arguments, got %s", info.Name, result)
		}

	case ir.IntrinsicLength:
		if _, err = p.unify(args, true, tok, info.Name); err == nil {
			result = ir.TypeFloat1
		}

	case ir.IntrinsicDot, ir.IntrinsicDistance:
		var t ir.Type
		if t, err = p.unify(args, true, tok, info.Name); err == nil {
			if !t.IsVector() {
				return bad("%s needs vector arguments, got %s", info.Name, t)
			}
			result = ir.TypeFloat1
		}

	case ir.IntrinsicCross:
		result, err = p.unify(args, true, tok, info.Name)
		if err == nil && result != ir.TypeFloat3 {
			return bad("cross needs float3 arguments, got %s", result)
		}

	case ir.IntrinsicLerp:
		// The weight may be a scalar.
		if result, err = p.unify(args[:2], true, tok, info.Name); err == nil {
			weight := ir.TypeFloat1
			if p.typeOf(args[2]).Size() != 1 {
				weight = result
			}
			args[2], err = p.coerce(args[2], weight, tok)
		}

	case ir.IntrinsicMul:
		return p.mul(args, tok)

	default:
		// sin .. saturate, pow, atan2, step, smoothstep: float genType.
		result, err = p.unify(args, true, tok, info.Name)
	}
	if err != nil {
		return InvalidNode, err
	}

	return p.add(Node{Kind: NodeIntrinsic, Type: result, Ref: int(in), Children: args, Pos: tok.Pos})
}

// mul type-checks matrix products: matrix*matrix, matrix*vector and
// vector*matrix of the same dimension.
func (p *Parser) mul(args []NodeID, tok Token) (NodeID, error) {
	for i, arg := range args {
		at := p.typeOf(arg)
		if !at.IsNumeric() || at.IsScalar() {
			return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "mul does not accept %s", at)
		}
		var err error
		if args[i], err = p.convert(arg, at.WithScalar(ir.ScalarFloat)); err != nil {
			return InvalidNode, err
		}
	}
	a, b := p.typeOf(args[0]), p.typeOf(args[1])
	if a.Size() != b.Size() || (!a.IsMatrix() && !b.IsMatrix()) {
		return InvalidNode, p.errorf(tok, ir.ErrTypeMismatch, "mul cannot combine %s and %s", a, b)
	}
	result := a
	if a.IsMatrix() && !b.IsMatrix() {
		result = b
	}
	return p.add(Node{Kind: NodeIntrinsic, Type: result, Ref: int(ir.IntrinsicMul), Children: args, Pos: tok.Pos})
}

// returns reports whether every path through stmt ends in a return.
// Loop bodies are not counted since the loop may run zero times.
func (p *Parser) returns(stmt NodeID) bool {
	n := p.arena.Get(stmt)
	switch n.Kind {
	case NodeReturn:
		return true
	case NodeBlock:
		for _, child := range n.Children {
			if p.returns(child) {
				return true
			}
		}
	case NodeIf:
		els := n.Children[2]
		return els != InvalidNode && p.returns(n.Children[1]) && p.returns(els)
	}
	return false
}
