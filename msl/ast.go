package msl

import "github.com/gogpu/mslc/ir"

// NodeID addresses a node in an Arena.
type NodeID int32

// InvalidNode marks an absent optional child.
const InvalidNode NodeID = -1

// NodeKind is the kind of an AST node.
type NodeKind uint8

const (
	// Statements
	NodeBlock NodeKind = iota
	NodeLocal          // Ref = slot; Children = [init] or []
	NodeAssign         // Children = [target, value]
	NodeExprStmt       // Children = [expr]
	NodeIf             // Children = [cond, then, else|InvalidNode]
	NodeWhile          // Children = [cond, body]
	NodeFor            // Children = [init, cond, step, body], absent parts InvalidNode
	NodeReturn         // Children = [value] or []
	NodeDiscard
	NodeBreak
	NodeContinue

	// Expressions
	NodeIntLit   // Int
	NodeFloatLit // Float
	NodeBoolLit  // Int 0 or 1
	NodeInput    // Ref = interface index
	NodeOutput   // Ref = interface index
	NodeUniform  // Ref = interface index
	NodeLocalRef // Ref = slot
	NodeSwizzle  // Swizzle; Children = [base]
	NodeIndex    // Children = [base, index]
	NodeConvert  // Type; Children = [value]
	NodeConstruct
	NodeCall      // Ref = function id
	NodeIntrinsic // Ref = ir.Intrinsic
	NodeSample    // Ref = texture index; Children = [coord]
	NodeUnary     // Op
	NodeBinary    // Op
)

var nodeKindNames = [...]string{
	NodeBlock:     "block",
	NodeLocal:     "local",
	NodeAssign:    "assign",
	NodeExprStmt:  "expr-stmt",
	NodeIf:        "if",
	NodeWhile:     "while",
	NodeFor:       "for",
	NodeReturn:    "return",
	NodeDiscard:   "discard",
	NodeBreak:     "break",
	NodeContinue:  "continue",
	NodeIntLit:    "int",
	NodeFloatLit:  "float",
	NodeBoolLit:   "bool",
	NodeInput:     "input",
	NodeOutput:    "output",
	NodeUniform:   "uniform",
	NodeLocalRef:  "local-ref",
	NodeSwizzle:   "swizzle",
	NodeIndex:     "index",
	NodeConvert:   "convert",
	NodeConstruct: "construct",
	NodeCall:      "call",
	NodeIntrinsic: "intrinsic",
	NodeSample:    "sample",
	NodeUnary:     "unary",
	NodeBinary:    "binary",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// Node is one AST node. Which fields are meaningful depends on Kind.
// Nodes refer to each other only through Children.
type Node struct {
	Kind     NodeKind
	Op       ir.Op
	Type     ir.Type
	Ref      int
	Int      int32
	Float    float32
	Swizzle  []uint8
	Children []NodeID
	Pos      Position
}

// Arena stores the nodes of one shader unit. Its capacity is fixed when it
// is created.
type Arena struct {
	nodes []Node
	limit int
}

// NewArena returns an arena holding at most limit nodes.
func NewArena(limit int) *Arena {
	hint := limit
	if hint > 1024 {
		hint = 1024
	}
	return &Arena{
		nodes: make([]Node, 0, hint),
		limit: limit,
	}
}

// Add appends n and returns its id.
func (a *Arena) Add(n Node) (NodeID, error) {
	if len(a.nodes) >= a.limit {
		return InvalidNode, ir.Errorf(ir.PhaseParse, ir.ErrNodeOverflow, "more than %d nodes", a.limit).
			At(n.Pos.Line, n.Pos.Column, "")
	}
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1), nil
}

// Get returns the node with the given id.
func (a *Arena) Get(id NodeID) *Node {
	return &a.nodes[id]
}

// Len returns the number of nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Function is a parsed function definition.
type Function struct {
	Name   string
	Return ir.Type
	Params []ir.Type
	// Locals holds the type of every local slot; parameters come first.
	Locals []ir.Type
	Body   NodeID
	Entry  bool
	Pos    Position
}

// ShaderUnit is the result of parsing one shader: its interface and its
// function bodies.
type ShaderUnit struct {
	Kind      ir.ShaderKind
	Major     uint8
	Minor     uint8
	Interface ir.Interface
	Functions []Function
	Nodes     *Arena
	// Entry is the index of the entry point in Functions.
	Entry int
}
