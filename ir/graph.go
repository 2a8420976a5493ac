// Package ir holds the computation graph built by the RPN compiler and
// consumed by backends.
//
// A Graph is an arena of nodes addressed by Value indices. Nodes are only
// ever appended, so every node's operands have smaller indices than the node
// itself and the arena is already in a valid evaluation order. Node 0 is the
// function's single float parameter.
package ir

import (
	"strconv"
)

// Value is a handle to a node in a Graph.
type Value int32

// NoValue is the invalid handle.
const NoValue Value = -1

// Op is the operation a node performs.
type Op int8

const (
	OpNone Op = iota

	OpParam  // the function parameter
	OpConst  // Const
	OpAdd    // Args[0] + Args[1]
	OpSub    // Args[0] - Args[1]
	OpMul    // Args[0] * Args[1]
	OpDiv    // Args[0] / Args[1]
	OpCmp    // Pred(Args[0], Args[1]) as 0.0 or 1.0
	OpCall   // Funcs[Func](Args[:N])
	OpSelect // Branches[Branch]
)

var opnames = [...]string{
	OpNone:   "none",
	OpParam:  "param",
	OpConst:  "const",
	OpAdd:    "fadd",
	OpSub:    "fsub",
	OpMul:    "fmul",
	OpDiv:    "fdiv",
	OpCmp:    "fcmp",
	OpCall:   "call",
	OpSelect: "phi",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opnames[op]
}

// Pred is a comparison predicate. All predicates are ordered: a comparison
// involving NaN is false.
type Pred int8

const (
	PredNone Pred = iota
	PredEQ
	PredNE
	PredGT
	PredGE
	PredLT
	PredLE
)

var prednames = [...]string{
	PredNone: "none",
	PredEQ:   "oeq",
	PredNE:   "one",
	PredGT:   "ogt",
	PredGE:   "oge",
	PredLT:   "olt",
	PredLE:   "ole",
}

func (p Pred) String() string {
	if p < 0 || int(p) >= len(prednames) {
		return "Pred(" + strconv.Itoa(int(p)) + ")"
	}
	return prednames[p]
}

// Holds reports whether the predicate holds for a and b.
func (p Pred) Holds(a, b float64) bool {
	switch p {
	case PredEQ:
		return a == b
	case PredNE:
		return a < b || a > b
	case PredGT:
		return a > b
	case PredGE:
		return a >= b
	case PredLT:
		return a < b
	case PredLE:
		return a <= b
	default:
		panic("ir: invalid predicate " + p.String())
	}
}

// Node is one operation in a graph.
type Node struct {
	Op Op
	// Const is the value of an OpConst node.
	Const float64
	// Name is the source spelling of a named constant, or empty.
	Name string
	// Pred is the predicate of an OpCmp node.
	Pred Pred
	// Func is the index into Graph.Funcs of an OpCall node.
	Func int
	// Branch is the index into Graph.Branches of an OpSelect node.
	Branch int
	// Args holds the operands; only the first N are used.
	Args [3]Value
	N    int
}

// Operands returns the node's operands in evaluation order.
func (n *Node) Operands() []Value {
	return n.Args[:n.N]
}

// Func is a native function declared for use by call nodes.
type Func struct {
	// Native is the runtime symbol the backend resolves.
	Native string
	Arity  int
}

// Block is a labelled basic block of a branch.
type Block struct {
	Label string
	// Value is the value the block passes to the merge. For the merge block
	// it is the select node itself.
	Value Value
}

// Branch is the lowering of a two-way conditional: the condition ends the
// current block with a jump to Then if it is nonzero or Else otherwise, and
// both jump to Merge, which selects the value of whichever block ran.
type Branch struct {
	Cond  Value
	Then  Block
	Else  Block
	Merge Block
}

// Graph is the computation graph of one function of one float parameter.
// The zero value is not usable; call New.
type Graph struct {
	nodes    []Node
	funcs    []Func
	branches []Branch
	root     Value
}

// New creates a graph holding only the parameter node.
func New() *Graph {
	g := &Graph{root: NoValue}
	g.nodes = append(g.nodes, Node{Op: OpParam})
	return g
}

// Param returns the parameter node. It is the same handle every time.
func (g *Graph) Param() Value {
	return 0
}

func (g *Graph) add(n Node) Value {
	g.nodes = append(g.nodes, n)
	return Value(len(g.nodes) - 1)
}

func (g *Graph) check(vs ...Value) {
	for _, v := range vs {
		if v < 0 || int(v) >= len(g.nodes) {
			panic("ir: invalid value " + strconv.Itoa(int(v)))
		}
	}
}

// Const adds a constant. name is the source spelling of a named constant, or
// empty for literals.
func (g *Graph) Const(c float64, name string) Value {
	return g.add(Node{Op: OpConst, Const: c, Name: name})
}

// Binary adds an arithmetic node computing a op b.
func (g *Graph) Binary(op Op, a, b Value) Value {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
	default:
		panic("ir: " + op.String() + " is not a binary operation")
	}
	g.check(a, b)
	return g.add(Node{Op: op, Args: [3]Value{a, b}, N: 2})
}

// Compare adds a node that is 1.0 when p(a, b) holds and 0.0 otherwise.
func (g *Graph) Compare(p Pred, a, b Value) Value {
	if p <= PredNone || int(p) >= len(prednames) {
		panic("ir: invalid predicate " + p.String())
	}
	g.check(a, b)
	return g.add(Node{Op: OpCmp, Pred: p, Args: [3]Value{a, b}, N: 2})
}

// Declare registers a native function and returns its index. Declaring the
// same function again adds a second declaration; callers that want one
// declaration per function keep their own cache.
func (g *Graph) Declare(native string, arity int) int {
	if arity < 1 || arity > 3 {
		panic("ir: cannot declare " + native + " with " + strconv.Itoa(arity) + " arguments")
	}
	g.funcs = append(g.funcs, Func{Native: native, Arity: arity})
	return len(g.funcs) - 1
}

// Call adds a call of a declared function.
func (g *Graph) Call(fn int, args ...Value) Value {
	if fn < 0 || fn >= len(g.funcs) {
		panic("ir: call of undeclared function " + strconv.Itoa(fn))
	}
	if len(args) != g.funcs[fn].Arity {
		panic("ir: wrong argument count for " + g.funcs[fn].Native)
	}
	g.check(args...)
	n := Node{Op: OpCall, Func: fn, N: len(args)}
	copy(n.Args[:], args)
	return g.add(n)
}

// Branch adds the then, else, and merge blocks for cond ? then : els and
// returns the merged value.
func (g *Graph) Branch(cond, then, els Value) Value {
	g.check(cond, then, els)
	k := len(g.branches)
	id := strconv.Itoa(k)
	v := Value(len(g.nodes))
	g.branches = append(g.branches, Branch{
		Cond:  cond,
		Then:  Block{Label: "then" + id, Value: then},
		Else:  Block{Label: "else" + id, Value: els},
		Merge: Block{Label: "ifcont" + id, Value: v},
	})
	return g.add(Node{Op: OpSelect, Branch: k, Args: [3]Value{cond, then, els}, N: 3})
}

// SetRoot sets the value the function returns.
func (g *Graph) SetRoot(v Value) {
	g.check(v)
	g.root = v
}

// Root returns the returned value, or NoValue if none has been set.
func (g *Graph) Root() Value {
	return g.root
}

// Node returns the node for v. The result must not be modified.
func (g *Graph) Node(v Value) *Node {
	g.check(v)
	return &g.nodes[v]
}

// Len returns the number of nodes, including the parameter.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Funcs returns the declared functions in declaration order.
func (g *Graph) Funcs() []Func {
	return g.funcs
}

// Branches returns the branches in creation order.
func (g *Graph) Branches() []Branch {
	return g.branches
}
