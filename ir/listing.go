package ir

import (
	"strconv"
	"strings"
)

// FuncName is the name under which backends expose the compiled function.
const FuncName = "rpn_func"

// String returns an SSA-style listing of the graph. Nodes appear in arena
// order; a branch ends the block it appears in, so nodes created after it are
// listed in its merge block.
func (g *Graph) String() string {
	var b strings.Builder
	for _, f := range g.funcs {
		b.WriteString("declare float @")
		b.WriteString(f.Native)
		b.WriteByte('(')
		for i := 0; i < f.Arity; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("float")
		}
		b.WriteString(")\n")
	}
	if len(g.funcs) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("define float @" + FuncName + "(float %x) {\nentry:\n")
	for i := 1; i < len(g.nodes); i++ {
		g.fmtnode(&b, Value(i))
	}
	if g.root != NoValue {
		b.WriteString("  ret float ")
		b.WriteString(g.ref(g.root))
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// ref is the listing name of a value.
func (g *Graph) ref(v Value) string {
	if v == 0 {
		return "%x"
	}
	return "%" + strconv.Itoa(int(v))
}

func (g *Graph) fmtnode(b *strings.Builder, v Value) {
	n := &g.nodes[v]
	if n.Op == OpSelect {
		br := &g.branches[n.Branch]
		b.WriteString("  br " + g.ref(br.Cond) + " != 0, label %" + br.Then.Label + ", label %" + br.Else.Label + "\n")
		b.WriteString(br.Then.Label + ":\n  br label %" + br.Merge.Label + "\n")
		b.WriteString(br.Else.Label + ":\n  br label %" + br.Merge.Label + "\n")
		b.WriteString(br.Merge.Label + ":\n")
		b.WriteString("  " + g.ref(v) + " = phi float [" + g.ref(br.Then.Value) + ", %" + br.Then.Label + "], [" + g.ref(br.Else.Value) + ", %" + br.Else.Label + "]\n")
		return
	}
	b.WriteString("  ")
	b.WriteString(g.ref(v))
	b.WriteString(" = ")
	switch n.Op {
	case OpConst:
		b.WriteString("const float ")
		b.WriteString(strconv.FormatFloat(n.Const, 'g', -1, 64))
		if n.Name != "" {
			b.WriteString(" ; ")
			b.WriteString(n.Name)
		}
	case OpAdd, OpSub, OpMul, OpDiv:
		b.WriteString(n.Op.String())
		b.WriteString(" float ")
		g.fmtargs(b, n)
	case OpCmp:
		b.WriteString("fcmp ")
		b.WriteString(n.Pred.String())
		b.WriteString(" float ")
		g.fmtargs(b, n)
	case OpCall:
		b.WriteString("call float @")
		b.WriteString(g.funcs[n.Func].Native)
		b.WriteByte('(')
		g.fmtargs(b, n)
		b.WriteByte(')')
	default:
		panic("ir: invalid node " + n.Op.String() + " after writing " + b.String())
	}
	b.WriteByte('\n')
}

func (g *Graph) fmtargs(b *strings.Builder, n *Node) {
	for i, a := range n.Operands() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.ref(a))
	}
}
