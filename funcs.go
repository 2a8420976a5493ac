package rpnjit

import (
	"math"
	"slices"

	"github.com/rforcen/rpnjit/ir"
)

// symbol identifies a token's meaning independent of its spelling.
type symbol int8

const (
	symNone symbol = iota
	symNum
	symVar
	symIdent

	symPlus
	symMinus
	symMul
	symDiv
	symPow
	symFact

	symEQ
	symNE
	symGT
	symGE
	symLT
	symLE

	symQuestion
	symColon
	symOpen
	symClose
	symComma

	symSin
	symCos
	symTan
	symExp
	symLog
	symLog10
	symFloor
	symSqrt
	symAsin
	symAcos
	symAtan
	symFabs
	symWave

	symPi
	symPhi
	symE
)

// class is how the compiler treats a symbol.
type class int8

const (
	// classNone symbols cannot be compiled.
	classNone class = iota
	classNum
	classVar
	classConst
	// classArith applies op to two operands.
	classArith
	// classCompare applies pred to two operands.
	classCompare
	// classCall calls native with arity operands.
	classCall
	classTernary
)

type symInfo struct {
	text  string
	kind  tokenKind
	class class
	// arity is the number of operands consumed.
	arity  int
	op     ir.Op
	pred   ir.Pred
	native string
	val    float64
}

// phi is the golden ratio as the expression language has always defined it.
const phi = 1.61803

var symtab = [...]symInfo{
	symNum:   {kind: tokenNum, class: classNum},
	symVar:   {kind: tokenVar, class: classVar},
	symIdent: {kind: tokenIdent},

	symPlus:  {text: "+", kind: tokenOp, class: classArith, arity: 2, op: ir.OpAdd},
	symMinus: {text: "-", kind: tokenOp, class: classArith, arity: 2, op: ir.OpSub},
	symMul:   {text: "*", kind: tokenOp, class: classArith, arity: 2, op: ir.OpMul},
	symDiv:   {text: "/", kind: tokenOp, class: classArith, arity: 2, op: ir.OpDiv},
	symPow:   {text: "^", kind: tokenOp, class: classCall, arity: 2, native: "power"},
	symFact:  {text: "!", kind: tokenOp, class: classCall, arity: 1, native: "factorial"},

	symEQ: {text: "=", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredEQ},
	symNE: {text: "<>", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredNE},
	symGT: {text: ">", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredGT},
	symGE: {text: ">=", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredGE},
	symLT: {text: "<", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredLT},
	symLE: {text: "<=", kind: tokenCmp, class: classCompare, arity: 2, pred: ir.PredLE},

	symQuestion: {text: "?", kind: tokenTernary, class: classTernary, arity: 3},
	symColon:    {text: ":", kind: tokenTernary},
	symOpen:     {text: "(", kind: tokenPunct},
	symClose:    {text: ")", kind: tokenPunct},
	symComma:    {text: ",", kind: tokenPunct},

	symSin:   mathfn("sin"),
	symCos:   mathfn("cos"),
	symTan:   mathfn("tan"),
	symExp:   mathfn("exp"),
	symLog:   mathfn("log"),
	symLog10: mathfn("log10"),
	symFloor: mathfn("floor"),
	symSqrt:  mathfn("sqrt"),
	symAsin:  mathfn("asin"),
	symAcos:  mathfn("acos"),
	symAtan:  mathfn("atan"),
	symFabs:  mathfn("fabs"),
	symWave:  {text: "wave", kind: tokenFunc, class: classCall, arity: 3, native: "wave"},

	symPi:  {text: "pi", kind: tokenConst, class: classConst, val: math.Pi},
	symPhi: {text: "phi", kind: tokenConst, class: classConst, val: phi},
	symE:   {text: "e", kind: tokenConst, class: classConst, val: math.E},
}

func mathfn(name string) symInfo {
	return symInfo{text: name, kind: tokenFunc, class: classCall, arity: 1, native: name}
}

// names maps identifiers to symbols. The variable names are handled by the
// lexer.
var names = map[string]symbol{
	"sin":   symSin,
	"cos":   symCos,
	"tan":   symTan,
	"exp":   symExp,
	"log":   symLog,
	"log10": symLog10,
	"floor": symFloor,
	"sqrt":  symSqrt,
	"asin":  symAsin,
	"acos":  symAcos,
	"atan":  symAtan,
	"fabs":  symFabs,
	"wave":  symWave,
	"pi":    symPi,
	"phi":   symPhi,
	"e":     symE,
}

// funcset declares each native function in a graph at most once.
type funcset struct {
	g     *ir.Graph
	decls map[symbol]int
}

func (f *funcset) declare(s symbol) int {
	if k, ok := f.decls[s]; ok {
		return k
	}
	if f.decls == nil {
		f.decls = make(map[symbol]int)
	}
	info := &symtab[s]
	k := f.g.Declare(info.native, info.arity)
	f.decls[s] = k
	return k
}

// Funcs returns the sorted names of the functions the expression language
// supports, not including the operators ^ and !.
func Funcs() []string {
	r := make([]string, 0, len(names))
	for k, s := range names {
		if symtab[s].class == classCall {
			r = append(r, k)
		}
	}
	slices.Sort(r)
	return r
}
