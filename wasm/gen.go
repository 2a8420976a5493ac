package wasm

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rforcen/rpnjit/ir"
)

// HostModule is the import module name under which intrinsics are provided.
const HostModule = "env"

// ErrNoRoot is returned when encoding a graph whose root is unset.
var ErrNoRoot = errors.New("wasm: graph has no root")

// Encode lowers a graph to a WebAssembly module exporting ir.FuncName as a
// function (f32) -> f32. Every function the graph declares becomes an import
// from HostModule. It returns the binary module and a text listing of it.
//
// Branches are lowered to if/else/end, so only the taken arm runs. A node
// used by more than one consumer is recomputed at each use; intrinsics are
// pure, so this only affects speed.
func Encode(g *ir.Graph) ([]byte, string, error) {
	if g.Root() == ir.NoValue {
		return nil, "", ErrNoRoot
	}
	m := newModule(g)
	return m.emit(), m.text.String(), nil
}

type funcSig struct {
	params  int
	results int
}

type module struct {
	g         *ir.Graph
	types     []funcSig
	typeCache map[funcSig]int
	imports   []int // type index per declared function
	text      strings.Builder
}

func newModule(g *ir.Graph) *module {
	m := &module{g: g, typeCache: make(map[funcSig]int)}
	// Type 0 is the compiled function's own signature.
	m.typeIndex(1, 1)
	for _, f := range g.Funcs() {
		m.imports = append(m.imports, m.typeIndex(f.Arity, 1))
	}
	return m
}

// typeIndex returns the type section index for an all-f32 signature, adding
// it if new.
func (m *module) typeIndex(params, results int) int {
	key := funcSig{params, results}
	if idx, ok := m.typeCache[key]; ok {
		return idx
	}
	idx := len(m.types)
	m.types = append(m.types, key)
	m.typeCache[key] = idx
	return idx
}

func (m *module) emit() []byte {
	m.text.WriteString("(module\n")
	var wasm []byte
	wasm = append(wasm, wasmMagic...)
	wasm = append(wasm, wasmVersion...)
	wasm = append(wasm, m.emitTypeSection()...)
	if len(m.imports) > 0 {
		wasm = append(wasm, m.emitImportSection()...)
	}
	wasm = append(wasm, m.emitFunctionSection()...)
	wasm = append(wasm, m.emitExportSection()...)
	wasm = append(wasm, m.emitCodeSection()...)
	m.text.WriteString(")\n")
	return wasm
}

func (m *module) emitTypeSection() []byte {
	var contents []byte
	for i, sig := range m.types {
		contents = append(contents, typeFunc)
		contents = append(contents, encodeLEB128U(uint64(sig.params))...)
		for j := 0; j < sig.params; j++ {
			contents = append(contents, valF32)
		}
		contents = append(contents, encodeLEB128U(uint64(sig.results))...)
		for j := 0; j < sig.results; j++ {
			contents = append(contents, valF32)
		}
		m.text.WriteString("  (type (;" + strconv.Itoa(i) + ";) (func (param" + strings.Repeat(" f32", sig.params) + ") (result" + strings.Repeat(" f32", sig.results) + ")))\n")
	}
	return encodeSection(sectionType, encodeVector(len(m.types), contents))
}

func (m *module) emitImportSection() []byte {
	var contents []byte
	for i, f := range m.g.Funcs() {
		contents = append(contents, encodeString(HostModule)...)
		contents = append(contents, encodeString(f.Native)...)
		contents = append(contents, importFunc)
		contents = append(contents, encodeLEB128U(uint64(m.imports[i]))...)
		m.text.WriteString("  (import \"" + HostModule + "\" \"" + f.Native + "\" (func $" + f.Native + " (type " + strconv.Itoa(m.imports[i]) + ")))\n")
	}
	return encodeSection(sectionImport, encodeVector(len(m.imports), contents))
}

func (m *module) emitFunctionSection() []byte {
	return encodeSection(sectionFunction, encodeVector(1, encodeLEB128U(0)))
}

// mainIndex is the function index of the compiled function: imported
// functions come first in the index space.
func (m *module) mainIndex() int {
	return len(m.imports)
}

func (m *module) emitExportSection() []byte {
	var contents []byte
	contents = append(contents, encodeString(ir.FuncName)...)
	contents = append(contents, exportFunc)
	contents = append(contents, encodeLEB128U(uint64(m.mainIndex()))...)
	return encodeSection(sectionExport, encodeVector(1, contents))
}

func (m *module) emitCodeSection() []byte {
	fc := &funcCompiler{m: m, depth: 2}
	fc.compileExpr(m.g.Root())
	fc.body = append(fc.body, opEnd)

	m.text.WriteString("  (func $" + ir.FuncName + " (export \"" + ir.FuncName + "\") (type 0) (param $x f32) (result f32)\n")
	var locals []byte
	if fc.extra > 0 {
		// All scratch locals are f32, so they fit one group.
		locals = encodeVector(1, append(encodeLEB128U(uint64(fc.extra)), valF32))
		m.text.WriteString("    (local" + strings.Repeat(" f32", fc.extra) + ")\n")
	} else {
		locals = encodeLEB128U(0)
	}
	m.text.WriteString(fc.text.String())
	m.text.WriteString("  )\n")

	code := append(locals, fc.body...)
	contents := append(encodeLEB128U(uint64(len(code))), code...)
	return encodeSection(sectionCode, encodeVector(1, contents))
}

type funcCompiler struct {
	m     *module
	body  []byte
	text  strings.Builder
	extra int
	depth int
}

// allocAnon allocates a scratch f32 local and returns its index.
func (fc *funcCompiler) allocAnon() uint32 {
	fc.extra++
	// Local 0 is the parameter.
	return uint32(fc.extra)
}

func (fc *funcCompiler) line(s string) {
	fc.text.WriteString(strings.Repeat("  ", fc.depth))
	fc.text.WriteString(s)
	fc.text.WriteByte('\n')
}

func (fc *funcCompiler) op(code byte, mnemonic string) {
	fc.body = append(fc.body, code)
	fc.line(mnemonic)
}

func (fc *funcCompiler) opIndex(code byte, mnemonic string, idx uint32) {
	fc.body = append(fc.body, code)
	fc.body = append(fc.body, encodeLEB128U(uint64(idx))...)
	fc.line(mnemonic + " " + fc.name(code, idx))
}

// name is the text operand for an index immediate.
func (fc *funcCompiler) name(code byte, idx uint32) string {
	switch {
	case code == opCall:
		return "$" + fc.m.g.Funcs()[idx].Native
	case idx == 0:
		return "$x"
	default:
		return strconv.Itoa(int(idx))
	}
}

func (fc *funcCompiler) f32const(f float32) {
	fc.body = append(fc.body, opF32Const)
	fc.body = binary.LittleEndian.AppendUint32(fc.body, math.Float32bits(f))
	fc.line("f32.const " + strconv.FormatFloat(float64(f), 'g', -1, 32))
}

// nonzero consumes the f32 on top of the stack and leaves an i32 that is 1
// when it is ordered and not equal to zero. f32.ne alone would be true for
// NaN.
func (fc *funcCompiler) nonzero() {
	t := fc.allocAnon()
	fc.opIndex(opLocalTee, "local.tee", t)
	fc.f32const(0)
	fc.op(opF32Lt, "f32.lt")
	fc.opIndex(opLocalGet, "local.get", t)
	fc.f32const(0)
	fc.op(opF32Gt, "f32.gt")
	fc.op(opI32Or, "i32.or")
}

var binops = map[ir.Op]struct {
	code     byte
	mnemonic string
}{
	ir.OpAdd: {opF32Add, "f32.add"},
	ir.OpSub: {opF32Sub, "f32.sub"},
	ir.OpMul: {opF32Mul, "f32.mul"},
	ir.OpDiv: {opF32Div, "f32.div"},
}

var cmpops = map[ir.Pred]struct {
	code     byte
	mnemonic string
}{
	ir.PredEQ: {opF32Eq, "f32.eq"},
	ir.PredGT: {opF32Gt, "f32.gt"},
	ir.PredGE: {opF32Ge, "f32.ge"},
	ir.PredLT: {opF32Lt, "f32.lt"},
	ir.PredLE: {opF32Le, "f32.le"},
}

// compileExpr emits code leaving the value of v on the stack.
func (fc *funcCompiler) compileExpr(v ir.Value) {
	n := fc.m.g.Node(v)
	switch n.Op {
	case ir.OpParam:
		fc.opIndex(opLocalGet, "local.get", 0)
	case ir.OpConst:
		fc.f32const(float32(n.Const))
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv:
		fc.compileExpr(n.Args[0])
		fc.compileExpr(n.Args[1])
		b := binops[n.Op]
		fc.op(b.code, b.mnemonic)
	case ir.OpCmp:
		fc.compileCmp(n)
		fc.op(opF32FromU32, "f32.convert_i32_u")
	case ir.OpCall:
		for _, a := range n.Operands() {
			fc.compileExpr(a)
		}
		fc.opIndex(opCall, "call", uint32(n.Func))
	case ir.OpSelect:
		br := fc.m.g.Branches()[n.Branch]
		fc.compileExpr(br.Cond)
		fc.nonzero()
		fc.body = append(fc.body, opIf, valF32)
		fc.line("if (result f32) ;; " + br.Then.Label)
		fc.depth++
		fc.compileExpr(br.Then.Value)
		fc.depth--
		fc.body = append(fc.body, opElse)
		fc.line("else ;; " + br.Else.Label)
		fc.depth++
		fc.compileExpr(br.Else.Value)
		fc.depth--
		fc.body = append(fc.body, opEnd)
		fc.line("end ;; " + br.Merge.Label)
	default:
		panic("wasm: cannot compile node " + n.Op.String())
	}
}

func (fc *funcCompiler) compileCmp(n *ir.Node) {
	if n.Pred != ir.PredNE {
		fc.compileExpr(n.Args[0])
		fc.compileExpr(n.Args[1])
		c, ok := cmpops[n.Pred]
		if !ok {
			panic("wasm: invalid predicate " + n.Pred.String())
		}
		fc.op(c.code, c.mnemonic)
		return
	}
	// Ordered not-equal is a < b || a > b.
	a, b := fc.allocAnon(), fc.allocAnon()
	fc.compileExpr(n.Args[0])
	fc.opIndex(opLocalSet, "local.set", a)
	fc.compileExpr(n.Args[1])
	fc.opIndex(opLocalSet, "local.set", b)
	fc.opIndex(opLocalGet, "local.get", a)
	fc.opIndex(opLocalGet, "local.get", b)
	fc.op(opF32Lt, "f32.lt")
	fc.opIndex(opLocalGet, "local.get", a)
	fc.opIndex(opLocalGet, "local.get", b)
	fc.op(opF32Gt, "f32.gt")
	fc.op(opI32Or, "i32.or")
}
