package wasm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rforcen/rpnjit/ir"
)

func TestEncodeLEB128U(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, c := range cases {
		if got := encodeLEB128U(c.v); !bytes.Equal(got, c.want) {
			t.Errorf("encodeLEB128U(%d): want % x, got % x", c.v, c.want, got)
		}
	}
}

func TestEncodeSection(t *testing.T) {
	got := encodeSection(sectionExport, encodeVector(1, encodeString("ab")))
	want := []byte{sectionExport, 4, 1, 2, 'a', 'b'}
	if !bytes.Equal(got, want) {
		t.Errorf("want % x, got % x", want, got)
	}
}

func TestEncodeNoRoot(t *testing.T) {
	_, _, err := Encode(ir.New())
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("want ErrNoRoot, got %v", err)
	}
}

func TestEncodeModule(t *testing.T) {
	g := ir.New()
	pow := g.Declare("power", 2)
	g.SetRoot(g.Call(pow, g.Param(), g.Const(2, "")))
	bin, text, err := Encode(g)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bin, append(append([]byte{}, wasmMagic...), wasmVersion...)) {
		t.Errorf("missing header: % x", bin[:8])
	}
	// Sections must appear in increasing id order.
	ids := []byte{sectionType, sectionImport, sectionFunction, sectionExport, sectionCode}
	rest := bin[8:]
	for _, id := range ids {
		if len(rest) == 0 || rest[0] != id {
			t.Fatalf("want section %d next in % x", id, rest)
		}
		// Section sizes in this test are all below 128 bytes.
		n := int(rest[1])
		rest = rest[2+n:]
	}
	if len(rest) != 0 {
		t.Errorf("trailing bytes % x", rest)
	}
	for _, w := range []string{
		`(import "env" "power" (func $power (type 1)))`,
		`(type (;1;) (func (param f32 f32) (result f32)))`,
		"local.get $x",
		"f32.const 2",
		"call $power",
	} {
		if !strings.Contains(text, w) {
			t.Errorf("listing missing %q:\n%s", w, text)
		}
	}
}

func TestEncodeBranchListing(t *testing.T) {
	g := ir.New()
	c := g.Compare(ir.PredNE, g.Param(), g.Const(0, ""))
	g.SetRoot(g.Branch(c, g.Const(10, ""), g.Const(20, "")))
	_, text, err := Encode(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{
		"(local f32 f32 f32)",
		"if (result f32) ;; then0",
		"else ;; else0",
		"end ;; ifcont0",
		"i32.or",
		"f32.convert_i32_u",
	} {
		if !strings.Contains(text, w) {
			t.Errorf("listing missing %q:\n%s", w, text)
		}
	}
}
