package serde

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
)

// buildIdentityFunction declares `function name(n) -> n` in scope.
func buildIdentityFunction(t *testing.T, b *asr.Builder, scope *asr.SymbolTable, name string) *asr.Function {
	t.Helper()
	f, err := b.Function(scope, name, asr.ABISource, asr.AccessPublic, asr.DefImplementation)
	if err != nil {
		t.Fatalf("Function(%s) error = %v", name, err)
	}
	i32 := b.Integer(4)
	arg, err := b.Variable(f.SymTab, "n", asr.IntentIn, asr.StorageDefault, i32, asr.AccessPublic, asr.PresenceRequired)
	if err != nil {
		t.Fatalf("arg variable error = %v", err)
	}
	ret, err := b.Variable(f.SymTab, "r", asr.IntentReturnVar, asr.StorageDefault, i32, asr.AccessPublic, asr.PresenceRequired)
	if err != nil {
		t.Fatalf("return variable error = %v", err)
	}
	if err := b.SetArgs(f, "n"); err != nil {
		t.Fatalf("SetArgs error = %v", err)
	}
	if err := b.SetReturnVar(f, "r"); err != nil {
		t.Fatalf("SetReturnVar error = %v", err)
	}
	f.Body = []asr.Stmt{
		&asr.Assignment{Target: b.VarRef(ret), Value: b.VarRef(arg)},
		&asr.Return{},
	}
	return f
}

// buildUnit assembles a unit with a module, a function, a generic set,
// and an external symbol referencing the function.
func buildUnit(t *testing.T) *asr.TranslationUnit {
	t.Helper()
	a := asr.NewArena()
	unit := asr.NewUnit(a)
	b := asr.NewBuilder(a)

	m, err := b.Module(unit.Global, "m", asr.ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	f1 := buildIdentityFunction(t, b, m.SymTab, "f")
	f2 := buildIdentityFunction(t, b, m.SymTab, "g")
	if _, err := b.GenericProcedure(m.SymTab, "h", []asr.Symbol{f1, f2}, asr.AccessPublic); err != nil {
		t.Fatalf("GenericProcedure() error = %v", err)
	}
	if _, err := b.ExternalSymbol(unit.Global, "f", "m", nil, "f", asr.AccessPublic); err != nil {
		t.Fatalf("ExternalSymbol() error = %v", err)
	}
	unit.Items = append(unit.Items, m)
	return unit
}

func TestRoundTripStructuralEquality(t *testing.T) {
	unit := buildUnit(t)

	data := Encode(unit)
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !asr.StructuralEqual(unit, decoded) {
		t.Errorf("decoded unit differs:\n%s\n%s", asr.Pickle(unit), asr.Pickle(decoded))
	}
	if rep := asr.Validate(decoded); !rep.Empty() {
		t.Errorf("Validate() of decoded unit = %v", rep.Err())
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	unit := buildUnit(t)

	first := Encode(unit)
	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	second := Encode(decoded)
	if !bytes.Equal(first, second) {
		t.Errorf("re-encoding a decoded unit changed the bytes: %d vs %d", len(first), len(second))
	}
}

func TestDecodeResolvesExternals(t *testing.T) {
	unit := buildUnit(t)

	decoded, err := Decode(Encode(unit))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	sym, ok := decoded.Global.LookupLocal("f")
	if !ok {
		t.Fatalf("decoded unit lost the external symbol")
	}
	ext, ok := sym.(*asr.ExternalSymbol)
	if !ok {
		t.Fatalf("decoded global f is %T, want ExternalSymbol", sym)
	}
	if ext.External == nil {
		t.Fatalf("decoded external was not re-resolved")
	}
	target, err := asr.ResolveExternal(decoded.Global, ext)
	if err != nil {
		t.Fatalf("ResolveExternal() error = %v", err)
	}
	if _, ok := target.(*asr.Function); !ok {
		t.Errorf("resolved external target = %T, want Function", target)
	}
}

func TestRoundTripGenericDispatch(t *testing.T) {
	a := asr.NewArena()
	unit := asr.NewUnit(a)
	b := asr.NewBuilder(a)

	m, err := b.Module(unit.Global, "m", asr.ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	f1 := buildIdentityFunction(t, b, m.SymTab, "add_i32")
	f2 := buildIdentityFunction(t, b, m.SymTab, "add_i64")
	f3 := buildIdentityFunction(t, b, m.SymTab, "add_r8")
	gen, err := b.GenericProcedure(m.SymTab, "add", []asr.Symbol{f1, f2, f3}, asr.AccessPublic)
	if err != nil {
		t.Fatalf("GenericProcedure() error = %v", err)
	}

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	v, err := b.Variable(p.SymTab, "x", asr.IntentLocal, asr.StorageDefault, b.Integer(4), asr.AccessPublic, asr.PresenceRequired)
	if err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	call, err := b.FunctionCall(f2, gen, []asr.Expr{b.ConstantInteger(1, b.Integer(4))}, b.Integer(4), nil)
	if err != nil {
		t.Fatalf("FunctionCall() error = %v", err)
	}
	p.Body = []asr.Stmt{&asr.Assignment{Target: b.VarRef(v), Value: call}}
	unit.Items = append(unit.Items, m)

	decoded, err := Decode(Encode(unit))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !asr.StructuralEqual(unit, decoded) {
		t.Errorf("generic dispatch record did not survive the round trip")
	}
	// Both the resolved and the original symbol survive.
	pickle := asr.Pickle(decoded)
	if !strings.Contains(pickle, "add_i64") || !strings.Contains(pickle, "FunctionCall") {
		t.Errorf("round-tripped pickle lost call symbols: %s", pickle)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	unit := buildUnit(t)
	data := Encode(unit)
	binary.LittleEndian.PutUint16(data[4:6], SchemaVersion+1)

	_, err := Decode(data)
	if err == nil {
		t.Fatalf("Decode() accepted version %d", SchemaVersion+1)
	}
	if code := errors.CodeOf(err); code != errors.SER001 {
		t.Errorf("Decode() code = %q, want %q (SchemaMismatch)", code, errors.SER001)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	unit := buildUnit(t)
	data := Encode(unit)
	data[0] = 'X'

	_, err := Decode(data)
	if err == nil {
		t.Fatalf("Decode() accepted a bad magic")
	}
	if code := errors.CodeOf(err); code != errors.SER002 {
		t.Errorf("Decode() code = %q, want %q", code, errors.SER002)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	unit := buildUnit(t)
	data := Encode(unit)

	// One byte short is MalformedStream.
	_, err := Decode(data[:len(data)-1])
	if err == nil {
		t.Fatalf("Decode() accepted a truncated stream")
	}
	if code := errors.CodeOf(err); code != errors.SER002 {
		t.Errorf("Decode() code = %q, want %q", code, errors.SER002)
	}

	// No proper prefix decodes.
	for i := 0; i < len(data); i++ {
		if _, err := Decode(data[:i]); err == nil {
			t.Fatalf("Decode() accepted prefix of length %d", i)
		}
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	unit := buildUnit(t)
	data := append(Encode(unit), 0x00)

	_, err := Decode(data)
	if err == nil {
		t.Fatalf("Decode() accepted trailing bytes")
	}
	if code := errors.CodeOf(err); code != errors.SER002 {
		t.Errorf("Decode() code = %q, want %q", code, errors.SER002)
	}
}

func TestDecodeEmptyUnit(t *testing.T) {
	unit := asr.NewUnit(asr.NewArena())
	decoded, err := Decode(Encode(unit))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Global.Len() != 0 || len(decoded.Items) != 0 {
		t.Errorf("decoded empty unit has %d symbols, %d items", decoded.Global.Len(), len(decoded.Items))
	}
}
