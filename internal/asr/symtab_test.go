package asr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lcompilers/lasr/internal/errors"
)

func TestInsertAndLookupLocal(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	v, err := b.Variable(unit.Global, "x", IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("Variable() error = %v", err)
	}

	got, ok := unit.Global.LookupLocal("x")
	if !ok {
		t.Fatalf("LookupLocal(x) not found")
	}
	if got != Symbol(v) {
		t.Errorf("LookupLocal(x) = %v, want %v", got, v)
	}
}

func TestInsertDuplicateName(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	if _, err := b.Variable(unit.Global, "x", IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err != nil {
		t.Fatalf("first insert error = %v", err)
	}
	_, err := b.Variable(unit.Global, "x", IntentLocal, StorageDefault, b.Real(8), AccessPublic, PresenceRequired)
	if err == nil {
		t.Fatalf("duplicate insert succeeded, want DuplicateName error")
	}
	if code := errors.CodeOf(err); code != errors.SYM001 {
		t.Errorf("duplicate insert code = %q, want %q", code, errors.SYM001)
	}
}

func TestLookupWalksParentScopes(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	outer, err := b.Variable(unit.Global, "x", IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}

	// Not in the local scope
	if _, ok := p.SymTab.LookupLocal("x"); ok {
		t.Errorf("LookupLocal(x) found in program scope, want miss")
	}
	// Found by walking parents
	got, ok := p.SymTab.Lookup("x")
	if !ok {
		t.Fatalf("Lookup(x) from program scope not found")
	}
	if got != Symbol(outer) {
		t.Errorf("Lookup(x) = %v, want outer variable", got)
	}

	// Shadowing in the child scope wins
	inner, err := b.Variable(p.SymTab, "x", IntentLocal, StorageDefault, b.Real(8), AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("shadowing insert error = %v", err)
	}
	got, _ = p.SymTab.Lookup("x")
	if got != Symbol(inner) {
		t.Errorf("Lookup(x) after shadowing = %v, want inner variable", got)
	}
}

func TestIterateInsertionOrder(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	names := []string{"gamma", "alpha", "mu", "beta", "zeta"}
	for _, name := range names {
		if _, err := b.Variable(unit.Global, name, IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err != nil {
			t.Fatalf("Variable(%s) error = %v", name, err)
		}
	}

	var got []string
	unit.Global.Each(func(name string, _ Symbol) bool {
		got = append(got, name)
		return true
	})
	if diff := cmp.Diff(names, got); diff != "" {
		t.Errorf("Each() order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(names, unit.Global.Names()); diff != "" {
		t.Errorf("Names() order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertNormalizesNames(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	// The same identifier in NFD (e + combining acute) and NFC form
	nfd := "cafe\u0301"
	nfc := "caf\u00e9"
	if _, err := b.Variable(unit.Global, nfd, IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	if _, ok := unit.Global.LookupLocal(nfc); !ok {
		t.Errorf("LookupLocal(NFC form) missed a name inserted in NFD form")
	}
	if _, err := b.Variable(unit.Global, nfc, IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err == nil {
		t.Errorf("inserting NFC form after NFD form succeeded, want duplicate error")
	}
}

func TestResolveExternal(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	m, err := b.Module(unit.Global, "m", ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	f := declareIdentityFunction(t, b, m.SymTab, "f")

	ext, err := b.ExternalSymbol(unit.Global, "f", "m", nil, "f", AccessPublic)
	if err != nil {
		t.Fatalf("ExternalSymbol() error = %v", err)
	}
	if ext.External != Symbol(f) {
		t.Errorf("ExternalSymbol target = %v, want function f", ext.External)
	}

	// Lookup from the referring scope returns the external
	got, ok := unit.Global.Lookup("f")
	if !ok || got != Symbol(ext) {
		t.Errorf("Lookup(f) = %v, want the external symbol", got)
	}

	// resolve_external returns the target function
	target, err := ResolveExternal(unit.Global, ext)
	if err != nil {
		t.Fatalf("ResolveExternal() error = %v", err)
	}
	if target != Symbol(f) {
		t.Errorf("ResolveExternal() = %v, want function f", target)
	}
}

func TestResolveExternalUnresolved(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)

	ext := &ExternalSymbol{ModuleName: "nowhere", OriginalName: "f"}
	_, err := ResolveExternal(unit.Global, ext)
	if err == nil {
		t.Fatalf("ResolveExternal() succeeded for missing module")
	}
	if code := errors.CodeOf(err); code != errors.SYM003 {
		t.Errorf("ResolveExternal() code = %q, want %q", code, errors.SYM003)
	}
}

func TestResolveExternalNestedScopes(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	m, err := b.Module(unit.Global, "m", ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	d, err := b.DerivedType(m.SymTab, "point", ABISource, AccessPublic, nil)
	if err != nil {
		t.Fatalf("DerivedType() error = %v", err)
	}
	v, err := b.Variable(d.SymTab, "x", IntentLocal, StorageDefault, b.Real(8), AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("Variable() error = %v", err)
	}

	ext := &ExternalSymbol{ModuleName: "m", ScopeNames: []string{"point"}, OriginalName: "x"}
	target, err := ResolveExternal(unit.Global, ext)
	if err != nil {
		t.Fatalf("ResolveExternal() error = %v", err)
	}
	if target != Symbol(v) {
		t.Errorf("ResolveExternal() = %v, want member x", target)
	}
}

// declareIdentityFunction builds `function f(n) -> n` with an integer
// argument, a return variable, and a one-statement body.
func declareIdentityFunction(t *testing.T, b *Builder, scope *SymbolTable, name string) *Function {
	t.Helper()
	f, err := b.Function(scope, name, ABISource, AccessPublic, DefImplementation)
	if err != nil {
		t.Fatalf("Function(%s) error = %v", name, err)
	}
	i32 := b.Integer(4)
	arg, err := b.Variable(f.SymTab, "n", IntentIn, StorageDefault, i32, AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("arg variable error = %v", err)
	}
	ret, err := b.Variable(f.SymTab, "r", IntentReturnVar, StorageDefault, i32, AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("return variable error = %v", err)
	}
	if err := b.SetArgs(f, "n"); err != nil {
		t.Fatalf("SetArgs error = %v", err)
	}
	if err := b.SetReturnVar(f, "r"); err != nil {
		t.Fatalf("SetReturnVar error = %v", err)
	}
	f.Body = []Stmt{
		&Assignment{Target: b.VarRef(ret), Value: b.VarRef(arg)},
		&Return{},
	}
	if err := b.Finalize(f); err != nil {
		t.Fatalf("Finalize error = %v", err)
	}
	return f
}
