package foreign

import (
	"testing"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
)

const mathManifest = `
library: cmath
procedures:
  - name: c_sin
    bind: sin
    args:
      - {name: x, type: real, kind: 8, intent: in}
    returns: {type: real, kind: 8}
  - name: c_srand
    bind: srand
    args:
      - {name: seed, type: integer, kind: 4, intent: in}
`

func TestLoadBindC(t *testing.T) {
	unit, mod, err := LoadBindC([]byte(mathManifest))
	if err != nil {
		t.Fatalf("LoadBindC() error = %v", err)
	}
	if mod.Name() != "cmath" {
		t.Errorf("module name = %q, want cmath", mod.Name())
	}
	if mod.Abi != asr.ABIBindC {
		t.Errorf("module abi = %s, want BindC", mod.Abi)
	}

	sym, ok := mod.SymTab.LookupLocal("c_sin")
	if !ok {
		t.Fatalf("manifest function c_sin missing")
	}
	f := sym.(*asr.Function)
	if f.Abi != asr.ABIBindC || f.Deftype != asr.DefInterface {
		t.Errorf("c_sin abi/deftype = %s/%s, want BindC/Interface", f.Abi, f.Deftype)
	}
	if f.BindCName != "sin" {
		t.Errorf("c_sin bind name = %q, want sin", f.BindCName)
	}
	if len(f.Body) != 0 {
		t.Errorf("c_sin has a body of %d statements", len(f.Body))
	}
	arg := f.Args[0].(*asr.Var).Sym.(*asr.Variable)
	if !asr.TypesEqual(arg.Ttype, &asr.Real{Kind: 8}) {
		t.Errorf("c_sin arg type = %s, want Real(8)", asr.TypeName(arg.Ttype))
	}
	if ret, ok := f.ReturnVar.(*asr.Var); !ok || !asr.TypesEqual(ret.Type(), &asr.Real{Kind: 8}) {
		t.Errorf("c_sin return type wrong")
	}

	sub, ok := mod.SymTab.LookupLocal("c_srand")
	if !ok {
		t.Fatalf("manifest subroutine c_srand missing")
	}
	s := sub.(*asr.Subroutine)
	if s.BindCName != "srand" {
		t.Errorf("c_srand bind name = %q, want srand", s.BindCName)
	}

	if rep := asr.Validate(unit); !rep.Empty() {
		t.Errorf("Validate() of manifest module = %v", rep.Err())
	}
}

func TestLoadBindCDefaultBindName(t *testing.T) {
	_, mod, err := LoadBindC([]byte("library: m\nprocedures:\n  - name: f\n    returns: {type: integer}\n"))
	if err != nil {
		t.Fatalf("LoadBindC() error = %v", err)
	}
	f := mustFunction(t, mod, "f")
	if f.BindCName != "f" {
		t.Errorf("default bind name = %q, want f", f.BindCName)
	}
	ret, _ := f.ReturnVar.(*asr.Var)
	if !asr.TypesEqual(ret.Type(), &asr.Integer{Kind: 4}) {
		t.Errorf("default kind = %s, want Integer(4)", asr.TypeName(ret.Type()))
	}
}

func mustFunction(t *testing.T, mod *asr.Module, name string) *asr.Function {
	t.Helper()
	sym, ok := mod.SymTab.LookupLocal(name)
	if !ok {
		t.Fatalf("function %s missing", name)
	}
	return sym.(*asr.Function)
}

func TestLoadBindCErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantCode string
	}{
		{"not yaml", "{{{", errors.FGN001},
		{"no library", "procedures: []", errors.FGN001},
		{"nameless procedure", "library: m\nprocedures:\n  - bind: f\n", errors.FGN001},
		{"unknown type", "library: m\nprocedures:\n  - name: f\n    returns: {type: quaternion}\n", errors.FGN002},
		{"bad intent", "library: m\nprocedures:\n  - name: f\n    args: [{name: x, type: real, intent: sideways}]\n", errors.FGN001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadBindC([]byte(tt.manifest))
			if err == nil {
				t.Fatalf("LoadBindC() accepted %s", tt.name)
			}
			if code := errors.CodeOf(err); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
