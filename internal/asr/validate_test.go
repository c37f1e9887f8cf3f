package asr

import (
	"testing"

	"github.com/lcompilers/lasr/internal/errors"
)

func TestValidateWellFormedUnit(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	m, err := b.Module(unit.Global, "m", ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	declareIdentityFunction(t, b, m.SymTab, "f")
	unit.Items = append(unit.Items, m)

	if rep := Validate(unit); !rep.Empty() {
		t.Errorf("Validate() of well-formed unit = %v", rep.Err())
	}
}

func TestValidateGotoPairs(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	p.Body = []Stmt{&GoTo{ID: 7}, &GoToTarget{ID: 7}, &Return{}}

	if rep := Validate(unit); !rep.Empty() {
		t.Fatalf("Validate() with matched pair = %v", rep.Err())
	}

	// Removing the target yields exactly one violation at the goto.
	p.Body = []Stmt{&GoTo{ID: 7}, &Return{}}
	rep := Validate(unit)
	if len(rep.All()) != 1 {
		t.Fatalf("Validate() reported %d violations, want exactly 1", len(rep.All()))
	}
	if got := rep.All()[0].Code; got != errors.VAL001 {
		t.Errorf("violation code = %q, want %q", got, errors.VAL001)
	}
}

func TestValidateGotoInsideNestedBlocks(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	cond := b.ConstantLogical(true, b.Logical(4))
	p.Body = []Stmt{
		&If{Test: cond, Body: []Stmt{&GoTo{ID: 3}}},
		&WhileLoop{Test: cond, Body: []Stmt{&GoToTarget{ID: 3}}},
	}
	if rep := Validate(unit); !rep.Empty() {
		t.Errorf("Validate() with pair split across blocks = %v", rep.Err())
	}
}

func TestValidateReturnVar(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	f, err := b.Function(unit.Global, "f", ABISource, AccessPublic, DefImplementation)
	if err != nil {
		t.Fatalf("Function() error = %v", err)
	}
	f.Body = []Stmt{&Return{}}

	// No return variable at all.
	rep := Validate(unit)
	if !hasCode(rep, errors.VAL002) {
		t.Errorf("Validate() without return var = %v, want VAL002", rep.Err())
	}

	// Exactly one, properly referenced.
	if _, err := b.Variable(f.SymTab, "r", IntentReturnVar, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	if err := b.SetReturnVar(f, "r"); err != nil {
		t.Fatalf("SetReturnVar() error = %v", err)
	}
	if rep := Validate(unit); hasCode(rep, errors.VAL002) {
		t.Errorf("Validate() with one return var = %v", rep.Err())
	}

	// A second ReturnVar variable is a violation again.
	if _, err := b.Variable(f.SymTab, "r2", IntentReturnVar, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired); err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	if rep := Validate(unit); !hasCode(rep, errors.VAL002) {
		t.Errorf("Validate() with two return vars = %v, want VAL002", rep.Err())
	}
}

func TestValidateAbiRules(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	s, err := b.Subroutine(unit.Global, "s", ABISource, AccessPublic, DefImplementation)
	if err != nil {
		t.Fatalf("Subroutine() error = %v", err)
	}

	// Source with an empty body.
	rep := Validate(unit)
	if !hasCode(rep, errors.VAL003) {
		t.Errorf("Validate() of bodyless Source subroutine = %v, want VAL003", rep.Err())
	}

	s.Body = []Stmt{&Return{}}
	if rep := Validate(unit); hasCode(rep, errors.VAL003) {
		t.Errorf("Validate() of Source subroutine with body = %v", rep.Err())
	}

	// Interface with a body.
	s.Deftype = DefInterface
	s.Abi = ABILFortranModule
	if rep := Validate(unit); !hasCode(rep, errors.VAL003) {
		t.Errorf("Validate() of interface with body = %v, want VAL003", rep.Err())
	}
}

func TestValidateFoldedValueContract(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	i32 := b.Integer(4)

	// Hand-assembled node bypassing the builder: value type differs.
	bad := &BinOp{
		Left:  b.ConstantInteger(1, i32),
		Op:    BinAdd,
		Right: b.ConstantInteger(2, i32),
		Ttype: i32,
		Val:   b.ConstantInteger(3, b.Integer(8)),
	}
	p.Body = []Stmt{&Assignment{Target: bad, Value: bad}}

	rep := Validate(unit)
	if !hasCode(rep, errors.VAL004) {
		t.Errorf("Validate() of mismatched folded value = %v, want VAL004", rep.Err())
	}
}

func TestValidateExprTyping(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	i32 := b.Integer(4)
	bad := &Compare{
		Left:  b.ConstantInteger(1, i32),
		Op:    CmpLt,
		Right: b.ConstantInteger(2, i32),
		Ttype: i32, // must be Logical
	}
	p.Body = []Stmt{&Assignment{Target: bad, Value: bad}}

	rep := Validate(unit)
	if !hasCode(rep, errors.VAL005) {
		t.Errorf("Validate() of non-Logical Compare = %v, want VAL005", rep.Err())
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	p.Body = []Stmt{&GoTo{ID: 1}, &GoTo{ID: 2}}

	f, err := b.Function(unit.Global, "f", ABISource, AccessPublic, DefImplementation)
	if err != nil {
		t.Fatalf("Function() error = %v", err)
	}
	f.Body = []Stmt{&Return{}}

	rep := Validate(unit)
	if len(rep.All()) < 3 {
		t.Errorf("Validate() collected %d violations, want at least 3 (two gotos, missing return var)", len(rep.All()))
	}
}

func hasCode(rep *errors.Report, code string) bool {
	for _, e := range rep.All() {
		if e.Code == code {
			return true
		}
	}
	return false
}
