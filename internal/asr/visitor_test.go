package asr

import (
	"testing"
)

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	m, err := b.Module(unit.Global, "m", ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	declareIdentityFunction(t, b, m.SymTab, "f")
	unit.Items = append(unit.Items, m)

	counts := make(map[Node]int)
	Inspect(unit, func(n Node) bool {
		counts[n]++
		return true
	})
	for n, c := range counts {
		if c != 1 {
			t.Errorf("node %T visited %d times, want 1", n, c)
		}
	}

	var funcs, vars int
	Inspect(unit, func(n Node) bool {
		switch n.(type) {
		case *Function:
			funcs++
		case *Variable:
			vars++
		}
		return true
	})
	if funcs != 1 {
		t.Errorf("walk found %d functions, want 1", funcs)
	}
	if vars != 2 {
		t.Errorf("walk found %d variables, want 2", vars)
	}
}

func TestWalkSharedNodesThroughReferences(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	// The same variable is reachable through the symbol table and
	// through two Var references in the body.
	p, err := b.Program(unit.Global, "main")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	v, err := b.Variable(p.SymTab, "x", IntentLocal, StorageDefault, b.Integer(4), AccessPublic, PresenceRequired)
	if err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	p.Body = []Stmt{
		&Assignment{Target: b.VarRef(v), Value: b.VarRef(v)},
	}

	seen := 0
	Inspect(unit, func(n Node) bool {
		if n == Node(v) {
			seen++
		}
		return true
	})
	if seen != 1 {
		t.Errorf("shared variable visited %d times, want 1", seen)
	}
}

func TestWalkPruning(t *testing.T) {
	a := NewArena()
	unit := NewUnit(a)
	b := NewBuilder(a)

	m, err := b.Module(unit.Global, "m", ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	declareIdentityFunction(t, b, m.SymTab, "f")

	// Pruning at the module must hide everything below it.
	var inside int
	Inspect(unit, func(n Node) bool {
		switch n.(type) {
		case *Module:
			return false
		case *Function, *Variable:
			inside++
		}
		return true
	})
	if inside != 0 {
		t.Errorf("pruned walk still reached %d symbols below the module", inside)
	}
}

type orderVisitor struct {
	enters []string
	leaves []string
}

func (o *orderVisitor) Enter(n Node) bool {
	o.enters = append(o.enters, kindOf(n))
	return true
}

func (o *orderVisitor) Leave(n Node) {
	o.leaves = append(o.leaves, kindOf(n))
}

func kindOf(n Node) string {
	switch n.(type) {
	case *BinOp:
		return "BinOp"
	case *ConstantInteger:
		return "ConstantInteger"
	case *Integer:
		return "Integer"
	default:
		return "other"
	}
}

func TestWalkPrePostOrder(t *testing.T) {
	a := NewArena()
	b := NewBuilder(a)
	i32 := b.Integer(4)
	sum, err := b.BinOp(b.ConstantInteger(2, i32), BinAdd, b.ConstantInteger(3, i32), i32, nil)
	if err != nil {
		t.Fatalf("BinOp() error = %v", err)
	}

	v := &orderVisitor{}
	Walk(v, sum)

	if v.enters[0] != "BinOp" {
		t.Errorf("first Enter = %s, want BinOp (pre-order)", v.enters[0])
	}
	if v.leaves[len(v.leaves)-1] != "BinOp" {
		t.Errorf("last Leave = %s, want BinOp (post-order)", v.leaves[len(v.leaves)-1])
	}
	if v.enters[1] != "ConstantInteger" {
		t.Errorf("second Enter = %s, want left operand first", v.enters[1])
	}
}
