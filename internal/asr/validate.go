package asr

import (
	"github.com/lcompilers/lasr/internal/errors"
)

// Validate traverses the whole unit and reports every invariant
// violation. It never aborts early; well-formed units produce an empty
// report. Builder constructors enforce the cheap invariants at build
// time; Validate re-checks them together with the ones that need the
// finished tree.
func Validate(u *TranslationUnit) *errors.Report {
	rep := &errors.Report{}
	checkScopeForest(rep, u.Global)
	Inspect(u, func(n Node) bool {
		switch n := n.(type) {
		case *Function:
			checkGotoPairs(rep, n, n.Body)
			checkReturnVar(rep, n)
			checkDeftype(rep, n, n.Abi, n.Deftype, len(n.Body))
		case *Subroutine:
			checkGotoPairs(rep, n, n.Body)
			checkDeftype(rep, n, n.Abi, n.Deftype, len(n.Body))
		case *Program:
			checkGotoPairs(rep, n, n.Body)
		case *DerivedType:
			checkDerivedParent(rep, n)
		case *ExternalSymbol:
			checkExternal(rep, u, n)
		case *Variable:
			if n.Storage == StorageParameter && n.Val == nil {
				rep.Addf(errors.VAL004, Path(n), "parameter has no folded value")
			}
			checkFoldedValue(rep, n.Val, n.Ttype, "variable value")
		case Expr:
			checkExpr(rep, n)
		}
		return true
	})
	return rep
}

// checkScopeForest verifies that parent links form a forest: no scope is
// its own ancestor.
func checkScopeForest(rep *errors.Report, global *SymbolTable) {
	var tables []*SymbolTable
	var collect func(t *SymbolTable)
	seen := make(map[*SymbolTable]bool)
	collect = func(t *SymbolTable) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		tables = append(tables, t)
		t.Each(func(_ string, sym Symbol) bool {
			collect(sym.Scope())
			return true
		})
	}
	collect(global)
	for _, t := range tables {
		ancestors := make(map[*SymbolTable]bool)
		for p := t.Parent(); p != nil; p = p.Parent() {
			if p == t || ancestors[p] {
				where := "global scope"
				if t.Owner() != nil {
					where = Path(t.Owner())
				}
				rep.Addf(errors.VAL007, where, "scope is its own ancestor")
				break
			}
			ancestors[p] = true
		}
	}
}

// checkGotoPairs requires each GoTo(k) in a procedure body to have a
// matching GoToTarget(k), and vice versa. Reported per unmatched id.
func checkGotoPairs(rep *errors.Report, sym Symbol, body []Stmt) {
	gotos := make(map[int]int)
	targets := make(map[int]int)
	var scan func(ss []Stmt)
	scan = func(ss []Stmt) {
		for _, s := range ss {
			switch s := s.(type) {
			case *GoTo:
				gotos[s.ID]++
			case *GoToTarget:
				targets[s.ID]++
			case *If:
				scan(s.Body)
				scan(s.OrElse)
			case *WhileLoop:
				scan(s.Body)
			case *DoLoop:
				scan(s.Body)
			case *Select:
				for _, c := range s.Cases {
					scan(c.Body)
				}
				scan(s.Default)
			}
		}
	}
	scan(body)
	for id := range gotos {
		if targets[id] == 0 {
			rep.Addf(errors.VAL001, Path(sym), "goto %d has no target", id)
		}
	}
	for id, n := range targets {
		if gotos[id] == 0 {
			rep.Addf(errors.VAL001, Path(sym), "goto target %d is never jumped to", id)
		} else if n > 1 {
			rep.Addf(errors.VAL001, Path(sym), "goto target %d appears %d times", id, n)
		}
	}
}

// checkReturnVar requires exactly one IntentReturnVar variable in the
// function scope, and the function's ReturnVar reference to name it.
func checkReturnVar(rep *errors.Report, f *Function) {
	var returns []*Variable
	f.SymTab.Each(func(_ string, sym Symbol) bool {
		if v, ok := sym.(*Variable); ok && v.Intent == IntentReturnVar {
			returns = append(returns, v)
		}
		return true
	})
	if len(returns) != 1 {
		rep.Addf(errors.VAL002, Path(f), "function has %d return variables, want exactly 1", len(returns))
		return
	}
	ref, ok := f.ReturnVar.(*Var)
	if !ok || ref == nil {
		rep.Addf(errors.VAL002, Path(f), "function return reference is unset")
		return
	}
	if ref.Sym != Symbol(returns[0]) {
		rep.Addf(errors.VAL002, Path(f), "function return reference does not name the ReturnVar variable")
	}
}

// checkDeftype enforces the ABI and definition-type rules: Source
// implies an implementation with a body; Interface implies no body.
func checkDeftype(rep *errors.Report, sym Symbol, abi ABI, deftype DefType, bodyLen int) {
	if abi == ABISource {
		if deftype != DefImplementation {
			rep.Addf(errors.VAL003, Path(sym), "abi Source requires deftype Implementation, got %s", deftype)
		} else if bodyLen == 0 {
			rep.Addf(errors.VAL003, Path(sym), "abi Source requires a non-empty body")
		}
	}
	if deftype == DefInterface && bodyLen != 0 {
		rep.Addf(errors.VAL003, Path(sym), "deftype Interface requires an empty body, got %d statements", bodyLen)
	}
}

func checkDerivedParent(rep *errors.Report, d *DerivedType) {
	if d.Parent == nil {
		return
	}
	parent := d.Parent
	if ext, ok := parent.(*ExternalSymbol); ok {
		if ext.External == nil {
			return // resolution pending; reachability reported on the external itself
		}
		parent = ext.External
	}
	if _, ok := parent.(*DerivedType); !ok {
		rep.Addf(errors.VAL006, Path(d), "parent %q is not a derived type", d.Parent.Name())
	}
}

// checkExternal re-runs the declared path and requires it to land on the
// recorded target.
func checkExternal(rep *errors.Report, u *TranslationUnit, ext *ExternalSymbol) {
	probe := &ExternalSymbol{
		name:         ext.name,
		ModuleName:   ext.ModuleName,
		ScopeNames:   ext.ScopeNames,
		OriginalName: ext.OriginalName,
	}
	target, err := ResolveExternal(u.Global, probe)
	if err != nil {
		rep.Addf(errors.VAL008, Path(ext), "external path %s.%s does not resolve", ext.ModuleName, ext.OriginalName)
		return
	}
	if ext.External != nil && ext.External != target {
		rep.Addf(errors.VAL008, Path(ext), "external target does not match its declared path")
	}
}

// checkExpr re-checks the per-node typing rules on a finished tree.
func checkExpr(rep *errors.Report, e Expr) {
	switch e := e.(type) {
	case *Compare:
		if _, ok := e.Ttype.(*Logical); !ok {
			rep.Addf(errors.VAL005, "", "Compare has non-Logical type %s", TypeName(e.Ttype))
		}
	case *BoolOp:
		if _, ok := e.Ttype.(*Logical); !ok {
			rep.Addf(errors.VAL005, "", "BoolOp has non-Logical type %s", TypeName(e.Ttype))
		}
	case *BinOp:
		if !isNumeric(e.Ttype) {
			rep.Addf(errors.VAL005, "", "BinOp has non-numeric type %s", TypeName(e.Ttype))
		}
	case *StrOp:
		if _, ok := e.Ttype.(*Character); !ok {
			rep.Addf(errors.VAL005, "", "StrOp has non-Character type %s", TypeName(e.Ttype))
		}
	}
	if v := e.Value(); v != nil && v != e {
		checkFoldedValue(rep, v, e.Type(), exprKindName(e))
	}
}

func checkFoldedValue(rep *errors.Report, v Expr, outer TType, what string) {
	if v == nil {
		return
	}
	if !IsConstant(v) {
		rep.Addf(errors.VAL004, "", "%s folded value is %s, not a constant", what, exprKindName(v))
		return
	}
	if !TypesEqual(v.Type(), outer) {
		rep.Addf(errors.VAL004, "", "%s folded value type %s differs from %s", what, TypeName(v.Type()), TypeName(outer))
	}
}
