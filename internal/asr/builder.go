package asr

import (
	"github.com/lcompilers/lasr/internal/errors"
)

// Builder provides checked constructors for ASR nodes. Invariants that
// are cheap to check are enforced at build time; the rest defer to
// Validate, which traverses the whole unit and reports every violation.
//
// Example usage:
//
//	a := asr.NewArena()
//	unit := asr.NewUnit(a)
//	b := asr.NewBuilder(a)
//	i32 := b.Integer(4)
//	two := b.ConstantInteger(2, i32)
//	three := b.ConstantInteger(3, i32)
//	five := b.ConstantInteger(5, i32)
//	sum, err := b.BinOp(two, asr.BinAdd, three, i32, five)
type Builder struct {
	arena *Arena
}

// NewBuilder creates a builder allocating into a.
func NewBuilder(a *Arena) *Builder {
	return &Builder{arena: a}
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

func (b *Builder) Integer(kind int, dims ...Dimension) *Integer {
	t := &Integer{Kind: kind, Dims: dims}
	b.arena.register(t)
	return t
}

func (b *Builder) Real(kind int, dims ...Dimension) *Real {
	t := &Real{Kind: kind, Dims: dims}
	b.arena.register(t)
	return t
}

func (b *Builder) Complex(kind int, dims ...Dimension) *Complex {
	t := &Complex{Kind: kind, Dims: dims}
	b.arena.register(t)
	return t
}

// Character builds a character type. Len is a literal length when
// non-negative, or one of the sentinels; lenExpr must be set iff Len is
// LenRuntime.
func (b *Builder) Character(kind, length int, lenExpr Expr, dims ...Dimension) (*Character, error) {
	if (length == LenRuntime) != (lenExpr != nil) {
		return nil, errors.New(errors.TYP001, "character length %d inconsistent with length expression", length)
	}
	if length < LenRuntime {
		return nil, errors.New(errors.TYP001, "character length %d out of range", length)
	}
	t := &Character{Kind: kind, Len: length, LenExpr: lenExpr, Dims: dims}
	b.arena.register(t)
	return t, nil
}

func (b *Builder) Logical(kind int, dims ...Dimension) *Logical {
	t := &Logical{Kind: kind, Dims: dims}
	b.arena.register(t)
	return t
}

func (b *Builder) List(elem TType) *List {
	t := &List{Elem: elem}
	b.arena.register(t)
	return t
}

func (b *Builder) Set(elem TType) *Set {
	t := &Set{Elem: elem}
	b.arena.register(t)
	return t
}

func (b *Builder) Tuple(elems ...TType) *Tuple {
	t := &Tuple{Elems: elems}
	b.arena.register(t)
	return t
}

func (b *Builder) Dict(key, value TType) *Dict {
	t := &Dict{Key: key, Value: value}
	b.arena.register(t)
	return t
}

// Derived builds a reference type to a derived-type symbol.
func (b *Builder) Derived(sym Symbol, dims ...Dimension) (*Derived, error) {
	if err := checkTypeSymbol(sym); err != nil {
		return nil, err
	}
	t := &Derived{Sym: sym, Dims: dims}
	b.arena.register(t)
	return t, nil
}

func (b *Builder) Class(sym Symbol, dims ...Dimension) (*Class, error) {
	switch sym.(type) {
	case *ClassType, *DerivedType, *ExternalSymbol:
	default:
		return nil, errors.At(errors.TYP001, Path(sym), "class type must reference a class or derived type, got %T", sym)
	}
	t := &Class{Sym: sym, Dims: dims}
	b.arena.register(t)
	return t, nil
}

// Pointer wraps target. Dimensions live on the wrapped type; the
// wrapper itself carries none, so a dimensioned pointer is written
// Pointer(Integer(kind, dims...)).
func (b *Builder) Pointer(target TType) *Pointer {
	t := &Pointer{Target: target}
	b.arena.register(t)
	return t
}

func checkTypeSymbol(sym Symbol) error {
	switch s := sym.(type) {
	case *DerivedType:
		return nil
	case *ExternalSymbol:
		if s.External != nil {
			if _, ok := s.External.(*DerivedType); !ok {
				return errors.At(errors.TYP001, Path(sym), "external target is not a derived type")
			}
		}
		return nil
	default:
		return errors.At(errors.TYP001, Path(sym), "derived type must reference a DerivedType, got %T", sym)
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// checkValue enforces the folded-value contract: if present, the value
// is a Constant* node whose type equals the outer type.
func checkValue(value Expr, outer TType) error {
	if value == nil {
		return nil
	}
	if !IsConstant(value) {
		return errors.New(errors.TYP002, "folded value %s is not a constant", exprKindName(value))
	}
	if !TypesEqual(value.Type(), outer) {
		return errors.New(errors.TYP003, "folded value type %s differs from expression type %s",
			TypeName(value.Type()), TypeName(outer))
	}
	return nil
}

func (b *Builder) ConstantInteger(n int64, t TType) *ConstantInteger {
	e := &ConstantInteger{N: n, Ttype: t}
	b.arena.register(e)
	return e
}

func (b *Builder) ConstantReal(r float64, t TType) *ConstantReal {
	e := &ConstantReal{R: r, Ttype: t}
	b.arena.register(e)
	return e
}

func (b *Builder) ConstantComplex(re, im float64, t TType) *ConstantComplex {
	e := &ConstantComplex{Re: re, Im: im, Ttype: t}
	b.arena.register(e)
	return e
}

func (b *Builder) ConstantLogical(v bool, t TType) *ConstantLogical {
	e := &ConstantLogical{Bool: v, Ttype: t}
	b.arena.register(e)
	return e
}

func (b *Builder) ConstantString(s string, t TType) *ConstantString {
	e := &ConstantString{S: s, Ttype: t}
	b.arena.register(e)
	return e
}

func (b *Builder) IntegerBOZ(n int64, radix Boz, t TType) *IntegerBOZ {
	e := &IntegerBOZ{N: n, Radix: radix, Ttype: t}
	b.arena.register(e)
	return e
}

// BinOp builds an arithmetic node. The declared type must be numeric
// and any folded value must match it.
func (b *Builder) BinOp(left Expr, op BinOpKind, right Expr, t TType, value Expr) (*BinOp, error) {
	if !isNumeric(t) {
		return nil, errors.New(errors.TYP001, "BinOp type must be numeric, got %s", TypeName(t))
	}
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &BinOp{Left: left, Op: op, Right: right, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

// Compare builds a comparison. The declared type must be Logical.
func (b *Builder) Compare(left Expr, op CmpOpKind, right Expr, t TType, value Expr) (*Compare, error) {
	if _, ok := t.(*Logical); !ok {
		return nil, errors.New(errors.TYP001, "Compare type must be Logical, got %s", TypeName(t))
	}
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &Compare{Left: left, Op: op, Right: right, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) BoolOp(left Expr, op BoolOpKind, right Expr, t TType, value Expr) (*BoolOp, error) {
	if _, ok := t.(*Logical); !ok {
		return nil, errors.New(errors.TYP001, "BoolOp type must be Logical, got %s", TypeName(t))
	}
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &BoolOp{Left: left, Op: op, Right: right, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) UnaryOp(op UnaryOpKind, operand Expr, t TType, value Expr) (*UnaryOp, error) {
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &UnaryOp{Op: op, Operand: operand, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) StrOp(left Expr, op StrOpKind, right Expr, t TType, value Expr) (*StrOp, error) {
	if _, ok := t.(*Character); !ok {
		return nil, errors.New(errors.TYP001, "StrOp type must be Character, got %s", TypeName(t))
	}
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &StrOp{Left: left, Op: op, Right: right, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

// FunctionCall records both the resolved target and the pre-resolution
// symbol. original may be nil, a GenericProcedure, or an ExternalSymbol.
func (b *Builder) FunctionCall(target, original Symbol, args []Expr, t TType, value Expr) (*FunctionCall, error) {
	if err := checkCallTarget(target); err != nil {
		return nil, err
	}
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &FunctionCall{Sym: target, OriginalSym: original, Args: args, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func checkCallTarget(target Symbol) error {
	switch target.(type) {
	case *Function, *Subroutine, *GenericProcedure, *ExternalSymbol:
		return nil
	default:
		return errors.At(errors.TYP001, Path(target), "call target must be a procedure, got %T", target)
	}
}

// VarRef builds a reference to a symbol.
func (b *Builder) VarRef(sym Symbol) *Var {
	e := &Var{Sym: sym}
	b.arena.register(e)
	return e
}

func (b *Builder) Cast(arg Expr, kind CastKind, t TType, value Expr) (*Cast, error) {
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &Cast{Arg: arg, Kind: kind, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) ListConstant(elems []Expr, t TType) (*ListConstant, error) {
	if _, ok := t.(*List); !ok {
		return nil, errors.New(errors.TYP001, "ListConstant type must be List, got %s", TypeName(t))
	}
	e := &ListConstant{Elems: elems, Ttype: t}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) TupleConstant(elems []Expr, t TType) (*TupleConstant, error) {
	tt, ok := t.(*Tuple)
	if !ok {
		return nil, errors.New(errors.TYP001, "TupleConstant type must be Tuple, got %s", TypeName(t))
	}
	if len(tt.Elems) != len(elems) {
		return nil, errors.New(errors.TYP001, "tuple arity %d does not match type arity %d", len(elems), len(tt.Elems))
	}
	e := &TupleConstant{Elems: elems, Ttype: t}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) SetConstant(elems []Expr, t TType) (*SetConstant, error) {
	if _, ok := t.(*Set); !ok {
		return nil, errors.New(errors.TYP001, "SetConstant type must be Set, got %s", TypeName(t))
	}
	e := &SetConstant{Elems: elems, Ttype: t}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) DictConstant(keys, values []Expr, t TType) (*DictConstant, error) {
	if _, ok := t.(*Dict); !ok {
		return nil, errors.New(errors.TYP001, "DictConstant type must be Dict, got %s", TypeName(t))
	}
	if len(keys) != len(values) {
		return nil, errors.New(errors.TYP001, "dict has %d keys but %d values", len(keys), len(values))
	}
	e := &DictConstant{Keys: keys, Values: values, Ttype: t}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) ArrayRef(sym Symbol, indices []ArrayIndex, t TType, value Expr) (*ArrayRef, error) {
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &ArrayRef{Sym: sym, Indices: indices, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

func (b *Builder) DerivedRef(target Expr, member Symbol, t TType, value Expr) (*DerivedRef, error) {
	if err := checkValue(value, t); err != nil {
		return nil, err
	}
	e := &DerivedRef{Target: target, Member: member, Ttype: t, Val: value}
	b.arena.register(e)
	return e, nil
}

// ----------------------------------------------------------------------------
// Symbols
// ----------------------------------------------------------------------------

// Program creates a program symbol in scope with a fresh local table.
func (b *Builder) Program(scope *SymbolTable, name string) (*Program, error) {
	p := &Program{SymTab: b.arena.NewSymbolTable(scope), name: name}
	if err := scope.Insert(name, p); err != nil {
		return nil, err
	}
	b.arena.register(p)
	return p, nil
}

// Module creates a module symbol in the global scope.
func (b *Builder) Module(global *SymbolTable, name string, abi ABI) (*Module, error) {
	m := &Module{SymTab: b.arena.NewSymbolTable(global), name: name, Abi: abi}
	if err := global.Insert(name, m); err != nil {
		return nil, err
	}
	b.arena.register(m)
	return m, nil
}

// Subroutine creates a subroutine symbol with a fresh local table.
func (b *Builder) Subroutine(scope *SymbolTable, name string, abi ABI, access Access, deftype DefType) (*Subroutine, error) {
	s := &Subroutine{
		SymTab:  b.arena.NewSymbolTable(scope),
		name:    name,
		Abi:     abi,
		Access:  access,
		Deftype: deftype,
	}
	if err := scope.Insert(name, s); err != nil {
		return nil, err
	}
	b.arena.register(s)
	return s, nil
}

// Function creates a function symbol with a fresh local table. The
// return variable is wired by SetReturnVar before finalization.
func (b *Builder) Function(scope *SymbolTable, name string, abi ABI, access Access, deftype DefType) (*Function, error) {
	f := &Function{
		SymTab:  b.arena.NewSymbolTable(scope),
		name:    name,
		Abi:     abi,
		Access:  access,
		Deftype: deftype,
	}
	if err := scope.Insert(name, f); err != nil {
		return nil, err
	}
	b.arena.register(f)
	return f, nil
}

// Variable declares a variable in scope.
func (b *Builder) Variable(scope *SymbolTable, name string, intent Intent, storage StorageType, t TType, access Access, presence Presence) (*Variable, error) {
	v := &Variable{
		name:     name,
		Intent:   intent,
		Storage:  storage,
		Ttype:    t,
		Access:   access,
		Presence: presence,
	}
	if err := scope.Insert(name, v); err != nil {
		return nil, err
	}
	b.arena.register(v)
	return v, nil
}

// GenericProcedure creates a named overload set over procs.
func (b *Builder) GenericProcedure(scope *SymbolTable, name string, procs []Symbol, access Access) (*GenericProcedure, error) {
	g := &GenericProcedure{name: name, Procs: procs, Access: access}
	if err := scope.Insert(name, g); err != nil {
		return nil, err
	}
	b.arena.register(g)
	return g, nil
}

// CustomOperator creates a user-defined operator bound to procs.
func (b *Builder) CustomOperator(scope *SymbolTable, name string, procs []Symbol, access Access) (*CustomOperator, error) {
	c := &CustomOperator{name: name, Procs: procs, Access: access}
	if err := scope.Insert(name, c); err != nil {
		return nil, err
	}
	b.arena.register(c)
	return c, nil
}

// DerivedType creates a derived-type symbol with a fresh member scope.
// parent, if non-nil, must be another derived type (possibly external).
func (b *Builder) DerivedType(scope *SymbolTable, name string, abi ABI, access Access, parent Symbol) (*DerivedType, error) {
	if parent != nil {
		if err := checkTypeSymbol(parent); err != nil {
			return nil, err
		}
	}
	d := &DerivedType{
		SymTab: b.arena.NewSymbolTable(scope),
		name:   name,
		Abi:    abi,
		Access: access,
		Parent: parent,
	}
	if err := scope.Insert(name, d); err != nil {
		return nil, err
	}
	b.arena.register(d)
	return d, nil
}

// ClassType creates a class-type symbol with a fresh scope.
func (b *Builder) ClassType(scope *SymbolTable, name string, abi ABI, access Access) (*ClassType, error) {
	c := &ClassType{SymTab: b.arena.NewSymbolTable(scope), name: name, Abi: abi, Access: access}
	if err := scope.Insert(name, c); err != nil {
		return nil, err
	}
	b.arena.register(c)
	return c, nil
}

// ClassProcedure binds name to proc inside a class scope.
func (b *Builder) ClassProcedure(scope *SymbolTable, name, procName string, proc Symbol, abi ABI) (*ClassProcedure, error) {
	c := &ClassProcedure{name: name, ProcName: procName, Proc: proc, Abi: abi}
	if err := scope.Insert(name, c); err != nil {
		return nil, err
	}
	b.arena.register(c)
	return c, nil
}

// ExternalSymbol creates the cross-module handle and requires the
// declared (module, scopes, original) path to locate a symbol reachable
// from scope's global table.
func (b *Builder) ExternalSymbol(scope *SymbolTable, name, moduleName string, scopeNames []string, originalName string, access Access) (*ExternalSymbol, error) {
	ext := &ExternalSymbol{
		name:         name,
		ModuleName:   moduleName,
		ScopeNames:   scopeNames,
		OriginalName: originalName,
		Access:       access,
	}
	if _, err := ResolveExternal(scope.Root(), ext); err != nil {
		return nil, err
	}
	if err := scope.Insert(name, ext); err != nil {
		return nil, err
	}
	b.arena.register(ext)
	return ext, nil
}

// ----------------------------------------------------------------------------
// Finalization
// ----------------------------------------------------------------------------

// SetArgs wires a procedure's argument list to variables already
// declared in its scope.
func (b *Builder) SetArgs(sym Symbol, names ...string) error {
	var args []Expr
	scope := sym.Scope()
	for _, name := range names {
		v, ok := scope.LookupLocal(name)
		if !ok {
			return errors.At(errors.SYM002, Path(sym), "argument %q not declared", name)
		}
		args = append(args, b.VarRef(v))
	}
	switch s := sym.(type) {
	case *Function:
		s.Args = args
	case *Subroutine:
		s.Args = args
	default:
		return errors.At(errors.TYP001, Path(sym), "%T takes no arguments", sym)
	}
	return nil
}

// SetReturnVar wires f's return variable. The named variable must carry
// IntentReturnVar.
func (b *Builder) SetReturnVar(f *Function, name string) error {
	sym, ok := f.SymTab.LookupLocal(name)
	if !ok {
		return errors.At(errors.SYM002, Path(f), "return variable %q not declared", name)
	}
	v, ok := sym.(*Variable)
	if !ok || v.Intent != IntentReturnVar {
		return errors.At(errors.TYP001, Path(f), "%q is not a ReturnVar variable", name)
	}
	f.ReturnVar = b.VarRef(v)
	return nil
}

// Finalize runs the per-procedure checks that need the complete body:
// matched goto pairs, the return-variable invariant, and the ABI and
// definition-type rules. It is triggered once per procedure by the
// elaboration collaborator.
func (b *Builder) Finalize(sym Symbol) error {
	rep := &errors.Report{}
	switch s := sym.(type) {
	case *Function:
		checkGotoPairs(rep, s, s.Body)
		checkReturnVar(rep, s)
		checkDeftype(rep, s, s.Abi, s.Deftype, len(s.Body))
	case *Subroutine:
		checkGotoPairs(rep, s, s.Body)
		checkDeftype(rep, s, s.Abi, s.Deftype, len(s.Body))
	case *Program:
		checkGotoPairs(rep, s, s.Body)
	default:
		return errors.At(errors.TYP001, Path(sym), "%T is not a procedure", sym)
	}
	return rep.Err()
}

func isNumeric(t TType) bool {
	switch t.(type) {
	case *Integer, *Real, *Complex:
		return true
	default:
		return false
	}
}
