package asr

// Rewriter is the transform hook. Rewrite receives each owned node
// post-order (children already rewritten) and returns the node itself
// or a replacement. Identity returns cost nothing; a replacement must
// keep the slot's variant family (an Expr slot takes an Expr), which is
// asserted - returning the wrong family is a programming error, not a
// runtime condition.
type Rewriter interface {
	Rewrite(n Node) Node
}

// RewriteFunc adapts a function to the Rewriter interface.
type RewriteFunc func(Node) Node

func (f RewriteFunc) Rewrite(n Node) Node { return f(n) }

// Transform rewrites the unit in place through fn under single-writer
// discipline. Symbols are identity anchors and are never replaced; their
// owned fields (types, initializers, bodies) are rewritten. References
// (Var targets, call targets) are left to the symbol's defining site.
func Transform(u *TranslationUnit, fn Rewriter) {
	t := &transformer{fn: fn, seen: make(map[Node]bool), replaced: make(map[Node]Node)}
	t.table(u.Global)
	for _, item := range u.Items {
		t.dispatch(item)
	}
}

// TransformExpr rewrites a detached expression tree and returns its
// replacement. Used by passes operating below unit granularity.
func TransformExpr(e Expr, fn Rewriter) Expr {
	t := &transformer{fn: fn, seen: make(map[Node]bool), replaced: make(map[Node]Node)}
	return t.expr(e)
}

type transformer struct {
	fn       Rewriter
	seen     map[Node]bool
	replaced map[Node]Node
}

func (t *transformer) expr(e Expr) Expr {
	if e == nil {
		return nil
	}
	if rep, ok := t.replaced[e]; ok {
		return rep.(Expr)
	}
	t.exprChildren(e)
	out := t.fn.Rewrite(e)
	t.replaced[e] = out
	if out == nil {
		return nil
	}
	return out.(Expr)
}

func (t *transformer) stmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	t.stmtChildren(s)
	out := t.fn.Rewrite(s)
	if out == nil {
		return nil
	}
	return out.(Stmt)
}

func (t *transformer) ttype(ty TType) TType {
	if ty == nil {
		return nil
	}
	if rep, ok := t.replaced[ty]; ok {
		return rep.(TType)
	}
	t.typeChildren(ty)
	out := t.fn.Rewrite(ty)
	t.replaced[ty] = out
	if out == nil {
		return nil
	}
	return out.(TType)
}

func (t *transformer) exprs(es []Expr) {
	for i, e := range es {
		es[i] = t.expr(e)
	}
}

func (t *transformer) stmts(ss []Stmt) {
	for i, s := range ss {
		ss[i] = t.stmt(s)
	}
}

func (t *transformer) dims(ds []Dimension) {
	for i := range ds {
		ds[i].Start = t.expr(ds[i].Start)
		ds[i].End = t.expr(ds[i].End)
	}
}

// table rewrites the owned fields of every symbol in a scope.
func (t *transformer) table(tbl *SymbolTable) {
	if tbl == nil {
		return
	}
	tbl.Each(func(_ string, sym Symbol) bool {
		t.dispatch(sym)
		return true
	})
}

func (t *transformer) dispatch(n Node) {
	if n == nil || t.seen[n] {
		return
	}
	t.seen[n] = true
	switch n := n.(type) {
	case *TranslationUnit:
		t.table(n.Global)
		for _, item := range n.Items {
			t.dispatch(item)
		}
	case *Program:
		t.table(n.SymTab)
		t.stmts(n.Body)
	case *Module:
		t.table(n.SymTab)
	case *Subroutine:
		t.table(n.SymTab)
		t.exprs(n.Args)
		t.stmts(n.Body)
	case *Function:
		t.table(n.SymTab)
		t.exprs(n.Args)
		t.stmts(n.Body)
		n.ReturnVar = t.expr(n.ReturnVar)
	case *DerivedType:
		t.table(n.SymTab)
	case *ClassType:
		t.table(n.SymTab)
	case *Variable:
		n.SymbolicValue = t.expr(n.SymbolicValue)
		n.Val = t.expr(n.Val)
		n.Ttype = t.ttype(n.Ttype)
	case *GenericProcedure, *CustomOperator, *ExternalSymbol, *ClassProcedure:
		// Reference-only symbols own no rewritable fields.
	}
}

func (t *transformer) exprChildren(e Expr) {
	switch e := e.(type) {
	case *BoolOp:
		e.Left = t.expr(e.Left)
		e.Right = t.expr(e.Right)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *BinOp:
		e.Left = t.expr(e.Left)
		e.Right = t.expr(e.Right)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
		e.Overloaded = t.expr(e.Overloaded)
	case *UnaryOp:
		e.Operand = t.expr(e.Operand)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *StrOp:
		e.Left = t.expr(e.Left)
		e.Right = t.expr(e.Right)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *Compare:
		e.Left = t.expr(e.Left)
		e.Right = t.expr(e.Right)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
		e.Overloaded = t.expr(e.Overloaded)
	case *FunctionCall:
		t.exprs(e.Args)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *ListConstant:
		t.exprs(e.Elems)
		e.Ttype = t.ttype(e.Ttype)
	case *SetConstant:
		t.exprs(e.Elems)
		e.Ttype = t.ttype(e.Ttype)
	case *TupleConstant:
		t.exprs(e.Elems)
		e.Ttype = t.ttype(e.Ttype)
	case *DictConstant:
		t.exprs(e.Keys)
		t.exprs(e.Values)
		e.Ttype = t.ttype(e.Ttype)
	case *ArrayRef:
		for i := range e.Indices {
			e.Indices[i].Left = t.expr(e.Indices[i].Left)
			e.Indices[i].Right = t.expr(e.Indices[i].Right)
			e.Indices[i].Step = t.expr(e.Indices[i].Step)
		}
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *DerivedRef:
		e.Target = t.expr(e.Target)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *Cast:
		e.Arg = t.expr(e.Arg)
		e.Ttype = t.ttype(e.Ttype)
		e.Val = t.expr(e.Val)
	case *Var, *ConstantInteger, *ConstantReal, *ConstantComplex,
		*ConstantLogical, *ConstantString, *IntegerBOZ:
		// Leaves; the referenced symbol is rewritten at its defining site.
	}
}

func (t *transformer) stmtChildren(s Stmt) {
	switch s := s.(type) {
	case *Assignment:
		s.Target = t.expr(s.Target)
		s.Value = t.expr(s.Value)
	case *SubroutineCall:
		t.exprs(s.Args)
	case *If:
		s.Test = t.expr(s.Test)
		t.stmts(s.Body)
		t.stmts(s.OrElse)
	case *WhileLoop:
		s.Test = t.expr(s.Test)
		t.stmts(s.Body)
	case *DoLoop:
		s.Head.Var = t.expr(s.Head.Var)
		s.Head.Start = t.expr(s.Head.Start)
		s.Head.End = t.expr(s.Head.End)
		s.Head.Step = t.expr(s.Head.Step)
		t.stmts(s.Body)
	case *Select:
		s.Test = t.expr(s.Test)
		for i := range s.Cases {
			t.exprs(s.Cases[i].Test)
			t.stmts(s.Cases[i].Body)
		}
		t.stmts(s.Default)
	case *Print:
		s.Fmt = t.expr(s.Fmt)
		t.exprs(s.Values)
	case *Open:
		s.Unit = t.expr(s.Unit)
		s.File = t.expr(s.File)
		s.Status = t.expr(s.Status)
	case *Close:
		s.Unit = t.expr(s.Unit)
		s.Status = t.expr(s.Status)
	case *Read:
		s.Unit = t.expr(s.Unit)
		s.Fmt = t.expr(s.Fmt)
		t.exprs(s.Values)
	case *Write:
		s.Unit = t.expr(s.Unit)
		s.Fmt = t.expr(s.Fmt)
		t.exprs(s.Values)
	case *Inquire:
		s.Unit = t.expr(s.Unit)
		s.File = t.expr(s.File)
		s.Exist = t.expr(s.Exist)
		s.Opened = t.expr(s.Opened)
	case *Rewind:
		s.Unit = t.expr(s.Unit)
	case *Flush:
		s.Unit = t.expr(s.Unit)
	case *Allocate:
		for i := range s.Args {
			s.Args[i].Target = t.expr(s.Args[i].Target)
			t.dims(s.Args[i].Dims)
		}
		s.Stat = t.expr(s.Stat)
	case *ExplicitDeallocate:
		t.exprs(s.Vars)
	case *ImplicitDeallocate:
		t.exprs(s.Vars)
	case *Assert:
		s.Test = t.expr(s.Test)
		s.Msg = t.expr(s.Msg)
	case *Stop:
		s.Code = t.expr(s.Code)
	case *ErrorStop:
		s.Code = t.expr(s.Code)
	case *GoTo, *GoToTarget, *Return, *ExitLoop, *CycleLoop, *Nullify:
		// No owned expression children.
	}
}

func (t *transformer) typeChildren(ty TType) {
	switch ty := ty.(type) {
	case *Integer:
		t.dims(ty.Dims)
	case *Real:
		t.dims(ty.Dims)
	case *Complex:
		t.dims(ty.Dims)
	case *Character:
		ty.LenExpr = t.expr(ty.LenExpr)
		t.dims(ty.Dims)
	case *Logical:
		t.dims(ty.Dims)
	case *List:
		ty.Elem = t.ttype(ty.Elem)
	case *Set:
		ty.Elem = t.ttype(ty.Elem)
	case *Tuple:
		for i := range ty.Elems {
			ty.Elems[i] = t.ttype(ty.Elems[i])
		}
	case *Dict:
		ty.Key = t.ttype(ty.Key)
		ty.Value = t.ttype(ty.Value)
	case *Derived:
		t.dims(ty.Dims)
	case *Class:
		t.dims(ty.Dims)
	case *Pointer:
		ty.Target = t.ttype(ty.Target)
	}
}
