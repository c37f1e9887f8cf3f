package asr

// Visitor is the read-only traversal hook pair. Enter runs pre-order;
// returning false prunes the subtree (Leave is not called for pruned
// nodes). Leave runs post-order. Callers type-switch on the variants
// they care about and ignore the rest.
type Visitor interface {
	Enter(n Node) bool
	Leave(n Node)
}

// Walk traverses every node reachable from n exactly once, descending
// children in declared field order and symbol tables in insertion
// order. Shared nodes (symbols reached both through their table and
// through references) are visited on first encounter only.
func Walk(v Visitor, n Node) {
	w := &walker{v: v, seen: make(map[Node]bool)}
	w.node(n)
}

// Inspect traverses in pre-order, calling f for every node. Returning
// false prunes the subtree.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

type inspector func(Node) bool

func (f inspector) Enter(n Node) bool { return f(n) }
func (inspector) Leave(Node)          {}

type walker struct {
	v    Visitor
	seen map[Node]bool
}

func (w *walker) node(n Node) {
	if n == nil || w.seen[n] {
		return
	}
	w.seen[n] = true
	if !w.v.Enter(n) {
		return
	}
	w.children(n)
	w.v.Leave(n)
}

func (w *walker) table(t *SymbolTable) {
	if t == nil {
		return
	}
	t.Each(func(_ string, sym Symbol) bool {
		w.node(sym)
		return true
	})
}

func (w *walker) exprs(es []Expr) {
	for _, e := range es {
		w.node(e)
	}
}

func (w *walker) stmts(ss []Stmt) {
	for _, s := range ss {
		w.node(s)
	}
}

func (w *walker) dims(ds []Dimension) {
	for _, d := range ds {
		w.node(d.Start)
		w.node(d.End)
	}
}

func (w *walker) children(n Node) {
	switch n := n.(type) {
	case *TranslationUnit:
		w.table(n.Global)
		for _, item := range n.Items {
			w.node(item)
		}

	// Symbols
	case *Program:
		w.table(n.SymTab)
		w.stmts(n.Body)
	case *Module:
		w.table(n.SymTab)
	case *Subroutine:
		w.table(n.SymTab)
		w.exprs(n.Args)
		w.stmts(n.Body)
	case *Function:
		w.table(n.SymTab)
		w.exprs(n.Args)
		w.stmts(n.Body)
		w.node(n.ReturnVar)
	case *GenericProcedure:
		for _, p := range n.Procs {
			w.node(p)
		}
	case *CustomOperator:
		for _, p := range n.Procs {
			w.node(p)
		}
	case *ExternalSymbol:
		// The target lives in another scope's walk; stopping here keeps
		// the traversal inside the referring unit.
	case *DerivedType:
		w.table(n.SymTab)
		w.node(n.Parent)
	case *ClassType:
		w.table(n.SymTab)
	case *ClassProcedure:
		w.node(n.Proc)
	case *Variable:
		w.node(n.SymbolicValue)
		w.node(n.Val)
		w.node(n.Ttype)

	// Types
	case *Integer:
		w.dims(n.Dims)
	case *Real:
		w.dims(n.Dims)
	case *Complex:
		w.dims(n.Dims)
	case *Character:
		w.node(n.LenExpr)
		w.dims(n.Dims)
	case *Logical:
		w.dims(n.Dims)
	case *List:
		w.node(n.Elem)
	case *Set:
		w.node(n.Elem)
	case *Tuple:
		for _, e := range n.Elems {
			w.node(e)
		}
	case *Dict:
		w.node(n.Key)
		w.node(n.Value)
	case *Derived:
		w.node(n.Sym)
		w.dims(n.Dims)
	case *Class:
		w.node(n.Sym)
		w.dims(n.Dims)
	case *Pointer:
		w.node(n.Target)

	// Expressions
	case *BoolOp:
		w.node(n.Left)
		w.node(n.Right)
		w.node(n.Ttype)
		w.node(n.Val)
	case *BinOp:
		w.node(n.Left)
		w.node(n.Right)
		w.node(n.Ttype)
		w.node(n.Val)
		w.node(n.Overloaded)
	case *UnaryOp:
		w.node(n.Operand)
		w.node(n.Ttype)
		w.node(n.Val)
	case *StrOp:
		w.node(n.Left)
		w.node(n.Right)
		w.node(n.Ttype)
		w.node(n.Val)
	case *Compare:
		w.node(n.Left)
		w.node(n.Right)
		w.node(n.Ttype)
		w.node(n.Val)
		w.node(n.Overloaded)
	case *FunctionCall:
		w.node(n.Sym)
		w.node(n.OriginalSym)
		w.exprs(n.Args)
		w.node(n.Ttype)
		w.node(n.Val)
	case *Var:
		w.node(n.Sym)
	case *ConstantInteger:
		w.node(n.Ttype)
	case *ConstantReal:
		w.node(n.Ttype)
	case *ConstantComplex:
		w.node(n.Ttype)
	case *ConstantLogical:
		w.node(n.Ttype)
	case *ConstantString:
		w.node(n.Ttype)
	case *IntegerBOZ:
		w.node(n.Ttype)
	case *ListConstant:
		w.exprs(n.Elems)
		w.node(n.Ttype)
	case *SetConstant:
		w.exprs(n.Elems)
		w.node(n.Ttype)
	case *TupleConstant:
		w.exprs(n.Elems)
		w.node(n.Ttype)
	case *DictConstant:
		w.exprs(n.Keys)
		w.exprs(n.Values)
		w.node(n.Ttype)
	case *ArrayRef:
		w.node(n.Sym)
		for _, ix := range n.Indices {
			w.node(ix.Left)
			w.node(ix.Right)
			w.node(ix.Step)
		}
		w.node(n.Ttype)
		w.node(n.Val)
	case *DerivedRef:
		w.node(n.Target)
		w.node(n.Member)
		w.node(n.Ttype)
		w.node(n.Val)
	case *Cast:
		w.node(n.Arg)
		w.node(n.Ttype)
		w.node(n.Val)

	// Statements
	case *Assignment:
		w.node(n.Target)
		w.node(n.Value)
	case *SubroutineCall:
		w.node(n.Sym)
		w.node(n.OriginalSym)
		w.exprs(n.Args)
	case *GoTo, *GoToTarget, *Return, *ExitLoop, *CycleLoop:
	case *If:
		w.node(n.Test)
		w.stmts(n.Body)
		w.stmts(n.OrElse)
	case *WhileLoop:
		w.node(n.Test)
		w.stmts(n.Body)
	case *DoLoop:
		w.node(n.Head.Var)
		w.node(n.Head.Start)
		w.node(n.Head.End)
		w.node(n.Head.Step)
		w.stmts(n.Body)
	case *Select:
		w.node(n.Test)
		for _, c := range n.Cases {
			w.exprs(c.Test)
			w.stmts(c.Body)
		}
		w.stmts(n.Default)
	case *Print:
		w.node(n.Fmt)
		w.exprs(n.Values)
	case *Open:
		w.node(n.Unit)
		w.node(n.File)
		w.node(n.Status)
	case *Close:
		w.node(n.Unit)
		w.node(n.Status)
	case *Read:
		w.node(n.Unit)
		w.node(n.Fmt)
		w.exprs(n.Values)
	case *Write:
		w.node(n.Unit)
		w.node(n.Fmt)
		w.exprs(n.Values)
	case *Inquire:
		w.node(n.Unit)
		w.node(n.File)
		w.node(n.Exist)
		w.node(n.Opened)
	case *Rewind:
		w.node(n.Unit)
	case *Flush:
		w.node(n.Unit)
	case *Allocate:
		for _, arg := range n.Args {
			w.node(arg.Target)
			w.dims(arg.Dims)
		}
		w.node(n.Stat)
	case *ExplicitDeallocate:
		w.exprs(n.Vars)
	case *ImplicitDeallocate:
		w.exprs(n.Vars)
	case *Nullify:
		for _, s := range n.Vars {
			w.node(s)
		}
	case *Assert:
		w.node(n.Test)
		w.node(n.Msg)
	case *Stop:
		w.node(n.Code)
	case *ErrorStop:
		w.node(n.Code)
	}
}
