package asr

import (
	"fmt"
	"strconv"
	"strings"
)

// Pickle renders a subtree in the canonical textual form used by
// reference-output tests: parenthesized S-expressions, variant names in
// PascalCase, fields in declared order, optionals elided when absent,
// sequences in brackets. Symbol tables print a canonical ordinal
// assigned on first encounter, so two isomorphic graphs pickle
// identically regardless of arena identity.
func Pickle(n Node) string {
	p := &pickler{tables: make(map[*SymbolTable]int)}
	p.nodeBare(n)
	return p.b.String()
}

type pickler struct {
	b      strings.Builder
	tables map[*SymbolTable]int
}

func (p *pickler) tableID(t *SymbolTable) int {
	if id, ok := p.tables[t]; ok {
		return id
	}
	id := len(p.tables) + 1
	p.tables[t] = id
	return id
}

func (p *pickler) open(name string) {
	p.b.WriteByte('(')
	p.b.WriteString(name)
}

func (p *pickler) close() {
	p.b.WriteByte(')')
}

func (p *pickler) sep() {
	p.b.WriteByte(' ')
}

func (p *pickler) str(s string) {
	p.sep()
	p.b.WriteString(strconv.Quote(s))
}

func (p *pickler) int(n int64) {
	p.sep()
	p.b.WriteString(strconv.FormatInt(n, 10))
}

func (p *pickler) float(f float64) {
	p.sep()
	p.b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func (p *pickler) bool(v bool) {
	p.sep()
	if v {
		p.b.WriteString(".true.")
	} else {
		p.b.WriteString(".false.")
	}
}

func (p *pickler) enum(s fmt.Stringer) {
	p.sep()
	p.b.WriteString(s.String())
}

// symRef renders a reference to a symbol as its table ordinal plus name.
func (p *pickler) symRef(sym Symbol) {
	if sym == nil {
		return
	}
	parent := sym.ParentTable()
	p.sep()
	if parent == nil {
		p.b.WriteString("0 " + sym.Name())
		return
	}
	p.b.WriteString(strconv.Itoa(p.tableID(parent)))
	p.b.WriteByte(' ')
	p.b.WriteString(sym.Name())
}

// table renders a symbol table with its canonical ordinal and entries in
// insertion order.
func (p *pickler) table(t *SymbolTable) {
	if t == nil {
		return
	}
	p.sep()
	p.b.WriteString("(SymbolTable ")
	p.b.WriteString(strconv.Itoa(p.tableID(t)))
	p.b.WriteString(" {")
	first := true
	t.Each(func(name string, sym Symbol) bool {
		if !first {
			p.b.WriteString(", ")
		}
		first = false
		p.b.WriteString(name)
		p.b.WriteString(":")
		p.node(sym)
		return true
	})
	p.b.WriteString("})")
}

func (p *pickler) nodes(items []Node) {
	p.sep()
	p.b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			p.b.WriteByte(' ')
		}
		p.nodeBare(item)
	}
	p.b.WriteByte(']')
}

func (p *pickler) exprs(es []Expr) {
	items := make([]Node, len(es))
	for i, e := range es {
		items[i] = e
	}
	p.nodes(items)
}

func (p *pickler) stmts(ss []Stmt) {
	items := make([]Node, len(ss))
	for i, s := range ss {
		items[i] = s
	}
	p.nodes(items)
}

func (p *pickler) ttypes(ts []TType) {
	items := make([]Node, len(ts))
	for i, t := range ts {
		items[i] = t
	}
	p.nodes(items)
}

func (p *pickler) strs(ss []string) {
	p.sep()
	p.b.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			p.b.WriteByte(' ')
		}
		p.b.WriteString(strconv.Quote(s))
	}
	p.b.WriteByte(']')
}

func (p *pickler) syms(ss []Symbol) {
	p.sep()
	p.b.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			p.b.WriteByte(' ')
		}
		if parent := s.ParentTable(); parent != nil {
			p.b.WriteString(strconv.Itoa(p.tableID(parent)))
			p.b.WriteByte(' ')
		}
		p.b.WriteString(s.Name())
	}
	p.b.WriteByte(']')
}

func (p *pickler) dims(ds []Dimension) {
	p.sep()
	p.b.WriteByte('[')
	for i, d := range ds {
		if i > 0 {
			p.b.WriteByte(' ')
		}
		p.b.WriteByte('(')
		if d.Start != nil {
			p.nodeBare(d.Start)
		}
		if d.End != nil {
			if d.Start != nil {
				p.b.WriteByte(' ')
			}
			p.nodeBare(d.End)
		}
		p.b.WriteByte(')')
	}
	p.b.WriteByte(']')
}

// node renders with a leading separator; nodeBare without.
func (p *pickler) node(n Node) {
	if n == nil {
		return
	}
	p.sep()
	p.nodeBare(n)
}

func (p *pickler) nodeBare(n Node) {
	switch n := n.(type) {
	case nil:
		return
	case *TranslationUnit:
		p.open("TranslationUnit")
		p.table(n.Global)
		p.nodes(n.Items)
		p.close()

	// Symbols (defining occurrences)
	case *Program:
		p.open("Program")
		p.table(n.SymTab)
		p.sym(n.name)
		p.stmts(n.Body)
		p.close()
	case *Module:
		p.open("Module")
		p.table(n.SymTab)
		p.sym(n.name)
		p.strs(n.Dependencies)
		p.enum(n.Abi)
		p.enum(n.Access)
		p.close()
	case *Subroutine:
		p.open("Subroutine")
		p.table(n.SymTab)
		p.sym(n.name)
		p.exprs(n.Args)
		p.stmts(n.Body)
		p.enum(n.Abi)
		p.enum(n.Access)
		p.enum(n.Deftype)
		if n.BindCName != "" {
			p.str(n.BindCName)
		}
		p.close()
	case *Function:
		p.open("Function")
		p.table(n.SymTab)
		p.sym(n.name)
		p.exprs(n.Args)
		p.stmts(n.Body)
		p.node(n.ReturnVar)
		p.enum(n.Abi)
		p.enum(n.Access)
		p.enum(n.Deftype)
		if n.BindCName != "" {
			p.str(n.BindCName)
		}
		p.close()
	case *GenericProcedure:
		p.open("GenericProcedure")
		p.sym(n.name)
		p.syms(n.Procs)
		p.enum(n.Access)
		p.close()
	case *CustomOperator:
		p.open("CustomOperator")
		p.sym(n.name)
		p.syms(n.Procs)
		p.enum(n.Access)
		p.close()
	case *ExternalSymbol:
		p.open("ExternalSymbol")
		p.sym(n.name)
		p.str(n.ModuleName)
		p.strs(n.ScopeNames)
		p.sym(n.OriginalName)
		p.enum(n.Access)
		p.close()
	case *DerivedType:
		p.open("DerivedType")
		p.table(n.SymTab)
		p.sym(n.name)
		p.strs(n.Members)
		p.enum(n.Abi)
		p.enum(n.Access)
		if n.Parent != nil {
			p.symRef(n.Parent)
		}
		p.close()
	case *ClassType:
		p.open("ClassType")
		p.table(n.SymTab)
		p.sym(n.name)
		p.enum(n.Abi)
		p.enum(n.Access)
		p.close()
	case *ClassProcedure:
		p.open("ClassProcedure")
		p.sym(n.name)
		p.sym(n.ProcName)
		p.symRef(n.Proc)
		p.enum(n.Abi)
		p.close()
	case *Variable:
		p.open("Variable")
		p.sym(n.name)
		p.enum(n.Intent)
		p.node(n.SymbolicValue)
		p.node(n.Val)
		p.enum(n.Storage)
		p.node(n.Ttype)
		p.enum(n.Abi)
		p.enum(n.Access)
		p.enum(n.Presence)
		p.bool(n.ValueAttr)
		p.close()

	// Types
	case *Integer:
		p.open("Integer")
		p.int(int64(n.Kind))
		p.dims(n.Dims)
		p.close()
	case *Real:
		p.open("Real")
		p.int(int64(n.Kind))
		p.dims(n.Dims)
		p.close()
	case *Complex:
		p.open("Complex")
		p.int(int64(n.Kind))
		p.dims(n.Dims)
		p.close()
	case *Character:
		p.open("Character")
		p.int(int64(n.Kind))
		p.int(int64(n.Len))
		p.node(n.LenExpr)
		p.dims(n.Dims)
		p.close()
	case *Logical:
		p.open("Logical")
		p.int(int64(n.Kind))
		p.dims(n.Dims)
		p.close()
	case *List:
		p.open("List")
		p.node(n.Elem)
		p.close()
	case *Set:
		p.open("Set")
		p.node(n.Elem)
		p.close()
	case *Tuple:
		p.open("Tuple")
		p.ttypes(n.Elems)
		p.close()
	case *Dict:
		p.open("Dict")
		p.node(n.Key)
		p.node(n.Value)
		p.close()
	case *Derived:
		p.open("Derived")
		p.symRef(n.Sym)
		p.dims(n.Dims)
		p.close()
	case *Class:
		p.open("Class")
		p.symRef(n.Sym)
		p.dims(n.Dims)
		p.close()
	case *Pointer:
		p.open("Pointer")
		p.node(n.Target)
		p.close()

	// Expressions
	case *BoolOp:
		p.open("BoolOp")
		p.node(n.Left)
		p.enum(n.Op)
		p.node(n.Right)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *BinOp:
		p.open("BinOp")
		p.node(n.Left)
		p.enum(n.Op)
		p.node(n.Right)
		p.node(n.Ttype)
		p.node(n.Val)
		p.node(n.Overloaded)
		p.close()
	case *UnaryOp:
		p.open("UnaryOp")
		p.enum(n.Op)
		p.node(n.Operand)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *StrOp:
		p.open("StrOp")
		p.node(n.Left)
		p.enum(n.Op)
		p.node(n.Right)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *Compare:
		p.open("Compare")
		p.node(n.Left)
		p.enum(n.Op)
		p.node(n.Right)
		p.node(n.Ttype)
		p.node(n.Val)
		p.node(n.Overloaded)
		p.close()
	case *FunctionCall:
		p.open("FunctionCall")
		p.symRef(n.Sym)
		p.symRef(n.OriginalSym)
		p.exprs(n.Args)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *Var:
		p.open("Var")
		p.symRef(n.Sym)
		p.close()
	case *ConstantInteger:
		p.open("ConstantInteger")
		p.int(n.N)
		p.node(n.Ttype)
		p.close()
	case *ConstantReal:
		p.open("ConstantReal")
		p.float(n.R)
		p.node(n.Ttype)
		p.close()
	case *ConstantComplex:
		p.open("ConstantComplex")
		p.float(n.Re)
		p.float(n.Im)
		p.node(n.Ttype)
		p.close()
	case *ConstantLogical:
		p.open("ConstantLogical")
		p.bool(n.Bool)
		p.node(n.Ttype)
		p.close()
	case *ConstantString:
		p.open("ConstantString")
		p.str(n.S)
		p.node(n.Ttype)
		p.close()
	case *IntegerBOZ:
		p.open("IntegerBOZ")
		p.int(n.N)
		p.enum(n.Radix)
		p.node(n.Ttype)
		p.close()
	case *ListConstant:
		p.open("ListConstant")
		p.exprs(n.Elems)
		p.node(n.Ttype)
		p.close()
	case *SetConstant:
		p.open("SetConstant")
		p.exprs(n.Elems)
		p.node(n.Ttype)
		p.close()
	case *TupleConstant:
		p.open("TupleConstant")
		p.exprs(n.Elems)
		p.node(n.Ttype)
		p.close()
	case *DictConstant:
		p.open("DictConstant")
		p.exprs(n.Keys)
		p.exprs(n.Values)
		p.node(n.Ttype)
		p.close()
	case *ArrayRef:
		p.open("ArrayRef")
		p.symRef(n.Sym)
		p.sep()
		p.b.WriteByte('[')
		for i, ix := range n.Indices {
			if i > 0 {
				p.b.WriteByte(' ')
			}
			p.b.WriteByte('(')
			if ix.Left != nil {
				p.nodeBare(ix.Left)
			}
			if ix.Right != nil {
				if ix.Left != nil {
					p.b.WriteByte(' ')
				}
				p.nodeBare(ix.Right)
			}
			if ix.Step != nil {
				p.b.WriteByte(' ')
				p.nodeBare(ix.Step)
			}
			p.b.WriteByte(')')
		}
		p.b.WriteByte(']')
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *DerivedRef:
		p.open("DerivedRef")
		p.node(n.Target)
		p.symRef(n.Member)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()
	case *Cast:
		p.open("Cast")
		p.node(n.Arg)
		p.enum(n.Kind)
		p.node(n.Ttype)
		p.node(n.Val)
		p.close()

	// Statements
	case *Assignment:
		p.open("Assignment")
		p.node(n.Target)
		p.node(n.Value)
		p.close()
	case *SubroutineCall:
		p.open("SubroutineCall")
		p.symRef(n.Sym)
		p.symRef(n.OriginalSym)
		p.exprs(n.Args)
		p.close()
	case *GoTo:
		p.open("GoTo")
		p.int(int64(n.ID))
		p.close()
	case *GoToTarget:
		p.open("GoToTarget")
		p.int(int64(n.ID))
		p.close()
	case *Return:
		p.open("Return")
		p.close()
	case *If:
		p.open("If")
		p.node(n.Test)
		p.stmts(n.Body)
		p.stmts(n.OrElse)
		p.close()
	case *WhileLoop:
		p.open("WhileLoop")
		p.node(n.Test)
		p.stmts(n.Body)
		p.close()
	case *DoLoop:
		p.open("DoLoop")
		p.b.WriteString(" (")
		if n.Head.Var != nil {
			p.nodeBare(n.Head.Var)
		}
		p.node(n.Head.Start)
		p.node(n.Head.End)
		p.node(n.Head.Step)
		p.b.WriteByte(')')
		p.stmts(n.Body)
		p.close()
	case *ExitLoop:
		p.open("ExitLoop")
		p.close()
	case *CycleLoop:
		p.open("CycleLoop")
		p.close()
	case *Select:
		p.open("Select")
		p.node(n.Test)
		p.sep()
		p.b.WriteByte('[')
		for i, c := range n.Cases {
			if i > 0 {
				p.b.WriteByte(' ')
			}
			p.b.WriteString("(CaseStmt")
			p.exprs(c.Test)
			p.stmts(c.Body)
			p.b.WriteByte(')')
		}
		p.b.WriteByte(']')
		p.stmts(n.Default)
		p.close()
	case *Print:
		p.open("Print")
		p.node(n.Fmt)
		p.exprs(n.Values)
		p.close()
	case *Open:
		p.open("Open")
		p.int(int64(n.Label))
		p.node(n.Unit)
		p.node(n.File)
		p.node(n.Status)
		p.close()
	case *Close:
		p.open("Close")
		p.int(int64(n.Label))
		p.node(n.Unit)
		p.node(n.Status)
		p.close()
	case *Read:
		p.open("Read")
		p.int(int64(n.Label))
		p.node(n.Unit)
		p.node(n.Fmt)
		p.exprs(n.Values)
		p.close()
	case *Write:
		p.open("Write")
		p.int(int64(n.Label))
		p.node(n.Unit)
		p.node(n.Fmt)
		p.exprs(n.Values)
		p.close()
	case *Inquire:
		p.open("Inquire")
		p.node(n.Unit)
		p.node(n.File)
		p.node(n.Exist)
		p.node(n.Opened)
		p.close()
	case *Rewind:
		p.open("Rewind")
		p.node(n.Unit)
		p.close()
	case *Flush:
		p.open("Flush")
		p.node(n.Unit)
		p.close()
	case *Allocate:
		p.open("Allocate")
		p.sep()
		p.b.WriteByte('[')
		for i, arg := range n.Args {
			if i > 0 {
				p.b.WriteByte(' ')
			}
			p.b.WriteString("(AllocArg")
			p.node(arg.Target)
			p.dims(arg.Dims)
			p.b.WriteByte(')')
		}
		p.b.WriteByte(']')
		p.node(n.Stat)
		p.close()
	case *ExplicitDeallocate:
		p.open("ExplicitDeallocate")
		p.exprs(n.Vars)
		p.close()
	case *ImplicitDeallocate:
		p.open("ImplicitDeallocate")
		p.exprs(n.Vars)
		p.close()
	case *Nullify:
		p.open("Nullify")
		p.syms(n.Vars)
		p.close()
	case *Assert:
		p.open("Assert")
		p.node(n.Test)
		p.node(n.Msg)
		p.close()
	case *Stop:
		p.open("Stop")
		p.node(n.Code)
		p.close()
	case *ErrorStop:
		p.open("ErrorStop")
		p.node(n.Code)
		p.close()
	default:
		fmt.Fprintf(&p.b, "(%T)", n)
	}
}

// sym renders a symbol's own name field.
func (p *pickler) sym(name string) {
	p.sep()
	p.b.WriteString(name)
}
