package serde

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lcompilers/lasr/internal/asr"
)

// Encode serializes a unit into the framed canonical byte stream.
// Encoding is total for well-formed units.
func Encode(u *asr.TranslationUnit) []byte {
	e := newEncoder()
	e.buf.Write(Magic[:])
	e.u16(SchemaVersion)
	e.unit(u)
	return e.buf.Bytes()
}

// EncodeBody serializes the unit without the magic/version frame. The
// module-file writer provides its own header.
func EncodeBody(u *asr.TranslationUnit) []byte {
	e := newEncoder()
	e.unit(u)
	return e.buf.Bytes()
}

type encoder struct {
	buf  bytes.Buffer
	ords map[asr.Symbol]uint32
}

func newEncoder() *encoder {
	return &encoder{ords: make(map[asr.Symbol]uint32)}
}

func (e *encoder) u8(v uint8) { e.buf.WriteByte(v) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) i32(v int) {
	e.u32(uint32(int32(v)))
}

func (e *encoder) i64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	e.buf.Write(b[:])
}

func (e *encoder) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	e.buf.Write(b[:])
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf.WriteString(s)
}

func (e *encoder) strs(ss []string) {
	e.u32(uint32(len(ss)))
	for _, s := range ss {
		e.str(s)
	}
}

func (e *encoder) unit(u *asr.TranslationUnit) {
	e.u8(tagUnit)
	e.table(u.Global)
	e.u32(uint32(len(u.Items)))
	for _, item := range u.Items {
		e.item(item)
	}
}

// item dispatches a top-level node, which is a symbol reference or a
// statement.
func (e *encoder) item(n asr.Node) {
	switch n := n.(type) {
	case asr.Symbol:
		e.u8(0)
		e.symRef(n)
	case asr.Stmt:
		e.u8(1)
		e.stmt(n)
	case asr.Expr:
		e.u8(2)
		e.expr(n)
	default:
		panic(fmt.Sprintf("serde: unencodable top-level node %T", n))
	}
}

// table writes the scope's entries in insertion order. Each entry's
// symbol is a reference, inline on first encounter.
func (e *encoder) table(t *asr.SymbolTable) {
	e.u32(uint32(t.Len()))
	t.Each(func(name string, sym asr.Symbol) bool {
		e.str(name)
		e.symRef(sym)
		return true
	})
}

// symRef writes a symbol reference: nil, a backref ordinal, or an
// inline definition on first encounter. Ordinals are assigned before
// the fields are written so that cycles resolve to backrefs.
func (e *encoder) symRef(sym asr.Symbol) {
	if sym == nil {
		e.u8(refNil)
		return
	}
	if ord, ok := e.ords[sym]; ok {
		e.u8(refBack)
		e.u32(ord)
		return
	}
	e.u8(refInline)
	e.ords[sym] = uint32(len(e.ords))
	e.symbol(sym)
}

func (e *encoder) symbol(sym asr.Symbol) {
	switch s := sym.(type) {
	case *asr.Program:
		e.u8(tagProgram)
		e.str(s.Name())
		e.table(s.SymTab)
		e.stmts(s.Body)
	case *asr.Module:
		e.u8(tagModule)
		e.str(s.Name())
		e.table(s.SymTab)
		e.strs(s.Dependencies)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
	case *asr.Subroutine:
		e.u8(tagSubroutine)
		e.str(s.Name())
		e.table(s.SymTab)
		e.exprs(s.Args)
		e.stmts(s.Body)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
		e.u8(uint8(s.Deftype))
		e.str(s.BindCName)
	case *asr.Function:
		e.u8(tagFunction)
		e.str(s.Name())
		e.table(s.SymTab)
		e.exprs(s.Args)
		e.stmts(s.Body)
		e.optExpr(s.ReturnVar)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
		e.u8(uint8(s.Deftype))
		e.str(s.BindCName)
	case *asr.GenericProcedure:
		e.u8(tagGenericProcedure)
		e.str(s.Name())
		e.u32(uint32(len(s.Procs)))
		for _, p := range s.Procs {
			e.symRef(p)
		}
		e.u8(uint8(s.Access))
	case *asr.CustomOperator:
		e.u8(tagCustomOperator)
		e.str(s.Name())
		e.u32(uint32(len(s.Procs)))
		for _, p := range s.Procs {
			e.symRef(p)
		}
		e.u8(uint8(s.Access))
	case *asr.ExternalSymbol:
		// The target is not written; it is re-resolved from the declared
		// path after decoding.
		e.u8(tagExternalSymbol)
		e.str(s.Name())
		e.str(s.ModuleName)
		e.strs(s.ScopeNames)
		e.str(s.OriginalName)
		e.u8(uint8(s.Access))
	case *asr.DerivedType:
		e.u8(tagDerivedType)
		e.str(s.Name())
		e.table(s.SymTab)
		e.strs(s.Members)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
		e.symRef(s.Parent)
	case *asr.ClassType:
		e.u8(tagClassType)
		e.str(s.Name())
		e.table(s.SymTab)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
	case *asr.ClassProcedure:
		e.u8(tagClassProcedure)
		e.str(s.Name())
		e.str(s.ProcName)
		e.symRef(s.Proc)
		e.u8(uint8(s.Abi))
	case *asr.Variable:
		e.u8(tagVariable)
		e.str(s.Name())
		e.u8(uint8(s.Intent))
		e.optExpr(s.SymbolicValue)
		e.optExpr(s.Val)
		e.u8(uint8(s.Storage))
		e.optType(s.Ttype)
		e.u8(uint8(s.Abi))
		e.u8(uint8(s.Access))
		e.u8(uint8(s.Presence))
		e.bool(s.ValueAttr)
	default:
		panic(fmt.Sprintf("serde: unencodable symbol %T", sym))
	}
}

func (e *encoder) optExpr(x asr.Expr) {
	if x == nil {
		e.u8(0)
		return
	}
	e.u8(1)
	e.expr(x)
}

func (e *encoder) optType(t asr.TType) {
	if t == nil {
		e.u8(0)
		return
	}
	e.u8(1)
	e.ttype(t)
}

func (e *encoder) exprs(es []asr.Expr) {
	e.u32(uint32(len(es)))
	for _, x := range es {
		e.expr(x)
	}
}

func (e *encoder) stmts(ss []asr.Stmt) {
	e.u32(uint32(len(ss)))
	for _, s := range ss {
		e.stmt(s)
	}
}

func (e *encoder) dims(ds []asr.Dimension) {
	e.u32(uint32(len(ds)))
	for _, d := range ds {
		e.optExpr(d.Start)
		e.optExpr(d.End)
	}
}

func (e *encoder) ttype(t asr.TType) {
	switch t := t.(type) {
	case *asr.Integer:
		e.u8(tagInteger)
		e.i32(t.Kind)
		e.dims(t.Dims)
	case *asr.Real:
		e.u8(tagReal)
		e.i32(t.Kind)
		e.dims(t.Dims)
	case *asr.Complex:
		e.u8(tagComplex)
		e.i32(t.Kind)
		e.dims(t.Dims)
	case *asr.Character:
		e.u8(tagCharacter)
		e.i32(t.Kind)
		e.i32(t.Len)
		e.optExpr(t.LenExpr)
		e.dims(t.Dims)
	case *asr.Logical:
		e.u8(tagLogical)
		e.i32(t.Kind)
		e.dims(t.Dims)
	case *asr.List:
		e.u8(tagList)
		e.ttype(t.Elem)
	case *asr.Set:
		e.u8(tagSet)
		e.ttype(t.Elem)
	case *asr.Tuple:
		e.u8(tagTuple)
		e.u32(uint32(len(t.Elems)))
		for _, el := range t.Elems {
			e.ttype(el)
		}
	case *asr.Dict:
		e.u8(tagDict)
		e.ttype(t.Key)
		e.ttype(t.Value)
	case *asr.Derived:
		e.u8(tagDerived)
		e.symRef(t.Sym)
		e.dims(t.Dims)
	case *asr.Class:
		e.u8(tagClass)
		e.symRef(t.Sym)
		e.dims(t.Dims)
	case *asr.Pointer:
		e.u8(tagPointer)
		e.ttype(t.Target)
	default:
		panic(fmt.Sprintf("serde: unencodable type %T", t))
	}
}

func (e *encoder) expr(x asr.Expr) {
	switch x := x.(type) {
	case *asr.BoolOp:
		e.u8(tagBoolOp)
		e.expr(x.Left)
		e.u8(uint8(x.Op))
		e.expr(x.Right)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.BinOp:
		e.u8(tagBinOp)
		e.expr(x.Left)
		e.u8(uint8(x.Op))
		e.expr(x.Right)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
		e.optExpr(x.Overloaded)
	case *asr.UnaryOp:
		e.u8(tagUnaryOp)
		e.u8(uint8(x.Op))
		e.expr(x.Operand)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.StrOp:
		e.u8(tagStrOp)
		e.expr(x.Left)
		e.u8(uint8(x.Op))
		e.expr(x.Right)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.Compare:
		e.u8(tagCompare)
		e.expr(x.Left)
		e.u8(uint8(x.Op))
		e.expr(x.Right)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
		e.optExpr(x.Overloaded)
	case *asr.FunctionCall:
		e.u8(tagFunctionCall)
		e.symRef(x.Sym)
		e.symRef(x.OriginalSym)
		e.exprs(x.Args)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.Var:
		e.u8(tagVar)
		e.symRef(x.Sym)
	case *asr.ConstantInteger:
		e.u8(tagConstantInteger)
		e.i64(x.N)
		e.ttype(x.Ttype)
	case *asr.ConstantReal:
		e.u8(tagConstantReal)
		e.f64(x.R)
		e.ttype(x.Ttype)
	case *asr.ConstantComplex:
		e.u8(tagConstantComplex)
		e.f64(x.Re)
		e.f64(x.Im)
		e.ttype(x.Ttype)
	case *asr.ConstantLogical:
		e.u8(tagConstantLogical)
		e.bool(x.Bool)
		e.ttype(x.Ttype)
	case *asr.ConstantString:
		e.u8(tagConstantString)
		e.str(x.S)
		e.ttype(x.Ttype)
	case *asr.IntegerBOZ:
		e.u8(tagIntegerBOZ)
		e.i64(x.N)
		e.u8(uint8(x.Radix))
		e.ttype(x.Ttype)
	case *asr.ListConstant:
		e.u8(tagListConstant)
		e.exprs(x.Elems)
		e.ttype(x.Ttype)
	case *asr.SetConstant:
		e.u8(tagSetConstant)
		e.exprs(x.Elems)
		e.ttype(x.Ttype)
	case *asr.TupleConstant:
		e.u8(tagTupleConstant)
		e.exprs(x.Elems)
		e.ttype(x.Ttype)
	case *asr.DictConstant:
		e.u8(tagDictConstant)
		e.exprs(x.Keys)
		e.exprs(x.Values)
		e.ttype(x.Ttype)
	case *asr.ArrayRef:
		e.u8(tagArrayRef)
		e.symRef(x.Sym)
		e.u32(uint32(len(x.Indices)))
		for _, ix := range x.Indices {
			e.optExpr(ix.Left)
			e.optExpr(ix.Right)
			e.optExpr(ix.Step)
		}
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.DerivedRef:
		e.u8(tagDerivedRef)
		e.expr(x.Target)
		e.symRef(x.Member)
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	case *asr.Cast:
		e.u8(tagCast)
		e.expr(x.Arg)
		e.u8(uint8(x.Kind))
		e.ttype(x.Ttype)
		e.optExpr(x.Val)
	default:
		panic(fmt.Sprintf("serde: unencodable expression %T", x))
	}
}

func (e *encoder) stmt(s asr.Stmt) {
	switch s := s.(type) {
	case *asr.Assignment:
		e.u8(tagAssignment)
		e.expr(s.Target)
		e.expr(s.Value)
	case *asr.SubroutineCall:
		e.u8(tagSubroutineCall)
		e.symRef(s.Sym)
		e.symRef(s.OriginalSym)
		e.exprs(s.Args)
	case *asr.GoTo:
		e.u8(tagGoTo)
		e.i32(s.ID)
	case *asr.GoToTarget:
		e.u8(tagGoToTarget)
		e.i32(s.ID)
	case *asr.Return:
		e.u8(tagReturn)
	case *asr.If:
		e.u8(tagIf)
		e.expr(s.Test)
		e.stmts(s.Body)
		e.stmts(s.OrElse)
	case *asr.WhileLoop:
		e.u8(tagWhileLoop)
		e.expr(s.Test)
		e.stmts(s.Body)
	case *asr.DoLoop:
		e.u8(tagDoLoop)
		e.optExpr(s.Head.Var)
		e.optExpr(s.Head.Start)
		e.optExpr(s.Head.End)
		e.optExpr(s.Head.Step)
		e.stmts(s.Body)
	case *asr.ExitLoop:
		e.u8(tagExitLoop)
	case *asr.CycleLoop:
		e.u8(tagCycleLoop)
	case *asr.Select:
		e.u8(tagSelect)
		e.expr(s.Test)
		e.u32(uint32(len(s.Cases)))
		for _, c := range s.Cases {
			e.exprs(c.Test)
			e.stmts(c.Body)
		}
		e.stmts(s.Default)
	case *asr.Print:
		e.u8(tagPrint)
		e.optExpr(s.Fmt)
		e.exprs(s.Values)
	case *asr.Open:
		e.u8(tagOpen)
		e.i32(s.Label)
		e.optExpr(s.Unit)
		e.optExpr(s.File)
		e.optExpr(s.Status)
	case *asr.Close:
		e.u8(tagClose)
		e.i32(s.Label)
		e.optExpr(s.Unit)
		e.optExpr(s.Status)
	case *asr.Read:
		e.u8(tagRead)
		e.i32(s.Label)
		e.optExpr(s.Unit)
		e.optExpr(s.Fmt)
		e.exprs(s.Values)
	case *asr.Write:
		e.u8(tagWrite)
		e.i32(s.Label)
		e.optExpr(s.Unit)
		e.optExpr(s.Fmt)
		e.exprs(s.Values)
	case *asr.Inquire:
		e.u8(tagInquire)
		e.optExpr(s.Unit)
		e.optExpr(s.File)
		e.optExpr(s.Exist)
		e.optExpr(s.Opened)
	case *asr.Rewind:
		e.u8(tagRewind)
		e.optExpr(s.Unit)
	case *asr.Flush:
		e.u8(tagFlush)
		e.optExpr(s.Unit)
	case *asr.Allocate:
		e.u8(tagAllocate)
		e.u32(uint32(len(s.Args)))
		for _, a := range s.Args {
			e.expr(a.Target)
			e.dims(a.Dims)
		}
		e.optExpr(s.Stat)
	case *asr.ExplicitDeallocate:
		e.u8(tagExplicitDealloc)
		e.exprs(s.Vars)
	case *asr.ImplicitDeallocate:
		e.u8(tagImplicitDealloc)
		e.exprs(s.Vars)
	case *asr.Nullify:
		e.u8(tagNullify)
		e.u32(uint32(len(s.Vars)))
		for _, v := range s.Vars {
			e.symRef(v)
		}
	case *asr.Assert:
		e.u8(tagAssert)
		e.expr(s.Test)
		e.optExpr(s.Msg)
	case *asr.Stop:
		e.u8(tagStop)
		e.optExpr(s.Code)
	case *asr.ErrorStop:
		e.u8(tagErrorStop)
		e.optExpr(s.Code)
	default:
		panic(fmt.Sprintf("serde: unencodable statement %T", s))
	}
}
