package serde

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/lcompilers/lasr/internal/asr"
)

// Decode reads a framed stream produced by Encode into a fresh arena.
// It is the left inverse of Encode up to arena identity: the decoded
// unit is structurally equal to the source and re-encodes to the same
// bytes. Readers refuse versions they do not implement and reject
// trailing data.
func Decode(data []byte) (*asr.TranslationUnit, error) {
	if len(data) < 6 {
		return nil, malformed("stream too short for header: %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], Magic[:]) {
		return nil, malformed("bad magic %q", data[:4])
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != SchemaVersion {
		return nil, schemaMismatch(version)
	}
	return DecodeBody(data[6:])
}

// DecodeBody reads an unframed unit, as stored in module files whose
// header carries the magic and version itself.
func DecodeBody(data []byte) (u *asr.TranslationUnit, err error) {
	d := &decoder{
		r:     bytes.NewReader(data),
		arena: asr.NewArena(),
	}
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(decodeError); ok {
				u, err = nil, de.err
				return
			}
			panic(r)
		}
	}()
	u = d.unit()
	if d.r.Len() != 0 {
		return nil, malformed("%d trailing bytes after unit", d.r.Len())
	}
	// Re-resolve externals whose targets live inside the decoded unit.
	// Unresolvable externals stay pending for the module registry.
	for _, sym := range d.syms {
		if ext, ok := sym.(*asr.ExternalSymbol); ok {
			_, _ = asr.ResolveExternal(u.Global, ext)
		}
	}
	return u, nil
}

// decodeError carries a MalformedStream error through the recursive
// descent; Decode recovers it at the boundary, the way encoding/gob
// unwinds its decoder.
type decodeError struct {
	err error
}

type decoder struct {
	r      *bytes.Reader
	arena  *asr.Arena
	syms   []asr.Symbol
	scopes []*asr.SymbolTable
}

func (d *decoder) fail(format string, args ...any) {
	panic(decodeError{malformed(format, args...)})
}

func (d *decoder) u8() uint8 {
	b, err := d.r.ReadByte()
	if err != nil {
		d.fail("unexpected end of stream")
	}
	return b
}

func (d *decoder) bool() bool {
	switch d.u8() {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail("invalid boolean byte")
		return false
	}
}

func (d *decoder) read(n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.fail("unexpected end of stream reading %d bytes", n)
	}
	return buf
}

func (d *decoder) u32() uint32 {
	return binary.LittleEndian.Uint32(d.read(4))
}

func (d *decoder) i32() int {
	return int(int32(d.u32()))
}

func (d *decoder) i64() int64 {
	return int64(binary.LittleEndian.Uint64(d.read(8)))
}

func (d *decoder) f64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(d.read(8)))
}

func (d *decoder) str() string {
	n := d.u32()
	if int(n) > d.r.Len() {
		d.fail("string length %d exceeds remaining stream", n)
	}
	return string(d.read(int(n)))
}

func (d *decoder) strs() []string {
	n := d.u32()
	if int(n) > d.r.Len() {
		d.fail("sequence length %d exceeds remaining stream", n)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}
	return out
}

// count validates a sequence length against the remaining stream so a
// corrupted prefix cannot force a huge allocation.
func (d *decoder) count() int {
	n := d.u32()
	if int(n) > d.r.Len() {
		d.fail("sequence length %d exceeds remaining stream", n)
	}
	return int(n)
}

func (d *decoder) scope() *asr.SymbolTable {
	return d.scopes[len(d.scopes)-1]
}

func (d *decoder) unit() *asr.TranslationUnit {
	if tag := d.u8(); tag != tagUnit {
		d.fail("expected unit tag, got 0x%02x", tag)
	}
	u := asr.NewUnit(d.arena)
	d.scopes = append(d.scopes, u.Global)
	d.tableInto(u.Global)
	n := d.count()
	for i := 0; i < n; i++ {
		u.Items = append(u.Items, d.item())
	}
	d.scopes = d.scopes[:len(d.scopes)-1]
	return u
}

func (d *decoder) item() asr.Node {
	switch kind := d.u8(); kind {
	case 0:
		return d.symRef()
	case 1:
		return d.stmt()
	case 2:
		return d.expr()
	default:
		d.fail("invalid top-level item kind %d", kind)
		return nil
	}
}

// tableInto fills an existing scope with decoded entries.
func (d *decoder) tableInto(t *asr.SymbolTable) {
	n := d.count()
	for i := 0; i < n; i++ {
		name := d.str()
		sym := d.symRef()
		if sym == nil {
			d.fail("nil symbol in table entry %q", name)
		}
		t.Restore(name, sym)
	}
}

// newScope decodes a fresh owned table under the current scope.
func (d *decoder) newScope(fill func(t *asr.SymbolTable)) *asr.SymbolTable {
	t := d.arena.NewSymbolTable(d.scope())
	d.scopes = append(d.scopes, t)
	fill(t)
	d.scopes = d.scopes[:len(d.scopes)-1]
	return t
}

func (d *decoder) symRef() asr.Symbol {
	switch marker := d.u8(); marker {
	case refNil:
		return nil
	case refBack:
		ord := d.u32()
		if int(ord) >= len(d.syms) {
			d.fail("symbol ordinal %d out of range", ord)
		}
		return d.syms[ord]
	case refInline:
		return d.symbol()
	default:
		d.fail("invalid symbol reference marker %d", marker)
		return nil
	}
}

// symbol decodes an inline definition. The ordinal slot is reserved
// before the fields are read so that cyclic references decode as
// backrefs into the slot.
func (d *decoder) symbol() asr.Symbol {
	tag := d.u8()
	var sym asr.Symbol
	switch tag {
	case tagProgram:
		sym = &asr.Program{}
	case tagModule:
		sym = &asr.Module{}
	case tagSubroutine:
		sym = &asr.Subroutine{}
	case tagFunction:
		sym = &asr.Function{}
	case tagGenericProcedure:
		sym = &asr.GenericProcedure{}
	case tagCustomOperator:
		sym = &asr.CustomOperator{}
	case tagExternalSymbol:
		sym = &asr.ExternalSymbol{}
	case tagDerivedType:
		sym = &asr.DerivedType{}
	case tagClassType:
		sym = &asr.ClassType{}
	case tagClassProcedure:
		sym = &asr.ClassProcedure{}
	case tagVariable:
		sym = &asr.Variable{}
	default:
		d.fail("invalid symbol tag 0x%02x", tag)
	}
	d.syms = append(d.syms, sym)
	name := d.str()
	switch s := sym.(type) {
	case *asr.Program:
		s.SymTab = d.newScope(d.tableInto)
		s.Body = d.stmts()
	case *asr.Module:
		s.SymTab = d.newScope(d.tableInto)
		s.Dependencies = d.strs()
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
	case *asr.Subroutine:
		s.SymTab = d.newScope(d.tableInto)
		d.inScope(s.SymTab, func() {
			s.Args = d.exprs()
			s.Body = d.stmts()
		})
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
		s.Deftype = asr.DefType(d.u8())
		s.BindCName = d.str()
	case *asr.Function:
		s.SymTab = d.newScope(d.tableInto)
		d.inScope(s.SymTab, func() {
			s.Args = d.exprs()
			s.Body = d.stmts()
			s.ReturnVar = d.optExpr()
		})
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
		s.Deftype = asr.DefType(d.u8())
		s.BindCName = d.str()
	case *asr.GenericProcedure:
		n := d.count()
		s.Procs = make([]asr.Symbol, n)
		for i := range s.Procs {
			s.Procs[i] = d.symRef()
		}
		s.Access = asr.Access(d.u8())
	case *asr.CustomOperator:
		n := d.count()
		s.Procs = make([]asr.Symbol, n)
		for i := range s.Procs {
			s.Procs[i] = d.symRef()
		}
		s.Access = asr.Access(d.u8())
	case *asr.ExternalSymbol:
		s.ModuleName = d.str()
		s.ScopeNames = d.strs()
		s.OriginalName = d.str()
		s.Access = asr.Access(d.u8())
	case *asr.DerivedType:
		s.SymTab = d.newScope(d.tableInto)
		s.Members = d.strs()
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
		s.Parent = d.symRef()
	case *asr.ClassType:
		s.SymTab = d.newScope(d.tableInto)
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
	case *asr.ClassProcedure:
		s.ProcName = d.str()
		s.Proc = d.symRef()
		s.Abi = asr.ABI(d.u8())
	case *asr.Variable:
		s.Intent = asr.Intent(d.u8())
		s.SymbolicValue = d.optExpr()
		s.Val = d.optExpr()
		s.Storage = asr.StorageType(d.u8())
		s.Ttype = d.optType()
		s.Abi = asr.ABI(d.u8())
		s.Access = asr.Access(d.u8())
		s.Presence = asr.Presence(d.u8())
		s.ValueAttr = d.bool()
	}
	// The defining table entry performs the Restore that binds the name
	// and parent; the copy read here keeps the wire format self-framing.
	_ = name
	return sym
}

// inScope runs fn with t as the lookup context for body decoding.
func (d *decoder) inScope(t *asr.SymbolTable, fn func()) {
	d.scopes = append(d.scopes, t)
	fn()
	d.scopes = d.scopes[:len(d.scopes)-1]
}

func (d *decoder) optExpr() asr.Expr {
	if d.u8() == 0 {
		return nil
	}
	return d.expr()
}

func (d *decoder) optType() asr.TType {
	if d.u8() == 0 {
		return nil
	}
	return d.ttype()
}

func (d *decoder) exprs() []asr.Expr {
	n := d.count()
	out := make([]asr.Expr, n)
	for i := range out {
		out[i] = d.expr()
	}
	return out
}

func (d *decoder) stmts() []asr.Stmt {
	n := d.count()
	out := make([]asr.Stmt, n)
	for i := range out {
		out[i] = d.stmt()
	}
	return out
}

func (d *decoder) dims() []asr.Dimension {
	n := d.count()
	out := make([]asr.Dimension, n)
	for i := range out {
		out[i].Start = d.optExpr()
		out[i].End = d.optExpr()
	}
	return out
}

func (d *decoder) ttype() asr.TType {
	switch tag := d.u8(); tag {
	case tagInteger:
		return &asr.Integer{Kind: d.i32(), Dims: d.dims()}
	case tagReal:
		return &asr.Real{Kind: d.i32(), Dims: d.dims()}
	case tagComplex:
		return &asr.Complex{Kind: d.i32(), Dims: d.dims()}
	case tagCharacter:
		t := &asr.Character{Kind: d.i32(), Len: d.i32()}
		t.LenExpr = d.optExpr()
		t.Dims = d.dims()
		return t
	case tagLogical:
		return &asr.Logical{Kind: d.i32(), Dims: d.dims()}
	case tagList:
		return &asr.List{Elem: d.ttype()}
	case tagSet:
		return &asr.Set{Elem: d.ttype()}
	case tagTuple:
		n := d.count()
		t := &asr.Tuple{Elems: make([]asr.TType, n)}
		for i := range t.Elems {
			t.Elems[i] = d.ttype()
		}
		return t
	case tagDict:
		t := &asr.Dict{}
		t.Key = d.ttype()
		t.Value = d.ttype()
		return t
	case tagDerived:
		t := &asr.Derived{}
		t.Sym = d.symRef()
		t.Dims = d.dims()
		return t
	case tagClass:
		t := &asr.Class{}
		t.Sym = d.symRef()
		t.Dims = d.dims()
		return t
	case tagPointer:
		return &asr.Pointer{Target: d.ttype()}
	default:
		d.fail("invalid type tag 0x%02x", tag)
		return nil
	}
}

func (d *decoder) expr() asr.Expr {
	switch tag := d.u8(); tag {
	case tagBoolOp:
		x := &asr.BoolOp{}
		x.Left = d.expr()
		x.Op = asr.BoolOpKind(d.u8())
		x.Right = d.expr()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagBinOp:
		x := &asr.BinOp{}
		x.Left = d.expr()
		x.Op = asr.BinOpKind(d.u8())
		x.Right = d.expr()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		x.Overloaded = d.optExpr()
		return x
	case tagUnaryOp:
		x := &asr.UnaryOp{}
		x.Op = asr.UnaryOpKind(d.u8())
		x.Operand = d.expr()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagStrOp:
		x := &asr.StrOp{}
		x.Left = d.expr()
		x.Op = asr.StrOpKind(d.u8())
		x.Right = d.expr()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagCompare:
		x := &asr.Compare{}
		x.Left = d.expr()
		x.Op = asr.CmpOpKind(d.u8())
		x.Right = d.expr()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		x.Overloaded = d.optExpr()
		return x
	case tagFunctionCall:
		x := &asr.FunctionCall{}
		x.Sym = d.symRef()
		x.OriginalSym = d.symRef()
		x.Args = d.exprs()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagVar:
		return &asr.Var{Sym: d.symRef()}
	case tagConstantInteger:
		return &asr.ConstantInteger{N: d.i64(), Ttype: d.ttype()}
	case tagConstantReal:
		return &asr.ConstantReal{R: d.f64(), Ttype: d.ttype()}
	case tagConstantComplex:
		x := &asr.ConstantComplex{}
		x.Re = d.f64()
		x.Im = d.f64()
		x.Ttype = d.ttype()
		return x
	case tagConstantLogical:
		return &asr.ConstantLogical{Bool: d.bool(), Ttype: d.ttype()}
	case tagConstantString:
		return &asr.ConstantString{S: d.str(), Ttype: d.ttype()}
	case tagIntegerBOZ:
		x := &asr.IntegerBOZ{}
		x.N = d.i64()
		x.Radix = asr.Boz(d.u8())
		x.Ttype = d.ttype()
		return x
	case tagListConstant:
		return &asr.ListConstant{Elems: d.exprs(), Ttype: d.ttype()}
	case tagSetConstant:
		return &asr.SetConstant{Elems: d.exprs(), Ttype: d.ttype()}
	case tagTupleConstant:
		return &asr.TupleConstant{Elems: d.exprs(), Ttype: d.ttype()}
	case tagDictConstant:
		x := &asr.DictConstant{}
		x.Keys = d.exprs()
		x.Values = d.exprs()
		x.Ttype = d.ttype()
		return x
	case tagArrayRef:
		x := &asr.ArrayRef{}
		x.Sym = d.symRef()
		n := d.count()
		x.Indices = make([]asr.ArrayIndex, n)
		for i := range x.Indices {
			x.Indices[i].Left = d.optExpr()
			x.Indices[i].Right = d.optExpr()
			x.Indices[i].Step = d.optExpr()
		}
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagDerivedRef:
		x := &asr.DerivedRef{}
		x.Target = d.expr()
		x.Member = d.symRef()
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	case tagCast:
		x := &asr.Cast{}
		x.Arg = d.expr()
		x.Kind = asr.CastKind(d.u8())
		x.Ttype = d.ttype()
		x.Val = d.optExpr()
		return x
	default:
		d.fail("invalid expression tag 0x%02x", tag)
		return nil
	}
}

func (d *decoder) stmt() asr.Stmt {
	switch tag := d.u8(); tag {
	case tagAssignment:
		s := &asr.Assignment{}
		s.Target = d.expr()
		s.Value = d.expr()
		return s
	case tagSubroutineCall:
		s := &asr.SubroutineCall{}
		s.Sym = d.symRef()
		s.OriginalSym = d.symRef()
		s.Args = d.exprs()
		return s
	case tagGoTo:
		return &asr.GoTo{ID: d.i32()}
	case tagGoToTarget:
		return &asr.GoToTarget{ID: d.i32()}
	case tagReturn:
		return &asr.Return{}
	case tagIf:
		s := &asr.If{}
		s.Test = d.expr()
		s.Body = d.stmts()
		s.OrElse = d.stmts()
		return s
	case tagWhileLoop:
		s := &asr.WhileLoop{}
		s.Test = d.expr()
		s.Body = d.stmts()
		return s
	case tagDoLoop:
		s := &asr.DoLoop{}
		s.Head.Var = d.optExpr()
		s.Head.Start = d.optExpr()
		s.Head.End = d.optExpr()
		s.Head.Step = d.optExpr()
		s.Body = d.stmts()
		return s
	case tagExitLoop:
		return &asr.ExitLoop{}
	case tagCycleLoop:
		return &asr.CycleLoop{}
	case tagSelect:
		s := &asr.Select{}
		s.Test = d.expr()
		n := d.count()
		s.Cases = make([]asr.CaseStmt, n)
		for i := range s.Cases {
			s.Cases[i].Test = d.exprs()
			s.Cases[i].Body = d.stmts()
		}
		s.Default = d.stmts()
		return s
	case tagPrint:
		s := &asr.Print{}
		s.Fmt = d.optExpr()
		s.Values = d.exprs()
		return s
	case tagOpen:
		s := &asr.Open{}
		s.Label = d.i32()
		s.Unit = d.optExpr()
		s.File = d.optExpr()
		s.Status = d.optExpr()
		return s
	case tagClose:
		s := &asr.Close{}
		s.Label = d.i32()
		s.Unit = d.optExpr()
		s.Status = d.optExpr()
		return s
	case tagRead:
		s := &asr.Read{}
		s.Label = d.i32()
		s.Unit = d.optExpr()
		s.Fmt = d.optExpr()
		s.Values = d.exprs()
		return s
	case tagWrite:
		s := &asr.Write{}
		s.Label = d.i32()
		s.Unit = d.optExpr()
		s.Fmt = d.optExpr()
		s.Values = d.exprs()
		return s
	case tagInquire:
		s := &asr.Inquire{}
		s.Unit = d.optExpr()
		s.File = d.optExpr()
		s.Exist = d.optExpr()
		s.Opened = d.optExpr()
		return s
	case tagRewind:
		return &asr.Rewind{Unit: d.optExpr()}
	case tagFlush:
		return &asr.Flush{Unit: d.optExpr()}
	case tagAllocate:
		s := &asr.Allocate{}
		n := d.count()
		s.Args = make([]asr.AllocArg, n)
		for i := range s.Args {
			s.Args[i].Target = d.expr()
			s.Args[i].Dims = d.dims()
		}
		s.Stat = d.optExpr()
		return s
	case tagExplicitDealloc:
		return &asr.ExplicitDeallocate{Vars: d.exprs()}
	case tagImplicitDealloc:
		return &asr.ImplicitDeallocate{Vars: d.exprs()}
	case tagNullify:
		s := &asr.Nullify{}
		n := d.count()
		s.Vars = make([]asr.Symbol, n)
		for i := range s.Vars {
			s.Vars[i] = d.symRef()
		}
		return s
	case tagAssert:
		s := &asr.Assert{}
		s.Test = d.expr()
		s.Msg = d.optExpr()
		return s
	case tagStop:
		return &asr.Stop{Code: d.optExpr()}
	case tagErrorStop:
		return &asr.ErrorStop{Code: d.optExpr()}
	default:
		d.fail("invalid statement tag 0x%02x", tag)
		return nil
	}
}
