package asr

import "math"

// FoldConstants is the reference transformer pass: it attaches folded
// values to arithmetic, comparison, and logical nodes whose operands
// already have constant values. Nodes with a value are left alone, so
// the pass is idempotent. Overloaded operators are never folded; the
// resolved call decides their semantics.
func FoldConstants(u *TranslationUnit, b *Builder) {
	Transform(u, RewriteFunc(func(n Node) Node {
		return foldNode(n, b)
	}))
}

func foldNode(n Node, b *Builder) Node {
	switch e := n.(type) {
	case *BinOp:
		if e.Val == nil && e.Overloaded == nil {
			e.Val = foldBinOp(e, b)
		}
	case *Compare:
		if e.Val == nil && e.Overloaded == nil {
			e.Val = foldCompare(e, b)
		}
	case *BoolOp:
		if e.Val == nil {
			e.Val = foldBoolOp(e, b)
		}
	case *UnaryOp:
		if e.Val == nil {
			e.Val = foldUnaryOp(e, b)
		}
	}
	return n
}

func foldBinOp(e *BinOp, b *Builder) Expr {
	switch t := e.Ttype.(type) {
	case *Integer:
		if len(t.Dims) != 0 {
			return nil
		}
		l, lok := intValue(e.Left)
		r, rok := intValue(e.Right)
		if !lok || !rok {
			return nil
		}
		n, ok := foldInt(l, e.Op, r)
		if !ok {
			return nil
		}
		return b.ConstantInteger(n, e.Ttype)
	case *Real:
		if len(t.Dims) != 0 {
			return nil
		}
		l, lok := realValue(e.Left)
		r, rok := realValue(e.Right)
		if !lok || !rok {
			return nil
		}
		n, ok := foldReal(l, e.Op, r)
		if !ok {
			return nil
		}
		return b.ConstantReal(n, e.Ttype)
	default:
		return nil
	}
}

func foldInt(l int64, op BinOpKind, r int64) (int64, bool) {
	switch op {
	case BinAdd:
		return l + r, true
	case BinSub:
		return l - r, true
	case BinMul:
		return l * r, true
	case BinDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case BinPow:
		if r < 0 {
			return 0, false
		}
		n := int64(1)
		for i := int64(0); i < r; i++ {
			n *= l
		}
		return n, true
	}
	return 0, false
}

func foldReal(l float64, op BinOpKind, r float64) (float64, bool) {
	switch op {
	case BinAdd:
		return l + r, true
	case BinSub:
		return l - r, true
	case BinMul:
		return l * r, true
	case BinDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case BinPow:
		return math.Pow(l, r), true
	}
	return 0, false
}

func foldCompare(e *Compare, b *Builder) Expr {
	if l, lok := intValue(e.Left); lok {
		if r, rok := intValue(e.Right); rok {
			return b.ConstantLogical(cmpOrdered(compareInt(l, r), e.Op), e.Ttype)
		}
		return nil
	}
	if l, lok := realValue(e.Left); lok {
		if r, rok := realValue(e.Right); rok {
			return b.ConstantLogical(cmpOrdered(compareReal(l, r), e.Op), e.Ttype)
		}
	}
	return nil
}

func compareInt(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func compareReal(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpOrdered(c int, op CmpOpKind) bool {
	switch op {
	case CmpEq:
		return c == 0
	case CmpNotEq:
		return c != 0
	case CmpLt:
		return c < 0
	case CmpLtE:
		return c <= 0
	case CmpGt:
		return c > 0
	case CmpGtE:
		return c >= 0
	}
	return false
}

func foldBoolOp(e *BoolOp, b *Builder) Expr {
	l, lok := logicalValue(e.Left)
	r, rok := logicalValue(e.Right)
	if !lok || !rok {
		return nil
	}
	var v bool
	switch e.Op {
	case BoolAnd:
		v = l && r
	case BoolOr:
		v = l || r
	case BoolXor, BoolNEqv:
		v = l != r
	case BoolEqv:
		v = l == r
	}
	return b.ConstantLogical(v, e.Ttype)
}

func foldUnaryOp(e *UnaryOp, b *Builder) Expr {
	switch e.Op {
	case UnaryNot:
		if v, ok := logicalValue(e.Operand); ok {
			return b.ConstantLogical(!v, e.Ttype)
		}
	case UnaryUSub:
		if v, ok := intValue(e.Operand); ok {
			if _, isInt := e.Ttype.(*Integer); isInt {
				return b.ConstantInteger(-v, e.Ttype)
			}
			return nil
		}
		if v, ok := realValue(e.Operand); ok {
			if _, isReal := e.Ttype.(*Real); isReal {
				return b.ConstantReal(-v, e.Ttype)
			}
		}
	case UnaryUAdd:
		if v, ok := intValue(e.Operand); ok {
			if _, isInt := e.Ttype.(*Integer); isInt {
				return b.ConstantInteger(v, e.Ttype)
			}
			return nil
		}
		if v, ok := realValue(e.Operand); ok {
			if _, isReal := e.Ttype.(*Real); isReal {
				return b.ConstantReal(v, e.Ttype)
			}
		}
	case UnaryInvert:
		if v, ok := intValue(e.Operand); ok {
			if _, isInt := e.Ttype.(*Integer); isInt {
				return b.ConstantInteger(^v, e.Ttype)
			}
		}
	}
	return nil
}

func intValue(e Expr) (int64, bool) {
	if e == nil {
		return 0, false
	}
	if c, ok := e.Value().(*ConstantInteger); ok {
		return c.N, true
	}
	return 0, false
}

func realValue(e Expr) (float64, bool) {
	if e == nil {
		return 0, false
	}
	if c, ok := e.Value().(*ConstantReal); ok {
		return c.R, true
	}
	return 0, false
}

func logicalValue(e Expr) (bool, bool) {
	if e == nil {
		return false, false
	}
	if c, ok := e.Value().(*ConstantLogical); ok {
		return c.Bool, true
	}
	return false, false
}
