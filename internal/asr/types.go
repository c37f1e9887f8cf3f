package asr

import "fmt"

// TypeName returns the variant name of a type for error messages.
func TypeName(t TType) string {
	switch t := t.(type) {
	case nil:
		return "nil"
	case *Integer:
		return fmt.Sprintf("Integer(%d)", t.Kind)
	case *Real:
		return fmt.Sprintf("Real(%d)", t.Kind)
	case *Complex:
		return fmt.Sprintf("Complex(%d)", t.Kind)
	case *Character:
		return fmt.Sprintf("Character(%d)", t.Kind)
	case *Logical:
		return fmt.Sprintf("Logical(%d)", t.Kind)
	case *List:
		return "List[" + TypeName(t.Elem) + "]"
	case *Set:
		return "Set[" + TypeName(t.Elem) + "]"
	case *Tuple:
		return fmt.Sprintf("Tuple(%d)", len(t.Elems))
	case *Dict:
		return "Dict[" + TypeName(t.Key) + "," + TypeName(t.Value) + "]"
	case *Derived:
		return "Derived(" + t.Sym.Name() + ")"
	case *Class:
		return "Class(" + t.Sym.Name() + ")"
	case *Pointer:
		return "Pointer(" + TypeName(t.Target) + ")"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// TypesEqual compares two types structurally: same variant, same kind,
// same rank, equal element types. Dimension bounds are runtime
// expressions and do not participate; only the rank does. Derived and
// class references compare by target symbol.
func TypesEqual(a, b TType) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case *Integer:
		bt, ok := b.(*Integer)
		return ok && at.Kind == bt.Kind && len(at.Dims) == len(bt.Dims)
	case *Real:
		bt, ok := b.(*Real)
		return ok && at.Kind == bt.Kind && len(at.Dims) == len(bt.Dims)
	case *Complex:
		bt, ok := b.(*Complex)
		return ok && at.Kind == bt.Kind && len(at.Dims) == len(bt.Dims)
	case *Character:
		bt, ok := b.(*Character)
		return ok && at.Kind == bt.Kind && at.Len == bt.Len && len(at.Dims) == len(bt.Dims)
	case *Logical:
		bt, ok := b.(*Logical)
		return ok && at.Kind == bt.Kind && len(at.Dims) == len(bt.Dims)
	case *List:
		bt, ok := b.(*List)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *Set:
		bt, ok := b.(*Set)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *Tuple:
		bt, ok := b.(*Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !TypesEqual(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bt, ok := b.(*Dict)
		return ok && TypesEqual(at.Key, bt.Key) && TypesEqual(at.Value, bt.Value)
	case *Derived:
		bt, ok := b.(*Derived)
		return ok && typeSymbolsEqual(at.Sym, bt.Sym) && len(at.Dims) == len(bt.Dims)
	case *Class:
		bt, ok := b.(*Class)
		return ok && typeSymbolsEqual(at.Sym, bt.Sym) && len(at.Dims) == len(bt.Dims)
	case *Pointer:
		bt, ok := b.(*Pointer)
		return ok && TypesEqual(at.Target, bt.Target)
	default:
		return false
	}
}

// typeSymbolsEqual compares type symbols through external handles, so a
// Derived over an ExternalSymbol equals a Derived over its target.
func typeSymbolsEqual(a, b Symbol) bool {
	if ea, ok := a.(*ExternalSymbol); ok && ea.External != nil {
		a = ea.External
	}
	if eb, ok := b.(*ExternalSymbol); ok && eb.External != nil {
		b = eb.External
	}
	if a == b {
		return true
	}
	// Symbols from different arenas (a decoded unit against its source)
	// compare by name.
	return a != nil && b != nil && a.Name() == b.Name()
}
