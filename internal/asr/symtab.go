package asr

import (
	"golang.org/x/text/unicode/norm"

	"github.com/lcompilers/lasr/internal/errors"
)

// SymbolTable is a scoped mapping from names to symbols. Tables form a
// forest through parent links; roots are global scopes. Iteration is in
// insertion order so that pickles and serialized streams are stable.
type SymbolTable struct {
	id     uint64
	parent *SymbolTable
	owner  Symbol
	names  []string
	table  map[string]Symbol
}

// ID is the table's arena-assigned identity. The pickle does not print
// it; it numbers tables by first encounter instead.
func (t *SymbolTable) ID() uint64 { return t.id }

// Parent returns the enclosing scope, or nil for a global scope.
func (t *SymbolTable) Parent() *SymbolTable { return t.parent }

// Owner returns the symbol owning this scope, or nil for a global scope.
func (t *SymbolTable) Owner() Symbol { return t.owner }

// Len returns the number of symbols in this scope.
func (t *SymbolTable) Len() int { return len(t.names) }

// normalizeName applies NFC normalization so that lexically equivalent
// identifiers resolve to the same entry regardless of source encoding.
func normalizeName(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// Insert adds sym under name. It fails with a DuplicateName error if the
// name already exists in this scope; shadowing requires a distinct child
// scope. Insertion wires the symbol's parent link so that Lookup can
// traverse without a separate registration step.
func (t *SymbolTable) Insert(name string, sym Symbol) error {
	name = normalizeName(name)
	if _, exists := t.table[name]; exists {
		return errors.At(errors.SYM001, t.path(name), "duplicate name %q in scope", name)
	}
	t.attach(name, sym)
	return nil
}

// Restore wires sym into the table without the duplicate check. It is
// the deserializer's entry point: decoded tables were checked when first
// built, and re-checking would reject nothing.
func (t *SymbolTable) Restore(name string, sym Symbol) {
	t.attach(name, sym)
}

// attach wires sym into the table without the duplicate check.
func (t *SymbolTable) attach(name string, sym Symbol) {
	setSymbolName(sym, name)
	switch s := sym.(type) {
	case *GenericProcedure:
		s.parent = t
	case *CustomOperator:
		s.parent = t
	case *ExternalSymbol:
		s.parent = t
	case *ClassProcedure:
		s.parent = t
	case *Variable:
		s.parent = t
	default:
		if scope := sym.Scope(); scope != nil {
			scope.parent = t
			scope.owner = sym
		}
	}
	t.names = append(t.names, name)
	t.table[name] = sym
}

func setSymbolName(sym Symbol, name string) {
	switch s := sym.(type) {
	case *Program:
		s.name = name
	case *Module:
		s.name = name
	case *Subroutine:
		s.name = name
	case *Function:
		s.name = name
	case *GenericProcedure:
		s.name = name
	case *CustomOperator:
		s.name = name
	case *ExternalSymbol:
		s.name = name
	case *DerivedType:
		s.name = name
	case *ClassType:
		s.name = name
	case *ClassProcedure:
		s.name = name
	case *Variable:
		s.name = name
	}
}

// LookupLocal returns the symbol bound to name in this scope only.
func (t *SymbolTable) LookupLocal(name string) (Symbol, bool) {
	sym, ok := t.table[normalizeName(name)]
	return sym, ok
}

// Lookup performs a local lookup, then walks parent scopes, returning
// the first hit.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	name = normalizeName(name)
	for scope := t; scope != nil; scope = scope.parent {
		if sym, ok := scope.table[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Each iterates the scope in insertion order. Returning false stops the
// iteration.
func (t *SymbolTable) Each(fn func(name string, sym Symbol) bool) {
	for _, name := range t.names {
		if !fn(name, t.table[name]) {
			return
		}
	}
}

// Names returns the bound names in insertion order.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Root walks up to the global scope containing this table.
func (t *SymbolTable) Root() *SymbolTable {
	scope := t
	for scope.parent != nil {
		scope = scope.parent
	}
	return scope
}

// path renders scope.name for error anchoring.
func (t *SymbolTable) path(name string) string {
	if t.owner != nil {
		return Path(t.owner) + "." + name
	}
	return name
}

// ResolveExternal locates ext's target by opening ModuleName in the
// global scope, descending ScopeNames, and performing a local lookup of
// OriginalName in the leaf scope. On success the target is recorded on
// ext. Fails with an UnresolvedExternal error.
func ResolveExternal(global *SymbolTable, ext *ExternalSymbol) (Symbol, error) {
	mod, ok := global.LookupLocal(ext.ModuleName)
	if !ok {
		return nil, errors.At(errors.SYM003, Path(ext), "module %q not found", ext.ModuleName)
	}
	scope := mod.Scope()
	if scope == nil {
		return nil, errors.At(errors.SYM003, Path(ext), "symbol %q does not own a scope", ext.ModuleName)
	}
	for _, name := range ext.ScopeNames {
		sym, ok := scope.LookupLocal(name)
		if !ok {
			return nil, errors.At(errors.SYM003, Path(ext), "scope %q not found in %q", name, ext.ModuleName)
		}
		scope = sym.Scope()
		if scope == nil {
			return nil, errors.At(errors.SYM003, Path(ext), "symbol %q does not own a scope", name)
		}
	}
	target, ok := scope.LookupLocal(ext.OriginalName)
	if !ok {
		return nil, errors.At(errors.SYM003, Path(ext), "%q not found under module %q", ext.OriginalName, ext.ModuleName)
	}
	ext.External = target
	return target, nil
}
