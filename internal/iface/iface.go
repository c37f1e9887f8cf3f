// Package iface projects a fully elaborated module onto its interface:
// the shape persisted in module files and consumed by importers.
//
// The projection empties procedure bodies, rewrites the ABI to the
// module's interface ABI, marks procedures as interfaces, drops private
// symbols, and keeps generic and custom-operator sets restricted to
// their public procedures. It preserves all externally observable
// typing information and is idempotent.
package iface

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
)

// Project builds the interface form of m inside dst's arena and global
// scope. abi is the interface ABI recorded on the projected module and
// its procedures: ABILFortranModule for native modules,
// ABIGFortranModule or ABIBindC for imported foreign ones.
func Project(dst *asr.TranslationUnit, m *asr.Module, abi asr.ABI) (*asr.Module, error) {
	switch abi {
	case asr.ABILFortranModule, asr.ABIGFortranModule, asr.ABIBindC:
	default:
		return nil, errors.New(errors.MOD003, "abi %s is not an interface abi", abi)
	}
	p := &projector{
		b:     asr.NewBuilder(dst.Arena()),
		remap: make(map[asr.Symbol]asr.Symbol),
		abi:   abi,
	}
	out, err := p.module(dst.Global, m)
	if err != nil {
		return nil, err
	}
	dst.Items = append(dst.Items, out)
	return out, nil
}

// Digest returns the deterministic digest of a module's interface,
// computed over its canonical pickle. Importers compare digests to
// decide whether dependents need re-elaboration.
func Digest(m *asr.Module) string {
	sum := sha256.Sum256(asr.Digestible(m))
	return hex.EncodeToString(sum[:])
}

type projector struct {
	b     *asr.Builder
	remap map[asr.Symbol]asr.Symbol
	abi   asr.ABI
}

func (p *projector) module(global *asr.SymbolTable, m *asr.Module) (*asr.Module, error) {
	out, err := p.b.Module(global, m.Name(), p.abi)
	if err != nil {
		return nil, err
	}
	out.Dependencies = append([]string(nil), m.Dependencies...)
	out.Access = m.Access
	p.remap[m] = out

	var projectErr error
	m.SymTab.Each(func(name string, sym asr.Symbol) bool {
		if access(sym) == asr.AccessPrivate {
			return true
		}
		if _, err := p.symbol(out.SymTab, name, sym); err != nil {
			projectErr = err
			return false
		}
		return true
	})
	if projectErr != nil {
		return nil, projectErr
	}
	return out, nil
}

func access(sym asr.Symbol) asr.Access {
	switch s := sym.(type) {
	case *asr.Function:
		return s.Access
	case *asr.Subroutine:
		return s.Access
	case *asr.GenericProcedure:
		return s.Access
	case *asr.CustomOperator:
		return s.Access
	case *asr.ExternalSymbol:
		return s.Access
	case *asr.DerivedType:
		return s.Access
	case *asr.ClassType:
		return s.Access
	case *asr.Variable:
		return s.Access
	case *asr.Module:
		return s.Access
	default:
		return asr.AccessPublic
	}
}

func (p *projector) symbol(scope *asr.SymbolTable, name string, sym asr.Symbol) (asr.Symbol, error) {
	if out, ok := p.remap[sym]; ok {
		return out, nil
	}
	switch s := sym.(type) {
	case *asr.Function:
		return p.function(scope, name, s)
	case *asr.Subroutine:
		return p.subroutine(scope, name, s)
	case *asr.GenericProcedure:
		return p.generic(scope, name, s)
	case *asr.CustomOperator:
		return p.operator(scope, name, s)
	case *asr.DerivedType:
		return p.derivedType(scope, name, s)
	case *asr.ClassType:
		return p.classType(scope, name, s)
	case *asr.ClassProcedure:
		return p.classProcedure(scope, scope, name, s)
	case *asr.Variable:
		return p.variable(scope, name, s)
	case *asr.ExternalSymbol:
		out, err := p.b.ExternalSymbol(scope, name, s.ModuleName, s.ScopeNames, s.OriginalName, s.Access)
		if err != nil {
			// The foreign module is not loaded into dst; carry the
			// declared path and leave resolution to the importer.
			out = &asr.ExternalSymbol{
				ModuleName:   s.ModuleName,
				ScopeNames:   append([]string(nil), s.ScopeNames...),
				OriginalName: s.OriginalName,
				Access:       s.Access,
			}
			scope.Restore(name, out)
		}
		p.remap[sym] = out
		return out, nil
	default:
		return nil, errors.At(errors.MOD003, asr.Path(sym), "symbol %T has no interface form", sym)
	}
}

func (p *projector) function(scope *asr.SymbolTable, name string, f *asr.Function) (asr.Symbol, error) {
	// Interface procedures keep their signature scope (arguments and
	// return variable) and lose locals and bodies.
	out, err := p.b.Function(scope, name, p.abi, f.Access, asr.DefInterface)
	if err != nil {
		return nil, err
	}
	out.BindCName = f.BindCName
	p.remap[f] = out
	if err := p.signature(out.SymTab, f.SymTab); err != nil {
		return nil, err
	}
	var argNames []string
	for _, a := range f.Args {
		if v, ok := a.(*asr.Var); ok {
			argNames = append(argNames, v.Sym.Name())
		}
	}
	if err := p.b.SetArgs(out, argNames...); err != nil {
		return nil, err
	}
	if ret, ok := f.ReturnVar.(*asr.Var); ok {
		if err := p.b.SetReturnVar(out, ret.Sym.Name()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *projector) subroutine(scope *asr.SymbolTable, name string, s *asr.Subroutine) (asr.Symbol, error) {
	out, err := p.b.Subroutine(scope, name, p.abi, s.Access, asr.DefInterface)
	if err != nil {
		return nil, err
	}
	out.BindCName = s.BindCName
	p.remap[s] = out
	if err := p.signature(out.SymTab, s.SymTab); err != nil {
		return nil, err
	}
	var argNames []string
	for _, a := range s.Args {
		if v, ok := a.(*asr.Var); ok {
			argNames = append(argNames, v.Sym.Name())
		}
	}
	if err := p.b.SetArgs(out, argNames...); err != nil {
		return nil, err
	}
	return out, nil
}

// signature copies the argument and return variables of a procedure
// scope, dropping locals.
func (p *projector) signature(dst, src *asr.SymbolTable) error {
	var copyErr error
	src.Each(func(name string, sym asr.Symbol) bool {
		v, ok := sym.(*asr.Variable)
		if !ok || v.Intent == asr.IntentLocal {
			return true
		}
		if _, err := p.variable(dst, name, v); err != nil {
			copyErr = err
			return false
		}
		return true
	})
	return copyErr
}

func (p *projector) variable(scope *asr.SymbolTable, name string, v *asr.Variable) (asr.Symbol, error) {
	out, err := p.b.Variable(scope, name, v.Intent, v.Storage, p.ttype(v.Ttype), v.Access, v.Presence)
	if err != nil {
		return nil, err
	}
	out.Abi = p.abi
	out.ValueAttr = v.ValueAttr
	out.SymbolicValue = v.SymbolicValue
	out.Val = v.Val
	p.remap[v] = out
	return out, nil
}

func (p *projector) generic(scope *asr.SymbolTable, name string, g *asr.GenericProcedure) (asr.Symbol, error) {
	procs, err := p.publicProcs(scope, g.Procs)
	if err != nil {
		return nil, err
	}
	out, err := p.b.GenericProcedure(scope, name, procs, g.Access)
	if err != nil {
		return nil, err
	}
	p.remap[g] = out
	return out, nil
}

func (p *projector) operator(scope *asr.SymbolTable, name string, c *asr.CustomOperator) (asr.Symbol, error) {
	procs, err := p.publicProcs(scope, c.Procs)
	if err != nil {
		return nil, err
	}
	out, err := p.b.CustomOperator(scope, name, procs, c.Access)
	if err != nil {
		return nil, err
	}
	p.remap[c] = out
	return out, nil
}

// publicProcs projects the public members of an overload set. Members
// already projected through the module walk reuse their projection.
func (p *projector) publicProcs(scope *asr.SymbolTable, procs []asr.Symbol) ([]asr.Symbol, error) {
	var out []asr.Symbol
	for _, proc := range procs {
		if access(proc) == asr.AccessPrivate {
			continue
		}
		projected, err := p.symbol(scope, proc.Name(), proc)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}
	return out, nil
}

func (p *projector) derivedType(scope *asr.SymbolTable, name string, d *asr.DerivedType) (asr.Symbol, error) {
	var parent asr.Symbol
	if d.Parent != nil {
		// The parent was either projected already or is external.
		if mapped, ok := p.remap[d.Parent]; ok {
			parent = mapped
		} else {
			parent = d.Parent
		}
	}
	out, err := p.b.DerivedType(scope, name, p.abi, d.Access, parent)
	if err != nil {
		return nil, err
	}
	out.Members = append([]string(nil), d.Members...)
	p.remap[d] = out
	var memberErr error
	d.SymTab.Each(func(memberName string, sym asr.Symbol) bool {
		if v, ok := sym.(*asr.Variable); ok {
			if _, err := p.variable(out.SymTab, memberName, v); err != nil {
				memberErr = err
				return false
			}
		}
		return true
	})
	if memberErr != nil {
		return nil, memberErr
	}
	return out, nil
}

func (p *projector) classType(scope *asr.SymbolTable, name string, c *asr.ClassType) (asr.Symbol, error) {
	out, err := p.b.ClassType(scope, name, p.abi, c.Access)
	if err != nil {
		return nil, err
	}
	p.remap[c] = out
	var memberErr error
	c.SymTab.Each(func(memberName string, sym asr.Symbol) bool {
		switch s := sym.(type) {
		case *asr.Variable:
			if _, err := p.variable(out.SymTab, memberName, s); err != nil {
				memberErr = err
				return false
			}
		case *asr.ClassProcedure:
			if _, err := p.classProcedure(out.SymTab, scope, memberName, s); err != nil {
				memberErr = err
				return false
			}
		}
		return true
	})
	if memberErr != nil {
		return nil, memberErr
	}
	return out, nil
}

// classProcedure binds the name inside the projected class scope. The
// bound procedure is remapped through procScope, the scope its own
// projection lives in, so the binding and the module walk share one
// projected symbol.
func (p *projector) classProcedure(scope, procScope *asr.SymbolTable, name string, c *asr.ClassProcedure) (asr.Symbol, error) {
	var proc asr.Symbol
	if c.Proc != nil {
		mapped, err := p.symbol(procScope, c.Proc.Name(), c.Proc)
		if err != nil {
			return nil, err
		}
		proc = mapped
	}
	out, err := p.b.ClassProcedure(scope, name, c.ProcName, proc, p.abi)
	if err != nil {
		return nil, err
	}
	p.remap[c] = out
	return out, nil
}

// ttype maps a type onto the projection, remapping derived-type
// references to their projected symbols.
func (p *projector) ttype(t asr.TType) asr.TType {
	switch t := t.(type) {
	case *asr.Derived:
		if mapped, ok := p.remap[t.Sym]; ok {
			return &asr.Derived{Sym: mapped, Dims: t.Dims}
		}
		return t
	case *asr.Class:
		if mapped, ok := p.remap[t.Sym]; ok {
			return &asr.Class{Sym: mapped, Dims: t.Dims}
		}
		return t
	case *asr.Pointer:
		return &asr.Pointer{Target: p.ttype(t.Target)}
	default:
		return t
	}
}
