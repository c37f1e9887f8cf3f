// Package foreign materializes interface ASR for modules whose
// declarations come from outside the compiler: BindC manifests written
// against foreign headers. The resulting node shape is the same
// interface form a native module file carries, with abi BindC.
package foreign

import (
	"gopkg.in/yaml.v3"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
)

// Manifest is the out-of-band declaration source for one BindC module.
type Manifest struct {
	Library    string      `yaml:"library"`
	Procedures []Procedure `yaml:"procedures"`
}

// Procedure declares one foreign procedure. A procedure with a Returns
// clause becomes a Function, otherwise a Subroutine. Bind is the C
// symbol name; it defaults to Name.
type Procedure struct {
	Name    string `yaml:"name"`
	Bind    string `yaml:"bind"`
	Args    []Arg  `yaml:"args"`
	Returns *Arg   `yaml:"returns"`
}

// Arg declares one argument or return value.
type Arg struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Kind   int    `yaml:"kind"`
	Intent string `yaml:"intent"`
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.FGN001, "malformed manifest: %v", err)
	}
	if m.Library == "" {
		return nil, errors.New(errors.FGN001, "manifest has no library name")
	}
	return &m, nil
}

// LoadBindC builds the interface module a manifest describes, inside a
// fresh translation unit.
func LoadBindC(data []byte) (*asr.TranslationUnit, *asr.Module, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	unit := asr.NewUnit(asr.NewArena())
	b := asr.NewBuilder(unit.Arena())
	mod, err := b.Module(unit.Global, m.Library, asr.ABIBindC)
	if err != nil {
		return nil, nil, err
	}
	for _, proc := range m.Procedures {
		if proc.Name == "" {
			return nil, nil, errors.New(errors.FGN001, "procedure in %q has no name", m.Library)
		}
		if err := declare(b, mod, proc); err != nil {
			return nil, nil, err
		}
	}
	unit.Items = append(unit.Items, mod)
	return unit, mod, nil
}

func declare(b *asr.Builder, mod *asr.Module, proc Procedure) error {
	bind := proc.Bind
	if bind == "" {
		bind = proc.Name
	}
	if proc.Returns != nil {
		f, err := b.Function(mod.SymTab, proc.Name, asr.ABIBindC, asr.AccessPublic, asr.DefInterface)
		if err != nil {
			return err
		}
		f.BindCName = bind
		names, err := declareArgs(b, f.SymTab, proc.Args)
		if err != nil {
			return err
		}
		ret, err := argType(b, *proc.Returns)
		if err != nil {
			return err
		}
		if _, err := b.Variable(f.SymTab, proc.Name, asr.IntentReturnVar, asr.StorageDefault, ret, asr.AccessPublic, asr.PresenceRequired); err != nil {
			return err
		}
		if err := b.SetArgs(f, names...); err != nil {
			return err
		}
		return b.SetReturnVar(f, proc.Name)
	}
	s, err := b.Subroutine(mod.SymTab, proc.Name, asr.ABIBindC, asr.AccessPublic, asr.DefInterface)
	if err != nil {
		return err
	}
	s.BindCName = bind
	names, err := declareArgs(b, s.SymTab, proc.Args)
	if err != nil {
		return err
	}
	return b.SetArgs(s, names...)
}

func declareArgs(b *asr.Builder, scope *asr.SymbolTable, args []Arg) ([]string, error) {
	var names []string
	for _, arg := range args {
		if arg.Name == "" {
			return nil, errors.New(errors.FGN001, "argument has no name")
		}
		t, err := argType(b, arg)
		if err != nil {
			return nil, err
		}
		intent, err := argIntent(arg.Intent)
		if err != nil {
			return nil, err
		}
		if _, err := b.Variable(scope, arg.Name, intent, asr.StorageDefault, t, asr.AccessPublic, asr.PresenceRequired); err != nil {
			return nil, err
		}
		names = append(names, arg.Name)
	}
	return names, nil
}

func argType(b *asr.Builder, arg Arg) (asr.TType, error) {
	kind := arg.Kind
	if kind == 0 {
		kind = 4
	}
	switch arg.Type {
	case "integer":
		return b.Integer(kind), nil
	case "real":
		return b.Real(kind), nil
	case "complex":
		return b.Complex(kind), nil
	case "logical":
		return b.Logical(kind), nil
	case "character":
		return b.Character(1, asr.LenInferred, nil)
	default:
		return nil, errors.New(errors.FGN002, "type %q has no ASR rendering", arg.Type)
	}
}

func argIntent(s string) (asr.Intent, error) {
	switch s {
	case "", "in":
		return asr.IntentIn, nil
	case "out":
		return asr.IntentOut, nil
	case "inout":
		return asr.IntentInOut, nil
	default:
		return 0, errors.New(errors.FGN001, "intent %q is not recognized", s)
	}
}
