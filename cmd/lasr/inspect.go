package main

import (
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/modfile"
)

// inspectFile runs a small interactive browser over a module file.
func inspectFile(path string) {
	u, m, hdr := loadModule(path)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	// Complete on symbol names for show/pickle
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, cmd := range []string{"ls", "show ", "pickle ", "info", "verify", "help", "quit"} {
			if strings.HasPrefix(cmd, input) {
				out = append(out, cmd)
			}
		}
		for _, verb := range []string{"show ", "pickle "} {
			if rest, ok := strings.CutPrefix(input, verb); ok {
				for _, name := range m.SymTab.Names() {
					if strings.HasPrefix(name, rest) {
						out = append(out, verb+name)
					}
				}
			}
		}
		return out
	})

	fmt.Printf("%s %s (%s, %s)\n", bold("inspecting"), cyan(m.Name()), m.Abi, modfile.ProducerName(hdr.Producer))
	fmt.Println("Type 'help' for commands, 'quit' to exit")

	for {
		input, err := line.Prompt("asr> ")
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		cmd, arg, _ := strings.Cut(input, " ")
		switch cmd {
		case "quit", "exit", "q":
			return
		case "help":
			fmt.Println("  ls            list symbols")
			fmt.Println("  show <name>   summarize one symbol")
			fmt.Println("  pickle <name> print a symbol's pickle")
			fmt.Println("  info          header summary")
			fmt.Println("  verify        run validation")
			fmt.Println("  quit          exit")
		case "ls":
			m.SymTab.Each(func(name string, sym asr.Symbol) bool {
				fmt.Printf("  %s %s\n", yellow(symbolKind(sym)), name)
				return true
			})
		case "show":
			showSymbol(m, arg)
		case "pickle":
			if sym, ok := m.SymTab.LookupLocal(arg); ok {
				fmt.Println(asr.Pickle(sym))
			} else {
				fmt.Printf("%s: no symbol %q\n", red("Error"), arg)
			}
		case "info":
			fmt.Printf("  module:   %s\n", m.Name())
			fmt.Printf("  abi:      %s\n", m.Abi)
			fmt.Printf("  version:  %d\n", hdr.Version)
			fmt.Printf("  producer: %s\n", modfile.ProducerName(hdr.Producer))
			fmt.Printf("  digest:   %s\n", hdr.Digest[:16])
		case "verify":
			rep := asr.Validate(u)
			if rep.Empty() {
				fmt.Printf("%s no violations\n", green("OK"))
			} else {
				for _, e := range rep.All() {
					fmt.Printf("%s %s\n", red(e.Code), e.Message)
				}
			}
		default:
			fmt.Printf("%s: unknown command %q (try 'help')\n", red("Error"), cmd)
		}
	}
}

func showSymbol(m *asr.Module, name string) {
	sym, ok := m.SymTab.LookupLocal(name)
	if !ok {
		fmt.Printf("%s: no symbol %q\n", red("Error"), name)
		return
	}
	switch s := sym.(type) {
	case *asr.Function:
		fmt.Printf("  function %s (%s, %s)\n", bold(name), s.Abi, s.Deftype)
		for _, a := range s.Args {
			if v, ok := a.(*asr.Var); ok {
				if vv, ok := v.Sym.(*asr.Variable); ok {
					fmt.Printf("    %s: %s %s\n", vv.Name(), asr.TypeName(vv.Ttype), vv.Intent)
				}
			}
		}
		if ret, ok := s.ReturnVar.(*asr.Var); ok {
			fmt.Printf("    returns %s\n", asr.TypeName(ret.Type()))
		}
	case *asr.Subroutine:
		fmt.Printf("  subroutine %s (%s, %s)\n", bold(name), s.Abi, s.Deftype)
		for _, a := range s.Args {
			if v, ok := a.(*asr.Var); ok {
				if vv, ok := v.Sym.(*asr.Variable); ok {
					fmt.Printf("    %s: %s %s\n", vv.Name(), asr.TypeName(vv.Ttype), vv.Intent)
				}
			}
		}
	case *asr.GenericProcedure:
		fmt.Printf("  generic %s with %d procedures\n", bold(name), len(s.Procs))
		for _, p := range s.Procs {
			fmt.Printf("    %s\n", p.Name())
		}
	case *asr.Variable:
		fmt.Printf("  variable %s: %s %s %s\n", bold(name), asr.TypeName(s.Ttype), s.Intent, s.Storage)
	case *asr.DerivedType:
		fmt.Printf("  type %s with members %v\n", bold(name), s.Members)
	case *asr.ExternalSymbol:
		fmt.Printf("  external %s -> %s.%s\n", bold(name), s.ModuleName, s.OriginalName)
	default:
		fmt.Printf("  %s %s\n", symbolKind(sym), bold(name))
	}
}
