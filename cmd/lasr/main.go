package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/iface"
	"github.com/lcompilers/lasr/internal/modfile"
)

var (
	// Version info - set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	// Color output
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)

	switch command {
	case "pickle":
		requireFile(command)
		pickleFile(flag.Arg(1))

	case "verify":
		requireFile(command)
		verifyFile(flag.Arg(1))

	case "modinfo":
		requireFile(command)
		modinfoFile(flag.Arg(1))

	case "inspect":
		requireFile(command)
		inspectFile(flag.Arg(1))

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func requireFile(command string) {
	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
		fmt.Printf("Usage: lasr %s <module%s>\n", command, modfile.Ext)
		os.Exit(1)
	}
}

func loadModule(path string) (*asr.TranslationUnit, *asr.Module, modfile.Header) {
	u, m, hdr, err := modfile.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	return u, m, hdr
}

func pickleFile(path string) {
	_, m, _ := loadModule(path)
	fmt.Println(asr.Pickle(m))
}

func verifyFile(path string) {
	u, m, _ := loadModule(path)
	rep := asr.Validate(u)
	if rep.Empty() {
		fmt.Printf("%s %s is well-formed\n", green("OK"), bold(m.Name()))
		return
	}
	for _, e := range rep.All() {
		fmt.Fprintf(os.Stderr, "%s %s\n", red(e.Code), e.Message)
	}
	os.Exit(1)
}

func modinfoFile(path string) {
	_, m, hdr := loadModule(path)
	fmt.Printf("%s %s\n", bold("module"), cyan(m.Name()))
	fmt.Printf("  abi:      %s\n", m.Abi)
	fmt.Printf("  version:  %d\n", hdr.Version)
	fmt.Printf("  producer: %s\n", modfile.ProducerName(hdr.Producer))
	fmt.Printf("  digest:   %s\n", hdr.Digest[:16])
	fmt.Printf("  iface:    %s\n", iface.Digest(m)[:16])
	if len(m.Dependencies) > 0 {
		fmt.Printf("  deps:     %v\n", m.Dependencies)
	}
	fmt.Printf("  symbols:  %d\n", m.SymTab.Len())
	m.SymTab.Each(func(name string, sym asr.Symbol) bool {
		fmt.Printf("    %s %s\n", yellow(symbolKind(sym)), name)
		return true
	})
}

func symbolKind(sym asr.Symbol) string {
	switch sym.(type) {
	case *asr.Function:
		return "function  "
	case *asr.Subroutine:
		return "subroutine"
	case *asr.GenericProcedure:
		return "generic   "
	case *asr.CustomOperator:
		return "operator  "
	case *asr.ExternalSymbol:
		return "external  "
	case *asr.DerivedType:
		return "type      "
	case *asr.ClassType:
		return "class     "
	case *asr.Variable:
		return "variable  "
	default:
		return "symbol    "
	}
}

func printVersion() {
	fmt.Printf("lasr %s\n", Version)
	fmt.Printf("  commit: %s\n", Commit)
	fmt.Printf("  built:  %s\n", BuildTime)
}

func printHelp() {
	fmt.Printf("%s - ASR module file tool\n\n", bold("lasr"))
	fmt.Println("Usage:")
	fmt.Printf("  lasr pickle <file%s>    Print the canonical pickle of a module\n", modfile.Ext)
	fmt.Printf("  lasr verify <file%s>    Validate a module's invariants\n", modfile.Ext)
	fmt.Printf("  lasr modinfo <file%s>   Show header and symbol summary\n", modfile.Ext)
	fmt.Printf("  lasr inspect <file%s>   Browse a module interactively\n", modfile.Ext)
	fmt.Println("\nFlags:")
	fmt.Println("  -version   Print version information")
	fmt.Println("  -help      Show this help")
}
