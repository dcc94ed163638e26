// Command loxi runs a single Language source file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/loxlang/loxi/internal/run"
)

// Build metadata, set by linker flags at release time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var bench bool

// Any flag cobra doesn't recognize is accepted without an error and then
// dropped; it is not treated as a file path. A non-flag argument right after
// an unknown flag is taken as that flag's value and dropped with it, so
// "loxi script.lox --some-typo" runs script.lox but "loxi --some-typo
// script.lox" is left with no file argument.
var rootCmd = &cobra.Command{
	Use:                "loxi [file]",
	Short:              "loxi runs Language source files",
	Args:               cobra.MaximumNArgs(1),
	Version:            Version,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runFile,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolVar(&bench, "bench", false, "print elapsed wall-clock time after execution")
}

func runFile(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one source file argument")
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	start := time.Now()
	colorize := isTerminal(os.Stderr)
	code := run.Execute(src, os.Stdout, os.Stderr, colorize)
	if bench {
		fmt.Fprintf(os.Stderr, "elapsed: %s\n", time.Since(start))
	}

	if code != run.ExitOK {
		os.Exit(code)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(run.ExitError)
	}
}
