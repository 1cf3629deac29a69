package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openfga-dslc/openfga-dslc/internal/cli/ui"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/cache"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/parser"
	"github.com/openfga-dslc/openfga-dslc/internal/compiler/serializer"
)

var (
	compileJSON    bool
	compileVerbose bool
	compileOutput  string
)

// compileDiagnostic is the JSON shape reported for a single parse failure,
// shared in spirit with the diagnostics the language server publishes.
type compileDiagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <file|dir>",
		Short: "Compile .fga source into OpenFGA authorization-model JSON",
		Long: `Compile one .fga file, or every .fga file in a directory, into the
canonical OpenFGA authorization-model JSON document.

The compile pipeline:
  1. Lexical analysis - tokenize the .fga source
  2. Parsing - build the relation-expression AST
  3. Serialization - lower the AST into OpenFGA userset JSON`,
		Example: `  # Compile a single file, writing model.json next to it
  fgac compile model.fga

  # Compile every .fga file in a directory
  fgac compile ./models

  # Emit diagnostics as JSON instead of colorized terminal output
  fgac compile model.fga --json

  # Write output elsewhere
  fgac compile model.fga --output build/model.json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}

	cmd.Flags().BoolVar(&compileJSON, "json", false, "Output diagnostics in JSON format")
	cmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "Show per-file compile progress")
	cmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output path (single file only)")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	target := args[0]

	successColor := color.New(color.FgGreen, color.Bold)
	errorColor := color.New(color.FgRed, color.Bold)
	infoColor := color.New(color.FgCyan)

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	var fgaFiles []string
	if info.IsDir() {
		fgaFiles, err = cache.ScanDirectory(target)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", target, err)
		}
	} else {
		fgaFiles = []string{target}
	}

	if len(fgaFiles) == 0 {
		ui.WriteError(os.Stderr, ui.ErrorOptions{
			Level:       ui.ErrorLevelError,
			Context:     "compile",
			Problem:     fmt.Sprintf("no .fga files found under %s", target),
			Consequence: "there is nothing to compile.",
			HelpCommands: []string{
				"fgac new <project-name>  to scaffold a starter model",
			},
		})
		return fmt.Errorf("no .fga files found under %s", target)
	}

	if compileVerbose {
		infoColor.Printf("Found %d .fga file(s)\n", len(fgaFiles))
	}

	coordinator := cache.NewCompilationCoordinator()
	results, metrics, err := coordinator.CompileFiles(fgaFiles, len(fgaFiles) > 1)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	var diagnostics []compileDiagnostic
	var written []string

	table := ui.NewTable(os.Stdout, []string{"File", "Output", "Cached"}, nil)

	for _, result := range results {
		if result.Err != nil {
			diagnostics = append(diagnostics, diagnosticFor(result.Path, result.Err))
			continue
		}

		outPath := compileOutput
		if outPath == "" || len(fgaFiles) > 1 {
			outPath = strings.TrimSuffix(result.Path, filepath.Ext(result.Path)) + ".json"
		}

		data, err := serializer.SerializeIndent(result.Document)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", result.Path, err)
		}

		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}

		written = append(written, outPath)
		table.AddRow(result.Path, outPath, fmt.Sprintf("%t", result.Cached))
	}

	if compileVerbose && len(written) > 0 {
		table.Render()
	}

	if len(diagnostics) > 0 {
		if compileJSON {
			outputDiagnosticsJSON(diagnostics)
		} else {
			outputDiagnosticsTerminal(diagnostics, errorColor)
		}
		return fmt.Errorf("compilation failed with %d error(s)", len(diagnostics))
	}

	if compileVerbose {
		infoColor.Printf("Cache hit rate: %.1f%%\n", metrics.CacheHitRate())
	}

	successColor.Printf("Compiled %d file(s) in %s\n", len(written), metrics.TotalDuration.Round(time.Millisecond))
	return nil
}

// dslKeywords is the reserved-word vocabulary used to suggest a correction
// when a syntax error's offending token looks like a misspelled keyword.
var dslKeywords = []string{"type", "relations", "define", "as", "self", "or", "and", "but", "not", "from"}

func diagnosticFor(path string, err error) compileDiagnostic {
	if perr, ok := err.(*parser.ParserError); ok {
		message := perr.Error()
		if suggestion := suggestKeyword(perr.Token.Literal); suggestion != "" {
			message += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		return compileDiagnostic{
			File:    path,
			Line:    perr.Token.Line,
			Column:  perr.Token.Column,
			Message: message,
		}
	}
	return compileDiagnostic{File: path, Message: err.Error()}
}

// suggestKeyword returns the closest reserved word to literal, when one is
// within fuzzy-matching distance, for misspelled-keyword syntax errors.
func suggestKeyword(literal string) string {
	matches := ui.FindSimilar(literal, dslKeywords, nil)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

func outputDiagnosticsJSON(diags []compileDiagnostic) {
	output := struct {
		Success     bool                `json:"success"`
		Diagnostics []compileDiagnostic `json:"diagnostics"`
	}{
		Success:     false,
		Diagnostics: diags,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(output)
}

func outputDiagnosticsTerminal(diags []compileDiagnostic, errorColor *color.Color) {
	errorColor.Fprintf(os.Stderr, "\nCompilation failed with %d error(s):\n\n", len(diags))

	for i, d := range diags {
		fmt.Fprintf(os.Stderr, "%d. %s:%d:%d\n", i+1, d.File, d.Line, d.Column)
		fmt.Fprintf(os.Stderr, "   %s\n", d.Message)

		if i < len(diags)-1 {
			fmt.Fprintln(os.Stderr, strings.Repeat("-", 60))
		}
	}
	fmt.Fprintln(os.Stderr)
}
