/*
Package cli implements the estimator command line tool.

PURPOSE:
  Runs both engines offline on JSON files, for checking a batch of calendar
  assignments or a quote before it goes anywhere near the server.

COMMANDS:
  estimator conflicts --file assignments.json [--json]
  estimator price     --file input.json [--round 2] [--json]
  estimator quote     --file quote.json [--profile profile.json] [--xlsx out.xlsx]

EXIT STATUS:
  Non-zero when a file cannot be read or an input is invalid. Finding
  conflicts is not an error.

SEE ALSO:
  - factory/: JSON file formats
  - cmd/estimator/main.go: Entry point
*/
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb4934"))
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleBold   = lipgloss.NewStyle().Bold(true)
)

// NewRootCmd builds the estimator command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "estimator",
		Short:         "Check estimator schedules and price panel quotes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newConflictsCmd(),
		newPriceCmd(),
		newQuoteCmd(),
	)
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
