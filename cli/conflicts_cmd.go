package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/warp/panel-estimator/factory"
	"github.com/warp/panel-estimator/schedule"
)

func newConflictsCmd() *cobra.Command {
	var file string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Detect double-booked estimators in an assignment batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConflicts(cmd.OutOrStdout(), file, asJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Assignments JSON file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print conflicts as JSON")
	return cmd
}

type conflictsOutput struct {
	Assignments int        `json:"assignments"`
	Conflicts   []pairJSON `json:"conflicts"`
}

type pairJSON struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

func runConflicts(out io.Writer, file string, asJSON bool) error {
	data, err := readFile(file)
	if err != nil {
		return err
	}
	assignments, err := factory.ParseAssignments(data)
	if err != nil {
		return err
	}

	pairs, err := schedule.DetectConflicts(assignments)
	if err != nil {
		return err
	}

	if asJSON {
		res := conflictsOutput{Assignments: len(assignments), Conflicts: make([]pairJSON, len(pairs))}
		for i, p := range pairs {
			res.Conflicts[i] = pairJSON{First: p.First, Second: p.Second}
		}
		return writeJSON(out, res)
	}

	fmt.Fprintln(out, styleHeader.Render("CONFLICTS"))
	if len(pairs) == 0 {
		fmt.Fprintln(out, styleGreen.Render(fmt.Sprintf("No conflicts in %d assignments", len(assignments))))
		return nil
	}

	byID := make(map[string]schedule.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
	}
	for _, p := range pairs {
		a, b := byID[p.First], byID[p.Second]
		fmt.Fprintf(out, "%s  %s %s  %s [%d-%d) overlaps %s [%d-%d)\n",
			styleRed.Render("✗"),
			a.ResourceID,
			a.Date,
			p.First, a.StartHour, a.End(),
			p.Second, b.StartHour, b.End(),
		)
	}
	fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("%d conflict(s) in %d assignments", len(pairs), len(assignments))))
	return nil
}
