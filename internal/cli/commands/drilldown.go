package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func kindNames() []string {
	kinds := core.FilterKinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out
}

func scopeNames() []string {
	scopes := core.Scopes()
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, s.String())
	}
	return out
}

// NewDrilldownCommand creates the drilldown command.
func NewDrilldownCommand() *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "drilldown <kind> <value> <scope> <scope-value>",
		Short: "List the students behind a chart segment",
		Long: fmt.Sprintf(`List the students matching one label within a scope, the same query a
click on a dashboard chart runs.

  kind   %s
  scope  %s`, strings.Join(kindNames(), ", "), strings.Join(scopeNames(), ", ")),
		Example: `  # High-risk students of the 2024 batch
  edumetric drilldown risk high batch 2024

  # Poor performers in CSE, saved as a spreadsheet
  edumetric drilldown performance poor department CSE --xlsx poor.xlsx`,
		Args: cobra.ExactArgs(4),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return kindNames(), cobra.ShellCompDirectiveNoFileComp
			case 1:
				return []string{"high", "medium", "low", "poor"}, cobra.ShellCompDirectiveNoFileComp
			case 2:
				return scopeNames(), cobra.ShellCompDirectiveNoFileComp
			default:
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}

			st, err := c.OpenDrilldown(cmd.Context(), args[0], args[1], args[2], args[3])
			if err != nil {
				return failed(c, err)
			}
			if err := e.r.Drilldown(st); err != nil {
				return err
			}
			if st.Status == drilldown.StatusError {
				return fmt.Errorf("drill-down failed: %s", st.ErrorMessage)
			}
			if xlsxPath != "" {
				return writeXLSX(xlsxPath, st.Result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the students to an .xlsx file")
	return cmd
}

func writeXLSX(path string, rows []core.StudentSummary) error {
	f, err := os.Create(path) //nolint:gosec // path is given by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.WriteStudentsXLSX(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
