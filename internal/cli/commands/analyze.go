package commands

import (
	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// NewAnalyzeCommand creates the analyze command group.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analyze",
		Aliases: []string{"analyse"},
		Short:   "Analyse a department, year, the college or a batch",
	}
	cmd.AddCommand(newAnalyzeDepartmentCommand())
	cmd.AddCommand(newAnalyzeYearCommand())
	cmd.AddCommand(newAnalyzeCollegeCommand())
	cmd.AddCommand(newAnalyzeBatchCommand())
	return cmd
}

// showGroup prints the analysis the controller stored for scope.
func showGroup(e env, c *app.Controller, scope core.Scope, err error) error {
	if err != nil {
		return failed(c, err)
	}
	g, ok := c.Snapshot().Group(scope)
	if !ok {
		return nil
	}
	return e.r.Group(g)
}

func newAnalyzeDepartmentCommand() *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:     "department <dept>",
		Aliases: []string{"dept"},
		Short:   "Analyse one department",
		Example: `  edumetric analyze department CSE --year 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			_, err = c.AnalyseDepartment(cmd.Context(), args[0], year)
			return showGroup(e, c, core.ScopeDepartment, err)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "Limit to one year")
	return cmd
}

func newAnalyzeYearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "year <year>",
		Short: "Analyse one year across departments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			_, err = c.AnalyseYear(cmd.Context(), args[0])
			return showGroup(e, c, core.ScopeYear, err)
		},
	}
}

func newAnalyzeCollegeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "college",
		Short: "Analyse the whole college",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			_, err = c.AnalyseCollege(cmd.Context())
			return showGroup(e, c, core.ScopeCollege, err)
		},
	}
}

func newAnalyzeBatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "batch <batch-year>",
		Short:   "Analyse one admission batch",
		Example: `  edumetric analyze batch 2024`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			if _, err := c.AnalyseBatch(cmd.Context(), args[0]); err != nil {
				return failed(c, err)
			}
			b := c.Snapshot().Batch
			if b == nil {
				return nil
			}
			return e.r.Batch(*b)
		},
	}
}
