package commands

import (
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard header counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			st, err := c.LoadStats(cmd.Context())
			if err != nil {
				return failed(c, err)
			}
			return e.r.Stats(*st)
		},
	}
}
