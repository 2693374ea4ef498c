package main

import (
	"github.com/nvandessel/lastmile/internal/table"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate delivery times for every origin and mode",
		Long: `Run the Monte Carlo simulation and print one row per origin and mode
with the mean, 95th percentile and standard deviation of the trip time in
minutes.

Examples:
  lastmile simulate
  lastmile simulate --trials 50000 --seed 7
  lastmile simulate --origin "Sha Tin" --origin University --format csv
  lastmile simulate --workers 4 --detail`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			detail, _ := cmd.Flags().GetBool("detail")

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			summaries, _, err := rt.simulate(cmd)
			if err != nil {
				return err
			}

			rec := table.Summaries(summaries, detail)
			defer rec.Release()
			return table.Write(cmd.OutOrStdout(), rec, format)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().Bool("detail", false, "Include median, min, max and trial count columns")
	return cmd
}
