package main

import (
	"fmt"

	"github.com/nvandessel/lastmile/internal/comparison"
	"github.com/nvandessel/lastmile/internal/constants"
	"github.com/nvandessel/lastmile/internal/table"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare truck and rail plus drone mean times per origin",
		Long: `Run the simulation and print, per origin, the mean time of each mode,
the minutes saved by rail plus drone and the improvement as a percentage of
the truck time.

Examples:
  lastmile compare
  lastmile compare --format csv > comparison.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			rows, err := rt.compare(cmd)
			if err != nil {
				return err
			}

			rec := table.Comparisons(rows)
			defer rec.Release()
			out := cmd.OutOrStdout()
			if err := table.Write(out, rec, format); err != nil {
				return err
			}

			if format == constants.FormatText {
				if best, ok := comparison.Best(rows); ok {
					fmt.Fprintf(out, "\nLargest improvement: %s (%.1f min, %.1f%%)\n",
						best.Station, best.TimeSaved, best.ImprovementPct)
				}
			}
			return nil
		},
	}

	addRunFlags(cmd)
	return cmd
}
