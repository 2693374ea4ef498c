package main

import (
	"fmt"

	"github.com/nvandessel/lastmile/internal/apperr"
	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/table"
	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score candidate launch areas under decision scenarios",
		Long: `Normalize each area's route efficiency, population density and
congestion to 0-10 and combine them with each scenario's weights.

Without --scenario, prints the area by scenario score matrix. With
--scenario, prints that scenario's ranking with component scores.

Examples:
  lastmile score
  lastmile score --scenario Balanced`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("scenario")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			areas := cfg.Scoring.Areas
			if len(areas) == 0 {
				areas = scoring.DefaultAreas()
			}
			scenarios := cfg.Scoring.Scenarios
			if len(scenarios) == 0 {
				scenarios = scoring.DefaultScenarios()
			}

			scorer, err := scoring.NewScorer(areas)
			if err != nil {
				return err
			}

			if name != "" {
				sc, ok := scoring.FindScenario(scenarios, name)
				if !ok {
					return fmt.Errorf("%w: unknown scenario %q", apperr.ErrInvalidInput, name)
				}
				ranked, err := scorer.Rank(sc)
				if err != nil {
					return err
				}
				rec := table.Ranking(ranked)
				defer rec.Release()
				return table.Write(cmd.OutOrStdout(), rec, format)
			}

			m, err := scorer.ScoreAll(scenarios)
			if err != nil {
				return err
			}
			rec := table.ScoreMatrix(m)
			defer rec.Release()
			return table.Write(cmd.OutOrStdout(), rec, format)
		},
	}

	cmd.Flags().String("scenario", "", "Rank areas under a single scenario")
	addFormatFlag(cmd)
	return cmd
}
