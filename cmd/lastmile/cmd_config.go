package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/lastmile/internal/scoring"
	"github.com/nvandessel/lastmile/internal/simulation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect lastmile configuration",
		Long: `View and check the effective configuration.

Configuration is read from ~/.lastmile/config.yaml (or --config), after
loading a .env file from the working directory, and is then overridden by
LASTMILE_TRIALS, LASTMILE_SEED, LASTMILE_WORKERS, LASTMILE_LOG_LEVEL and
LASTMILE_LOG_DIR.

Examples:
  lastmile config show                  # Print effective settings as YAML
  lastmile config show > config.yaml    # Start a config file from defaults
  lastmile config validate --config experiment.yaml`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigValidateCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check models, origins and scoring inputs without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			sim, err := cfg.ToEngineConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			engine, err := simulation.NewEngine(sim)
			if err != nil {
				return err
			}
			areas := cfg.Scoring.Areas
			if len(areas) == 0 {
				areas = scoring.DefaultAreas()
			}
			scorer, err := scoring.NewScorer(areas)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			checked := engine.Config()
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"valid":   true,
					"origins": len(checked.Origins),
					"trials":  checked.Trials,
					"areas":   len(scorer.Areas()),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%d origins, %d trials, %d areas)\n",
					len(checked.Origins), checked.Trials, len(scorer.Areas()))
			}
			return nil
		},
	}
}
