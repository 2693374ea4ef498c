package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nvandessel/lastmile/internal/apperr"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		jsonOut, _ := rootCmd.PersistentFlags().GetBool("json")
		if jsonOut {
			reportError(os.Stdout, err, true)
		} else {
			reportError(os.Stderr, err, false)
		}
		os.Exit(apperr.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lastmile",
		Short: "Last-mile delivery simulator - truck vs rail plus drone",
		Long: `lastmile estimates door-to-door delivery times for a conventional truck
route and a rail plus drone route from each origin station, using Monte Carlo
sampling of every leg of the trip.

It also ranks candidate launch areas under weighted decision scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.lastmile/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newCompareCmd(),
		newScoreCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// reportError writes err to w, as a {"error","kind"} object when jsonOut is set.
func reportError(w io.Writer, err error, jsonOut bool) {
	if jsonOut {
		json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
			"kind":  apperr.Kind(err),
		})
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
