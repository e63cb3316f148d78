/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full benchmark suite.

REQUIREMENTS:
  User-specified:
  - Run the benchmarks.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  bench-bot run -w ./benchmark -o ./results

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/benchbot/benchbot/internal/config"
	"github.com/benchbot/benchbot/internal/engine"
	"github.com/benchbot/benchbot/internal/output"
)

var (
	workspaceOverride   string
	outputOverride      string
	connectionsOverride int
	durationOverride    int
	urlOverride         string
	cooldownOverride    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite",
	Long: `Builds every target listed in the workspace manifest, then benchmarks
each successfully built target in turn:
1. Launch the server and wait a fixed warm-up window.
2. Drive it with the load generator while sampling peak memory.
3. Parse the throughput/latency figures and terminate the server.

A target whose build or run fails is logged and skipped; the remaining
targets still complete. One markdown document is written per benchmark
category, plus results.csv and results.jsonl for machines.`,
	Example: `  # Run with defaults (uses bench_bot.yaml)
  bench-bot run

  # Point at a workspace and collect results elsewhere
  bench-bot run -w ./benchmark -o ./results

  # Shorter, lighter runs while iterating
  bench-bot run -c 100 -d 10 --cd 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if workspaceOverride != "" {
			cfg.Workspace = workspaceOverride
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		if cmd.Flags().Changed("connections") {
			cfg.Connections = connectionsOverride
		}
		if cmd.Flags().Changed("duration") {
			cfg.Duration = durationOverride
		}
		if urlOverride != "" {
			cfg.URL = urlOverride
		}
		if cmd.Flags().Changed("cd") {
			cfg.Cooldown = time.Duration(cooldownOverride) * time.Second
		}

		// 3. Execution
		output.Logger.Info("Bench Bot started.")
		return engine.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&workspaceOverride, "workspace", "w", "", "Path to workspace directory")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for reports")
	runCmd.Flags().IntVarP(&connectionsOverride, "connections", "c", 500, "Connection count of each benchmark")
	runCmd.Flags().IntVarP(&durationOverride, "duration", "d", 30, "Duration of each benchmark in seconds")
	runCmd.Flags().StringVarP(&urlOverride, "url", "u", "", "Url for each benchmark")
	runCmd.Flags().IntVar(&cooldownOverride, "cd", 5, "Cooldown between benchmarks in seconds")
}
