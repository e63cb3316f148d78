/*
PURPOSE:
  Defines the 'targets' subcommand.
  Helps debug workspace manifests and target discovery.

REQUIREMENTS:
  User-specified:
  - List the expanded benchmark targets.

  Implementation-discovered:
  - Useful validation step before a full run.

ARCHITECTURE INTEGRATION:
  - Calls: internal/workspace.Load()

ERROR HANDLING:
  - Prints error if the manifest is missing or malformed.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  bench-bot targets -w ./benchmark

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/workspace/workspace.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchbot/benchbot/internal/config"
	"github.com/benchbot/benchbot/internal/workspace"
)

var targetsWorkspace string

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the expanded benchmark targets in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if targetsWorkspace != "" {
			cfg.Workspace = targetsWorkspace
		}

		targets, err := workspace.Load(cfg.Workspace)
		if err != nil {
			return err
		}

		for _, t := range targets {
			fmt.Printf("%s (%s)\n", t.Key(), t.Toolchain)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().StringVarP(&targetsWorkspace, "workspace", "w", "", "Path to workspace directory")
}
