package commands

import (
	"fmt"

	"github.com/dyluth/canvas/internal/scaffold"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default canvas.yml",
	Long: `Write a default canvas.yml to the --config path.

The generated file names the genesis owner, the Redis instance namespace and
the canvasd server settings. Redis is left unset so commands resolve it from
the instance started by 'canvas up'.

Use --force to overwrite an existing file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing canvas.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := scaffold.Initialize(configPath, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(cmd.OutOrStdout(), configPath)
	return nil
}
