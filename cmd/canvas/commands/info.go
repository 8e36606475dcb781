package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the canvas genesis record",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.Info(ctx)
	if err != nil {
		if errors.Is(err, canvas.ErrNotInitialized) {
			return notInitializedError(t.instanceName)
		}
		return fmt.Errorf("failed to read canvas info: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), info)
}
