package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the canvas in the terminal",
	Long: `Draw the canvas with truecolor blocks, one block per pixel.

Set NO_COLOR to disable color output.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	colors, err := client.GetAllColors(ctx)
	if err != nil {
		if errors.Is(err, canvas.ErrNotInitialized) {
			return notInitializedError(t.instanceName)
		}
		return fmt.Errorf("failed to read colors: %w", err)
	}

	printer.RenderGrid(cmd.OutOrStdout(), colors, int(canvas.Cols))
	return nil
}
