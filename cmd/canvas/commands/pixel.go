package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/internal/watch"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var pixelWait time.Duration

var pixelCmd = &cobra.Command{
	Use:   "pixel X Y",
	Short: "Show a purchased pixel",
	Long: `Show the color and ownership record of the pixel at (X, Y) as JSON.

With --wait, block until the pixel is bought or the duration elapses.`,
	Args: cobra.ExactArgs(2),
	RunE: runPixel,
}

func init() {
	pixelCmd.Flags().DurationVar(&pixelWait, "wait", 0, "Wait up to this long for the pixel to be bought")
	rootCmd.AddCommand(pixelCmd)
}

func runPixel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	x, y, err := parseCoords(args)
	if err != nil {
		return printer.Error("invalid coordinates", err.Error(), nil)
	}

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if pixelWait > 0 {
		if _, err := watch.PollForPixel(ctx, client, x, y, pixelWait); err != nil {
			return fmt.Errorf("pixel (%d, %d): %w", x, y, err)
		}
	}

	resp, err := canvas.QueryPixel(ctx, client, x, y)
	if err != nil {
		switch {
		case canvas.IsNotFound(err):
			return printer.Error(
				"pixel not purchased",
				fmt.Sprintf("Pixel (%d, %d) has no owner yet.", x, y),
				[]string{fmt.Sprintf("Buy it:\n  canvas buy %d %d --color \"#FF0000\" --as <identity>", x, y)},
			)
		case errors.Is(err, canvas.ErrNotInitialized):
			return notInitializedError(t.instanceName)
		default:
			return fmt.Errorf("failed to query pixel: %w", err)
		}
	}

	return writeJSON(cmd.OutOrStdout(), resp)
}
