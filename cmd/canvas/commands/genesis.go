package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var genesisOwner string

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Initialize the canvas on an instance",
	Long: `Create the canvas: every pixel white, no owners.

The owner recorded at genesis is informational only; it grants no rights over
pixels. Genesis runs once per instance and refuses to overwrite an existing
canvas. 'canvas up' runs it automatically.`,
	Args: cobra.NoArgs,
	RunE: runGenesis,
}

func init() {
	genesisCmd.Flags().StringVar(&genesisOwner, "owner", "", "Identity recorded as canvas owner (default from canvas.yml)")
	rootCmd.AddCommand(genesisCmd)
}

func runGenesis(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	owner := genesisOwner
	if owner == "" {
		owner = t.cfg.Canvas.Owner
	}

	if err := client.Genesis(ctx, owner); err != nil {
		if errors.Is(err, canvas.ErrAlreadyInitialized) {
			return printer.Error(
				"canvas already initialized",
				fmt.Sprintf("Instance '%s' already has a canvas. Genesis never overwrites it.", t.instanceName),
				[]string{fmt.Sprintf("Inspect it:\n  canvas info --name %s", t.instanceName)},
			)
		}
		return fmt.Errorf("genesis failed: %w", err)
	}

	printer.Success("Canvas initialized on instance '%s' (owner: %s)\n", t.instanceName, owner)
	return nil
}
