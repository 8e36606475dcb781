package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var colorsOutput string

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Print every pixel color",
	Long: `Print the color of every pixel.

Output Formats:
  default - one row of hex colors per canvas row
  json    - {"colors": [...]} with packed decimal colors in slot order`,
	Args: cobra.NoArgs,
	RunE: runColors,
}

func init() {
	colorsCmd.Flags().StringVarP(&colorsOutput, "output", "o", "default", "Output format: default or json")
	rootCmd.AddCommand(colorsCmd)
}

func runColors(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if colorsOutput != "default" && colorsOutput != "json" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", colorsOutput),
			[]string{"Valid formats: default, json"},
		)
	}

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := canvas.QueryColors(ctx, client)
	if err != nil {
		if errors.Is(err, canvas.ErrNotInitialized) {
			return notInitializedError(t.instanceName)
		}
		return fmt.Errorf("failed to read colors: %w", err)
	}

	if colorsOutput == "json" {
		return writeJSON(cmd.OutOrStdout(), resp)
	}

	out := cmd.OutOrStdout()
	cols := int(canvas.Cols)
	for i := 0; i < len(resp.Colors); i += cols {
		row := make([]string, 0, cols)
		for _, c := range resp.Colors[i:min(i+cols, len(resp.Colors))] {
			row = append(row, printer.Hex(c))
		}
		fmt.Fprintln(out, strings.Join(row, " "))
	}
	return nil
}
