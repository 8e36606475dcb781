package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/spf13/cobra"
)

var (
	buyColor   string
	buyPrice   uint64
	buyForSale bool
	buyMessage string
	buyAs      string
)

var buyCmd = &cobra.Command{
	Use:   "buy X Y",
	Short: "Buy a pixel",
	Long: `Buy the pixel at (X, Y) and paint it.

Each pixel can be bought exactly once. The first buyer sets its color, resale
price, for-sale flag and message; later attempts fail and change nothing.

Examples:
  canvas buy 0 0 --color "#FF0000" --price 100 --message "Hello, world!" --as alice
  canvas buy 4 1 --color 0x00FF00 --for-sale --as bob`,
	Args: cobra.ExactArgs(2),
	RunE: runBuy,
}

func init() {
	buyCmd.Flags().StringVar(&buyColor, "color", "", "Pixel color: #RRGGBB, 0xRRGGBB or decimal (required)")
	buyCmd.Flags().Uint64Var(&buyPrice, "price", 0, "Resale price")
	buyCmd.Flags().BoolVar(&buyForSale, "for-sale", false, "Mark the pixel as for sale")
	buyCmd.Flags().StringVar(&buyMessage, "message", "", "Message attached to the pixel")
	buyCmd.Flags().StringVar(&buyAs, "as", "", "Buyer identity (required)")
	_ = buyCmd.MarkFlagRequired("color")
	_ = buyCmd.MarkFlagRequired("as")
	rootCmd.AddCommand(buyCmd)
}

func runBuy(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	x, y, err := parseCoords(args)
	if err != nil {
		return printer.Error("invalid coordinates", err.Error(), nil)
	}
	color, err := parseColor(buyColor)
	if err != nil {
		return printer.Error("invalid color", err.Error(), nil)
	}

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	req := canvas.BuyRequest{
		X:       x,
		Y:       y,
		Color:   color,
		Price:   buyPrice,
		ForSale: buyForSale,
		Message: buyMessage,
	}

	err = client.Buy(ctx, buyAs, req)
	switch {
	case err == nil:
	case errors.Is(err, canvas.ErrEventNotPublished):
		printer.Warning("purchase committed but the event was not published: %v\n", err)
	case canvas.IsAlreadyExists(err):
		details := map[string]string{"Pixel": fmt.Sprintf("(%d, %d)", x, y)}
		if pixel, getErr := client.GetPixel(ctx, x, y); getErr == nil {
			details["Owner"] = pixel.Owner
			details["Price"] = strconv.FormatUint(pixel.Price, 10)
		}
		return printer.ErrorWithContext(
			"pixel already purchased",
			"Pixels can be bought only once.",
			details,
			[]string{"Pick an unpurchased pixel:\n  canvas render"},
		)
	case errors.Is(err, canvas.ErrNotInitialized):
		return notInitializedError(t.instanceName)
	case canvas.IsInvariantViolation(err):
		return printer.ErrorWithContext(
			"canvas corrupted",
			err.Error(),
			map[string]string{"Instance": t.instanceName},
			[]string{"The stored canvas is inconsistent; no further purchases will succeed until it is repaired"},
		)
	default:
		return fmt.Errorf("purchase failed: %w", err)
	}

	printer.Success("Bought pixel (%d, %d) for %s: %s %s\n", x, y, buyAs, printer.Swatch(color), printer.Hex(color))
	return nil
}
