package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchOutput string
	watchOwner  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pixel purchases",
	Long: `Stream pixel purchases on an instance as they happen.

Output Formats:
  default - one human-readable line per purchase
  jsonl   - one JSON event per line

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "default", "Output format: default or jsonl")
	watchCmd.Flags().StringVar(&watchOwner, "owner", "", "Only show purchases by this identity")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	formatter, err := watch.NewFormatter(watchOutput, cmd.OutOrStdout())
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, t, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.SubscribePurchaseEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Close()

	if watchOutput != watch.FormatJSONL {
		printer.Info("Watching purchases on instance '%s' (Ctrl+C to stop)\n", t.instanceName)
	}

	return watch.StreamPurchases(ctx, sub, formatter, watch.Filter{Owner: watchOwner}, cmd.ErrOrStderr())
}
