package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	dockerpkg "github.com/dyluth/canvas/internal/docker"
	"github.com/dyluth/canvas/internal/instance"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all canvas instances",
	Long: `List all canvas instances by querying Docker for containers with the canvas.project label.

For each instance, displays:
  • Instance name
  • Status (Running/Degraded/Stopped)
  • Genesis owner
  • Redis port
  • Uptime (for running instances)

Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	infos, err := instance.ListInstances(ctx, cli, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No canvas instances found.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'canvas up' to start a new instance.")
		return nil
	}

	outputTable(out, infos)
	return nil
}

func outputTable(w io.Writer, infos []instance.InstanceInfo) {
	fmt.Fprintf(w, "%-15s %-10s %-15s %-6s %s\n", "INSTANCE", "STATUS", "OWNER", "PORT", "UPTIME")

	for _, info := range infos {
		owner := info.Owner
		if len(owner) > 15 {
			owner = owner[:12] + "..."
		}
		port := "-"
		if info.RedisPort != 0 {
			port = fmt.Sprintf("%d", info.RedisPort)
		}
		fmt.Fprintf(w, "%-15s %-10s %-15s %-6s %s\n", info.Name, info.Status, owner, port, info.Uptime)
	}
}
