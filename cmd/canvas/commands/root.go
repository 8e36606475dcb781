package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// Persistent flags shared by every command that talks to a canvas
var (
	configPath   string
	instanceName string
	redisURL     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Canvas - a shared 5x5 pixel ledger",
	Long: `Canvas is a shared 5x5 grid of pixels. Each pixel can be bought exactly
once; the buyer sets its color, a resale price, a for-sale flag and a message.

State lives in Redis. 'canvas up' starts a Redis-backed instance in Docker and
runs genesis; the other commands buy and query pixels on that instance.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Unknown flags on the root command are an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	defaultConfig := os.Getenv("CANVAS_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "canvas.yml"
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Path to canvas.yml (optional)")
	rootCmd.PersistentFlags().StringVarP(&instanceName, "name", "n", "", "Target instance name (auto-inferred if omitted)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis URL (overrides config and Docker discovery)")
}
