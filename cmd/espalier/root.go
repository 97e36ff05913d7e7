package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	espalier "github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/redis"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a conditional intake-form flow engine",
	Long:  `Espalier manages multi-step question flows where questions can be gated on earlier answers, and compiles them into a visual editor graph.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("data", ".", "Directory containing the category YAML files")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; when set, questions are stored in Redis instead of files")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// newWorkbench builds the workbench from the persistent flags: Redis
// when --redis is set, the file adapter under --data otherwise.
func newWorkbench(cmd *cobra.Command) (*espalier.Workbench, error) {
	level, _ := cmd.Flags().GetString("log-level")
	logger := logging.New(logging.ParseLevel(level))

	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		store := redis.New(addr, "", 0)
		return espalier.New("",
			espalier.WithStore(store),
			espalier.WithLogger(logger),
		)
	}

	dir, _ := cmd.Flags().GetString("data")
	return espalier.New(dir, espalier.WithLogger(logger))
}
