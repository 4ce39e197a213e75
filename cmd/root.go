package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shopdesk",
	Short: "Role-aware question answering over a product catalog and marketing notes",
	Long: `Shopdesk answers questions about a store's product catalog and its
customer segments and marketing strategies. Answers are built from
semantically retrieved text, optionally rewritten by a language model.
Customers may only see product information; employees see everything.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal; keys may already be in the environment.
		if err := godotenv.Load(); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "No .env loaded: %v\n", err)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
