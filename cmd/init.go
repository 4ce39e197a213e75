package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize shopdesk configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for corpus files, the embedding model and the generative backend, and writes a .shopdesk.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
