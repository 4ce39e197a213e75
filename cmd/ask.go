package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
)

var askRole string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and exit",
	Long:  `Classifies the question, checks it against the role's access and prints the composed answer.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := assistant.ParseRole(askRole)
		if err != nil {
			return err
		}

		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("empty question")
		}

		fmt.Printf("✅ Answer:\n%s\n", a.assistant.Answer(context.Background(), query, role))
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askRole, "role", string(assistant.Customer), "who is asking: customer or employee")
	rootCmd.AddCommand(askCmd)
}
