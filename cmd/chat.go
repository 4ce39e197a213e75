package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/shell"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question answering session",
	Long: `Asks for a role, then answers questions until you type exit or quit.
Type role to switch between customer and employee, ollama status to see
whether a language model is active, and help for the full command list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Println(a.assistant.BackendStatus())

		role, err := selectRole()
		if err != nil {
			return quietInterrupt(err)
		}
		sh := shell.New(a.assistant, role)

		ctx := context.Background()
		prompt := promptui.Prompt{Label: "❓ Ask a question"}
		for {
			line, err := prompt.Run()
			if err != nil {
				return quietInterrupt(err)
			}

			out, action := sh.Handle(ctx, line)
			switch action {
			case shell.Quit:
				fmt.Println(out)
				return nil
			case shell.SelectRole:
				role, err := selectRole()
				if err != nil {
					return quietInterrupt(err)
				}
				sh.SetRole(role)
			default:
				fmt.Printf("\n%s\n\n", out)
			}
		}
	},
}

// selectRole shows the numbered role menu.
func selectRole() (assistant.Role, error) {
	roles := assistant.Roles()
	items := make([]string, len(roles))
	for i, r := range roles {
		items[i] = fmt.Sprintf("%d. %s", i+1, r.Title())
	}

	sel := promptui.Select{
		Label: "Choose role",
		Items: items,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return "", err
	}
	return roles[idx], nil
}

// quietInterrupt treats Ctrl-C and Ctrl-D as a normal exit.
func quietInterrupt(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		fmt.Fprintln(os.Stderr, "Goodbye!")
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
