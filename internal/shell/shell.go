// Package shell interprets one line of interactive input: a special command
// or a question for the assistant.
package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/llm"
)

// Action tells the caller what to do after a line was handled.
type Action int

const (
	// Continue means print the output and read the next line.
	Continue Action = iota
	// Quit ends the session.
	Quit
	// SelectRole asks the caller to prompt for a new role.
	SelectRole
)

var (
	answerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpText = `Commands:
  role                              choose customer or employee
  ollama status | backend status    show whether a generative backend is active
  backend enable <provider> [model] enable ollama, openai, groq or openrouter
  backend disable                   answer from retrieved text only
  exit | quit                       leave`

// Shell dispatches input lines for one interactive user.
type Shell struct {
	assistant *assistant.Assistant
	role      assistant.Role
}

// New creates a shell acting with the given role.
func New(a *assistant.Assistant, role assistant.Role) *Shell {
	return &Shell{assistant: a, role: role}
}

// Role returns the current role.
func (s *Shell) Role() assistant.Role { return s.role }

// SetRole changes the role used for subsequent questions.
func (s *Shell) SetRole(r assistant.Role) { s.role = r }

// Handle processes one line and returns the text to print.
func (s *Shell) Handle(ctx context.Context, line string) (string, Action) {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)
	fields := strings.Fields(line)

	switch {
	case line == "":
		return warnStyle.Render("⚠️ Enter a valid question."), Continue
	case lower == "exit" || lower == "quit":
		return dimStyle.Render("Goodbye!"), Quit
	case lower == "role":
		return "", SelectRole
	case lower == "help":
		return helpText, Continue
	case lower == "ollama status" || lower == "backend status":
		return s.assistant.BackendStatus(), Continue
	case lower == "backend disable":
		s.assistant.DisableBackend()
		return "✓ LLM disabled", Continue
	case len(fields) >= 2 && strings.EqualFold(fields[0], "backend") && strings.EqualFold(fields[1], "enable"):
		return s.enable(fields[2:]), Continue
	}

	answer := s.assistant.Answer(ctx, line, s.role)
	return answerStyle.Render("✅ Answer:") + "\n" + answer, Continue
}

func (s *Shell) enable(args []string) string {
	if len(args) == 0 {
		return warnStyle.Render("usage: backend enable <provider> [model]")
	}
	var opts llm.Options
	if len(args) > 1 {
		opts.Model = args[1]
	}
	if err := s.assistant.EnableBackend(args[0], opts); err != nil {
		return errorStyle.Render(fmt.Sprintf("✗ Failed to initialize %s provider: %v", args[0], err))
	}
	return "✓ LLM Provider enabled: " + s.assistant.BackendName()
}
