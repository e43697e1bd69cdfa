package fleet

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// RenderStatus formats the running instances as a table. Styling is
// dropped when stdout is not a terminal.
func RenderStatus(instances []Instance) string {
	colored := isatty.IsTerminal(os.Stdout.Fd())

	style := func(s lipgloss.Style, text string) string {
		if !colored {
			return text
		}
		return s.Render(text)
	}

	if len(instances) == 0 {
		return style(dimStyle, "No instances running") + "\n"
	}

	var b strings.Builder
	b.WriteString(style(headerStyle,
		fmt.Sprintf("%-10s %-8s %-8s %-8s %-8s %-12s %-14s", "NAME", "WEB", "SMTP", "IMAP", "SUBMIT", "DOMAIN", "STATE")))
	b.WriteString("\n")

	for _, instance := range instances {
		line := fmt.Sprintf("%-10s %-8d %-8d %-8d %-8d %-12s %-14s",
			instance.ContainerName,
			instance.WebPort,
			instance.SMTPPort,
			instance.IMAPPort,
			instance.SubmissionPort,
			instance.Domain,
			instance.State,
		)
		if instance.State == "running" {
			line = style(upStyle, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(style(dimStyle, fmt.Sprintf("%d instance(s) running", len(instances))))
	b.WriteString("\n")
	return b.String()
}
