package chatshare

import (
	"strconv"
	"strings"
)

// FormatText formats messages for terminal display.
// Each message is prefixed with its role; messages are separated by blank lines.
func FormatText(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, string(m.Role)+": "+m.Text)
	}

	return strings.Join(parts, "\n\n")
}

// FormatMarkdown formats messages as a Markdown document with one
// numbered heading per message.
func FormatMarkdown(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, "## "+strconv.Itoa(m.Index)+". "+roleTitle(m.Role)+"\n\n"+m.Text)
	}

	return strings.Join(parts, "\n\n")
}

func roleTitle(r Role) string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "User"
}
