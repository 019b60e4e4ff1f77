package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ExportMarkdown renders a transcript as Markdown.
func ExportMarkdown(p Persona, msgs []Message, exportedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversation with %s\n\n", personaLabel(p))
	fmt.Fprintf(&b, "_Exported %s, %d %s._\n", exportedAt.UTC().Format(time.RFC3339), len(msgs), plural(len(msgs), "message", "messages"))

	if len(msgs) == 0 {
		b.WriteString("\nNo messages.\n")
		return b.String()
	}

	for _, m := range msgs {
		b.WriteString("\n## ")
		b.WriteString(m.Role.Label())
		if !m.Timestamp.IsZero() {
			b.WriteString(", ")
			b.WriteString(m.Timestamp.UTC().Format(time.RFC3339))
		}
		if m.Pending {
			b.WriteString(" (pending)")
		}
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(m.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// DefaultExportPath names an export file in the working directory.
func DefaultExportPath(p Persona, now time.Time) string {
	return fmt.Sprintf("twinchat-%s-%s.md", slug(personaLabel(p)), now.Format("20060102-150405"))
}

// WriteExport writes the Markdown transcript to path and returns the path.
// An empty path uses DefaultExportPath.
func WriteExport(path string, p Persona, msgs []Message, now time.Time) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultExportPath(p, now)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(ExportMarkdown(p, msgs, now)), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func personaLabel(p Persona) string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.ID
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "chat"
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
