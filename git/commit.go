package git

import (
	"strings"
)

// CommitType is the conventional-commit type of a generated change.
type CommitType string

const (
	CommitTypeFeat     CommitType = "feat"
	CommitTypeFix      CommitType = "fix"
	CommitTypeDocs     CommitType = "docs"
	CommitTypeRefactor CommitType = "refactor"
	CommitTypeTest     CommitType = "test"
	CommitTypeChore    CommitType = "chore"
)

// Line widths for generated commit messages.
const (
	maxSubjectLength = 72
	bodyWidth        = 72
)

// CommitMessage builds the commit recorded for an issue's diff.
type CommitMessage struct {
	Type        CommitType
	Scope       string
	Subject     string
	Body        string
	IssueRefs   []string // "#42" or "owner/repo#42"
	GeneratedBy string   // Generated-By footer; empty omits it
}

// NewCommitMessage creates a commit message with the issueflow marker.
func NewCommitMessage(typ CommitType, subject string) *CommitMessage {
	return &CommitMessage{
		Type:        typ,
		Subject:     strings.TrimSpace(subject),
		GeneratedBy: "issueflow",
	}
}

// CommitTypeForIssue picks a commit type from issue labels, then from the
// title. Anything unrecognised is a feature.
func CommitTypeForIssue(title string, labels []string) CommitType {
	for _, label := range labels {
		switch strings.ToLower(label) {
		case "bug", "bugfix", "fix":
			return CommitTypeFix
		case "documentation", "docs":
			return CommitTypeDocs
		case "refactor":
			return CommitTypeRefactor
		case "test", "tests":
			return CommitTypeTest
		case "chore", "dependencies":
			return CommitTypeChore
		}
	}
	lower := strings.ToLower(title)
	if strings.HasPrefix(lower, "fix") || strings.Contains(lower, "bug") {
		return CommitTypeFix
	}
	return CommitTypeFeat
}

// WithScope sets the scope shown in parentheses after the type.
func (c *CommitMessage) WithScope(scope string) *CommitMessage {
	c.Scope = scope
	return c
}

// WithBody sets the body. Long lines are wrapped when formatted.
func (c *CommitMessage) WithBody(body string) *CommitMessage {
	c.Body = body
	return c
}

// WithIssueRef adds a "Refs:" footer.
func (c *CommitMessage) WithIssueRef(ref string) *CommitMessage {
	c.IssueRefs = append(c.IssueRefs, ref)
	return c
}

// String formats the message as "type(scope): subject", an optional
// wrapped body and the footers.
func (c *CommitMessage) String() string {
	var b strings.Builder

	b.WriteString(string(c.Type))
	if c.Scope != "" {
		b.WriteString("(" + c.Scope + ")")
	}
	b.WriteString(": ")
	b.WriteString(truncate(c.Subject, maxSubjectLength-b.Len()))

	if c.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(wrapText(c.Body, bodyWidth))
	}

	var footer []string
	for _, ref := range c.IssueRefs {
		footer = append(footer, "Refs: "+ref)
	}
	if c.GeneratedBy != "" {
		footer = append(footer, "Generated-By: "+c.GeneratedBy)
	}
	if len(footer) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(footer, "\n"))
	}

	return b.String()
}

// truncate shortens s to at most n bytes, ending in "..." when cut.
func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n-3], " ") + "..."
}

// wrapText wraps each line of text at width, keeping existing newlines.
func wrapText(text string, width int) string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			out = append(out, paragraph)
			continue
		}
		var line string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case line == "":
				line = word
			case len(line)+1+len(word) > width:
				out = append(out, line)
				line = word
			default:
				line += " " + word
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
