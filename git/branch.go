package git

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphen = regexp.MustCompile(`-+`)
)

// BranchNamer generates branch names for issue work.
type BranchNamer struct {
	Prefix    string // Branch namespace (e.g., "issueflow")
	MaxTitle  int    // Maximum length of the title slug
	MaxLength int    // Maximum branch name length
}

// DefaultBranchNamer returns a namer with default settings.
func DefaultBranchNamer() *BranchNamer {
	return &BranchNamer{
		Prefix:    "issueflow",
		MaxTitle:  40,
		MaxLength: 100,
	}
}

// ForIssue generates a branch name from an issue number and title.
// Example: 42, "Fix login crash" -> "issueflow/issue-42-fix-login-crash"
func (n *BranchNamer) ForIssue(number int, title string) string {
	name := "issue"
	if number > 0 {
		name += "-" + strconv.Itoa(number)
	}

	if slug := Slugify(title); slug != "" {
		if n.MaxTitle > 0 && len(slug) > n.MaxTitle {
			slug = strings.TrimRight(slug[:n.MaxTitle], "-")
		}
		name += "-" + slug
	}

	branch := name
	if n.Prefix != "" {
		branch = n.Prefix + "/" + name
	}
	if n.MaxLength > 0 && len(branch) > n.MaxLength {
		branch = branch[:n.MaxLength]
	}

	return CleanBranch(branch)
}

// Slugify converts a string to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = repeatedHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CleanBranch ensures a branch name is valid.
func CleanBranch(s string) string {
	s = repeatedHyphen.ReplaceAllString(s, "-")

	// Trailing hyphens are trimmed per path segment
	parts := strings.Split(s, "/")
	for i, part := range parts {
		parts[i] = strings.TrimRight(part, "-")
	}
	return strings.Join(parts, "/")
}

// ParseBranch extracts components from a branch name.
// Returns (prefix, identifier, extra) where extra is any additional suffix.
func ParseBranch(branch string) (prefix, identifier, extra string) {
	branch = strings.TrimPrefix(branch, "refs/heads/")

	parts := strings.SplitN(branch, "/", 2)
	if len(parts) == 1 {
		return "", branch, ""
	}

	prefix = parts[0]
	idParts := strings.SplitN(parts[1], "-", 3)
	switch {
	case len(idParts) >= 2 && idParts[0] == "issue":
		identifier = idParts[1]
		if len(idParts) == 3 {
			extra = idParts[2]
		}
	default:
		rest := strings.SplitN(parts[1], "-", 2)
		identifier = rest[0]
		if len(rest) > 1 {
			extra = rest[1]
		}
	}

	return prefix, identifier, extra
}
