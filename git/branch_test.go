package git

import (
	"strings"
	"testing"
)

func TestBranchNamer_ForIssue(t *testing.T) {
	tests := []struct {
		name   string
		namer  *BranchNamer
		number int
		title  string
		want   string
	}{
		{
			name:   "basic issue",
			namer:  DefaultBranchNamer(),
			number: 42,
			title:  "Fix login crash",
			want:   "issueflow/issue-42-fix-login-crash",
		},
		{
			name:   "no title",
			namer:  DefaultBranchNamer(),
			number: 7,
			want:   "issueflow/issue-7",
		},
		{
			name:  "no number",
			namer: DefaultBranchNamer(),
			title: "Add caching",
			want:  "issueflow/issue-add-caching",
		},
		{
			name:   "special characters",
			namer:  DefaultBranchNamer(),
			number: 3,
			title:  "Support user@host (SSH) URLs!",
			want:   "issueflow/issue-3-support-userhost-ssh-urls",
		},
		{
			name:   "long title truncated",
			namer:  &BranchNamer{Prefix: "bot", MaxTitle: 10, MaxLength: 100},
			number: 1,
			title:  "this title is definitely too long",
			want:   "bot/issue-1-this-title",
		},
		{
			name:   "no prefix",
			namer:  &BranchNamer{},
			number: 9,
			title:  "x",
			want:   "issue-9-x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.namer.ForIssue(tt.number, tt.title)
			if got != tt.want {
				t.Errorf("ForIssue(%d, %q) = %q, want %q", tt.number, tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"snake_case_name", "snake-case-name"},
		{"  --trim--  ", "trim"},
		{"a  b", "a-b"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBranch(t *testing.T) {
	tests := []struct {
		branch               string
		prefix, ident, extra string
	}{
		{"issueflow/issue-42-fix-login", "issueflow", "42", "fix-login"},
		{"refs/heads/issueflow/issue-7", "issueflow", "7", ""},
		{"feature/tk-1-thing", "feature", "tk", "1-thing"},
		{"main", "", "main", ""},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			prefix, ident, extra := ParseBranch(tt.branch)
			if prefix != tt.prefix || ident != tt.ident || extra != tt.extra {
				t.Errorf("ParseBranch(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.branch, prefix, ident, extra, tt.prefix, tt.ident, tt.extra)
			}
		})
	}
}

func TestCommitTypeForIssue(t *testing.T) {
	tests := []struct {
		title  string
		labels []string
		want   CommitType
	}{
		{"Add caching", nil, CommitTypeFeat},
		{"Fix login crash", nil, CommitTypeFix},
		{"Crash on start", []string{"bug"}, CommitTypeFix},
		{"Explain setup", []string{"documentation"}, CommitTypeDocs},
	}

	for _, tt := range tests {
		if got := CommitTypeForIssue(tt.title, tt.labels); got != tt.want {
			t.Errorf("CommitTypeForIssue(%q, %v) = %q, want %q", tt.title, tt.labels, got, tt.want)
		}
	}
}

func TestCommitMessage_String(t *testing.T) {
	msg := NewCommitMessage(CommitTypeFix, "handle empty password").
		WithScope("auth").
		WithIssueRef("#42")

	want := "fix(auth): handle empty password\n\nRefs: #42\nGenerated-By: issueflow"
	if got := msg.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCommitMessage_LongSubjectAndBody(t *testing.T) {
	subject := strings.Repeat("word ", 30)
	msg := NewCommitMessage(CommitTypeFeat, subject).
		WithBody(strings.Repeat("step ", 40))
	msg.GeneratedBy = ""

	lines := strings.Split(msg.String(), "\n")
	if len(lines[0]) > maxSubjectLength {
		t.Errorf("subject line is %d bytes, want <= %d", len(lines[0]), maxSubjectLength)
	}
	if !strings.HasSuffix(lines[0], "...") {
		t.Errorf("subject %q not marked as truncated", lines[0])
	}
	for _, line := range lines[2:] {
		if len(line) > bodyWidth {
			t.Errorf("body line %q longer than %d", line, bodyWidth)
		}
	}
}
