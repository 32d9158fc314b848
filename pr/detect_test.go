package pr

import (
	"strings"
	"testing"
)

func TestProviderFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		env     map[string]string
		wantErr string
		wantGit bool
		wantLab bool
	}{
		{
			name:    "github token",
			remote:  "https://github.com/owner/repo.git",
			env:     map[string]string{"GITHUB_TOKEN": "t", "GIT_TOKEN": ""},
			wantGit: true,
		},
		{
			name:    "github fallback token",
			remote:  "git@github.com:owner/repo.git",
			env:     map[string]string{"GITHUB_TOKEN": "", "GIT_TOKEN": "t"},
			wantGit: true,
		},
		{
			name:    "github no token",
			remote:  "https://github.com/owner/repo.git",
			env:     map[string]string{"GITHUB_TOKEN": "", "GIT_TOKEN": ""},
			wantErr: "GITHUB_TOKEN",
		},
		{
			name:    "gitlab token",
			remote:  "https://gitlab.com/owner/repo.git",
			env:     map[string]string{"GITLAB_TOKEN": "t", "GIT_TOKEN": ""},
			wantLab: true,
		},
		{
			name:    "gitlab no token",
			remote:  "https://gitlab.com/owner/repo.git",
			env:     map[string]string{"GITLAB_TOKEN": "", "GIT_TOKEN": ""},
			wantErr: "GITLAB_TOKEN",
		},
		{
			name:    "unknown host",
			remote:  "https://unknown.com/owner/repo.git",
			wantErr: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			p, err := ProviderFromEnv(tt.remote)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProviderFromEnv() error = %v", err)
			}
			if _, ok := p.(*GitHubProvider); ok != tt.wantGit {
				t.Errorf("GitHub provider = %v, want %v", ok, tt.wantGit)
			}
			if _, ok := p.(*GitLabProvider); ok != tt.wantLab {
				t.Errorf("GitLab provider = %v, want %v", ok, tt.wantLab)
			}
		})
	}
}

func TestProviderFromEnvWithToken(t *testing.T) {
	if _, err := ProviderFromEnvWithToken("https://github.com/owner/repo.git", "explicit"); err != nil {
		t.Fatalf("github: %v", err)
	}
	if _, err := ProviderFromEnvWithToken("https://gitlab.example.com/group/repo.git", "explicit"); err != nil {
		t.Fatalf("self-hosted gitlab: %v", err)
	}
	if _, err := ProviderFromEnvWithToken("https://unknown.com/owner/repo.git", "t"); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GIT_TOKEN", "")
	if _, err := ProviderFromEnvWithToken("https://github.com/owner/repo.git", ""); err == nil {
		t.Fatal("expected error with no token anywhere")
	}
}
