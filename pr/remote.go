package pr

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform names returned by DetectProvider.
const (
	PlatformGitHub = "github"
	PlatformGitLab = "gitlab"
)

// Remote is a git remote URL split into its hosting parts.
type Remote struct {
	Host  string
	Owner string // user, org or GitLab group path
	Repo  string
}

// ParseRemote splits an scp-style ("git@host:owner/repo.git") or URL-style
// remote. Nested GitLab groups keep their full path in Owner.
func ParseRemote(remoteURL string) (Remote, error) {
	var host, path string
	if at := strings.Index(remoteURL, "@"); at >= 0 && !strings.Contains(remoteURL, "://") {
		hostPath := remoteURL[at+1:]
		colon := strings.Index(hostPath, ":")
		if colon < 0 {
			return Remote{}, fmt.Errorf("invalid SSH remote %q", remoteURL)
		}
		host, path = hostPath[:colon], hostPath[colon+1:]
	} else {
		u, err := url.Parse(remoteURL)
		if err != nil || u.Host == "" {
			return Remote{}, fmt.Errorf("invalid remote URL %q", remoteURL)
		}
		host, path = u.Hostname(), u.Path
	}

	host = strings.ToLower(host)
	path = strings.Trim(strings.TrimSuffix(path, ".git"), "/")
	slash := strings.LastIndex(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return Remote{}, fmt.Errorf("remote %q has no owner/repo path", remoteURL)
	}
	owner := path[:slash]
	if host == "github.com" || strings.HasSuffix(host, ".github.com") {
		// GitHub has no nested owners; keep the last segment only.
		owner = owner[strings.LastIndex(owner, "/")+1:]
	}
	return Remote{Host: host, Owner: owner, Repo: path[slash+1:]}, nil
}

// Platform reports which hosting service the remote points at.
func (r Remote) Platform() (string, error) {
	switch {
	case strings.Contains(r.Host, "github"):
		return PlatformGitHub, nil
	case strings.Contains(r.Host, "gitlab"):
		return PlatformGitLab, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownProvider, r.Host)
}

// DetectProvider returns "github" or "gitlab" for a remote URL.
func DetectProvider(remoteURL string) (string, error) {
	r, err := ParseRemote(remoteURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownProvider, err)
	}
	return r.Platform()
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	r, err := ParseRemote(remoteURL)
	if err != nil {
		return "", "", err
	}
	return r.Owner, r.Repo, nil
}
