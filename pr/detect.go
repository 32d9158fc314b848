package pr

import (
	"fmt"
	"os"
)

// tokenEnv lists, per platform, the variables searched for a token.
var tokenEnv = map[string][]string{
	PlatformGitHub: {"GITHUB_TOKEN", "GIT_TOKEN"},
	PlatformGitLab: {"GITLAB_TOKEN", "GIT_TOKEN"},
}

// ProviderFromEnv builds a provider for remoteURL using a token from the
// environment: GITHUB_TOKEN or GITLAB_TOKEN, then GIT_TOKEN.
//
//	remote, _ := gitCtx.GetRemoteURL("origin")
//	provider, err := pr.ProviderFromEnv(remote)
func ProviderFromEnv(remoteURL string) (Provider, error) {
	return ProviderFromEnvWithToken(remoteURL, "")
}

// ProviderFromEnvWithToken is ProviderFromEnv with an explicit token.
// An empty token falls back to the environment.
func ProviderFromEnvWithToken(remoteURL, token string) (Provider, error) {
	platform, err := DetectProvider(remoteURL)
	if err != nil {
		return nil, err
	}

	if token == "" {
		names := tokenEnv[platform]
		for _, name := range names {
			if token = os.Getenv(name); token != "" {
				break
			}
		}
		if token == "" {
			return nil, fmt.Errorf("no %s token: set %s or %s", platform, names[0], names[1])
		}
	}

	if platform == PlatformGitLab {
		return NewGitLabProviderFromURL(token, remoteURL)
	}
	return NewGitHubProviderFromURL(token, remoteURL)
}
