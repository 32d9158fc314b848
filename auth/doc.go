// Package auth authenticates issueflow against the GitHub API.
//
// Two credential kinds are supported: a personal access token
// (StaticTokenSource) and a GitHub App installation (NewAppTokenSource).
// The app source signs an RS256 JWT as the app, exchanges it for an
// installation token, and caches that token until it nears expiry.
//
//	ts, err := auth.NewAppTokenSource(ctx, auth.AppConfig{
//	    AppID:          12345,
//	    InstallationID: 678,
//	    PrivateKey:     pemBytes,
//	})
//	httpClient := auth.NewHTTPClient(ctx, ts, auth.DefaultClientOptions())
//	gh := github.NewClient(httpClient)
//
// NewHTTPClient wraps the authenticated transport in a retrying client.
package auth
