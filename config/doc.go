// Package config resolves issueflow configuration from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. Environment: ISSUEFLOW_<KEY>, plus aliases such as ANTHROPIC_API_KEY
//  3. Local config: .issueflow.yaml in the git root
//  4. Global config: ~/.config/issueflow/config.yaml
//  5. Built-in defaults
//
// Secrets (API keys, tokens, webhook URLs) are rejected in the local
// file because it is usually committed.
//
//	resolver := config.NewResolver(config.DefaultResolverConfig())
//	settings, err := config.LoadSettings(resolver.ResolveWithFlags(flags))
//	if err == nil {
//	    err = settings.Validate()
//	}
//
// SaveConfig writes single keys back for "issueflow config set".
package config
