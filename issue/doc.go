// Package issue retrieves the issues the pipeline works on.
//
// GitHubSource reads from the GitHub API; StaticSource serves issues from
// memory.
package issue
