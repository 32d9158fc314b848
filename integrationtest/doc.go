// Package integrationtest runs the issueflow pipeline against a real git
// repository, a langchaingo model double and a fake GitHub API served by
// httptest. It has no exported API.
package integrationtest
