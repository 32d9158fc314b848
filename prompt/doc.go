// Package prompt loads and renders the prompt templates used to talk to
// the model.
//
// Templates are plain text/template files. The defaults are embedded in
// the binary; a project can override any of them by placing a file with
// the same name under .issueflow/prompts/.
//
//	loader := prompt.NewLoader(repoRoot)
//	system, err := loader.Load(prompt.PlanSystem)
//	user, err := loader.LoadWithVars(prompt.PlanUser, map[string]any{
//	    "Number": 42,
//	    "Title":  "Fix login crash",
//	    "Body":   "Steps to reproduce...",
//	})
//
// Builder assembles ad hoc prompts, including file blocks in the
// <file path="..."> form the model is instructed to read.
package prompt
