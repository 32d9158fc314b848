// Package llm generates plans and diffs with a language model.
//
// Client wraps any langchaingo llms.Model. NewAnthropic builds one for
// the Anthropic API:
//
//	client, err := llm.NewAnthropic(apiKey,
//	    llm.WithTierModel(model.TierFast, "claude-3-haiku-20240307"),
//	)
//	p, err := client.GeneratePlan(ctx, plan.Request{Number: "42", Title: "..."})
//	diff, err := client.GenerateDiff(ctx, patch.Request{Plan: p, Files: files})
//
// The model id for each call is chosen from the task tier (see package
// task). Prompts come from package prompt and can be overridden per
// project.
package llm
