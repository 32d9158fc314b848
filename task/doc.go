// Package task maps issueflow's model calls to llmkit model tiers.
//
// Planning is the reasoning-heavy call and gets the thinking tier;
// patch generation runs on the default tier; summaries can use a
// smaller model.
//
//	tier := task.TierForTask(task.Plan) // model.TierThinking
package task
