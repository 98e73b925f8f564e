package llm

// Task types that need the heavy reasoning tier.
var heavyTasks = map[string]bool{
	"immune_agent":            true,
	"briefing":                true,
	"onboarding":              true,
	"task_scheduling":         true,
	"conflict_analysis":       true,
	"contradiction_detection": true,
	"executive_summary":       true,
	"complex_ask":             true,
	"decision_chain_analysis": true,
	"relationship_extraction": true,
	"info_routing":            true,
	"worker_analysis":         true,
}

// Task types the fast tier handles well.
var fastTasks = map[string]bool{
	"classify":          true,
	"extract_entities":  true,
	"route_info":        true,
	"simple_ask":        true,
	"infodrop_classify": true,
	"summarize_short":   true,
	"dedup_check":       true,
}

// routeModel picks the model for a task type. Unknown task types get the
// heavy tier so a new caller never silently downgrades quality.
func routeModel(taskType, fastModel, heavyModel string) string {
	if fastTasks[taskType] {
		return fastModel
	}
	return heavyModel
}
