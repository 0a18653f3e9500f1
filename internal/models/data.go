package models

var current = []Capability{CapVision, CapToolUse, CapReasoning, CapStructuredOutput}

func model(id, name string, tier Tier, maxOutput int, aliases ...string) Model {
	return Model{
		ID:              id,
		Name:            name,
		Aliases:         aliases,
		Tier:            tier,
		Capabilities:    current,
		ContextWindow:   200_000,
		MaxOutputTokens: maxOutput,
	}
}

var catalog = []Model{
	model("claude-opus-4-6", "Claude Opus 4.6", TierOpus, 128_000, "opus"),
	model("claude-sonnet-4-6", "Claude Sonnet 4.6", TierSonnet, 64_000, "sonnet"),
	model("claude-haiku-4-5", "Claude Haiku 4.5", TierHaiku, 64_000, "haiku"),
	model("claude-opus-4-5", "Claude Opus 4.5", TierOpus, 64_000),
	model("claude-sonnet-4-5", "Claude Sonnet 4.5", TierSonnet, 64_000),
	model("claude-opus-4-1", "Claude Opus 4.1", TierOpus, 32_000),
	model("claude-opus-4-0", "Claude Opus 4", TierOpus, 32_000),
	model("claude-sonnet-4-0", "Claude Sonnet 4", TierSonnet, 64_000),
}
