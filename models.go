package claudify

import "github.com/wagiedev/claudify/internal/models"

// Re-export model types from internal/models.

// Model holds metadata for a single Claude model.
type Model = models.Model

// ModelCapability represents a model capability such as vision or tool use.
type ModelCapability = models.Capability

// ModelTier is a relative cost and capability class.
type ModelTier = models.Tier

// Model capability constants.
const (
	// ModelCapVision indicates the model supports image/vision inputs.
	ModelCapVision = models.CapVision
	// ModelCapToolUse indicates the model supports tool/function calling.
	ModelCapToolUse = models.CapToolUse
	// ModelCapReasoning indicates the model supports extended reasoning.
	ModelCapReasoning = models.CapReasoning
	// ModelCapStructuredOutput indicates the model supports structured JSON output.
	ModelCapStructuredOutput = models.CapStructuredOutput
)

// Model tier constants.
const (
	ModelTierOpus   = models.TierOpus
	ModelTierSonnet = models.TierSonnet
	ModelTierHaiku  = models.TierHaiku
)

// DefaultModel is the alias used when a request names no model.
const DefaultModel = models.DefaultAlias

// Models returns a copy of all known Claude models.
func Models() []Model {
	return models.All()
}

// ModelByID looks up a model by ID, alias, or dated prefix.
func ModelByID(id string) (Model, bool) {
	return models.ByID(id)
}

// ModelsByTier returns all models of the given tier.
func ModelsByTier(tier ModelTier) []Model {
	return models.ByTier(tier)
}

// ResolveModel returns the canonical id for an alias or dated id. Unknown ids
// are returned unchanged.
func ResolveModel(id string) string {
	return models.Resolve(id)
}
