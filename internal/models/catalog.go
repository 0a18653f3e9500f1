// Package models is the catalog of Claude models the claude CLI accepts,
// keyed by canonical id and by the short aliases the CLI understands.
package models

import (
	"slices"
	"strings"
)

// DefaultAlias is the model used when a request names none.
const DefaultAlias = "sonnet"

// Capability represents a model capability such as vision or tool use.
type Capability string

const (
	CapVision           Capability = "vision"
	CapToolUse          Capability = "tool-use"
	CapReasoning        Capability = "reasoning"
	CapStructuredOutput Capability = "structured-output"
)

// Tier is a relative cost and capability class.
type Tier string

const (
	TierOpus   Tier = "opus"
	TierSonnet Tier = "sonnet"
	TierHaiku  Tier = "haiku"
)

// Model holds metadata for a single Claude model.
type Model struct {
	// ID is the canonical model identifier (e.g. "claude-opus-4-6").
	ID   string
	Name string
	// Aliases are shorthand names accepted by --model. Only the newest model
	// of a tier carries the tier alias.
	Aliases         []string
	Tier            Tier
	Capabilities    []Capability
	ContextWindow   int
	MaxOutputTokens int
}

// HasCapability reports whether the model supports the given capability.
func (m Model) HasCapability(capability Capability) bool {
	return slices.Contains(m.Capabilities, capability)
}

// All returns a copy of every known model, newest first within each tier.
func All() []Model {
	return slices.Clone(catalog)
}

// ByID looks a model up by exact id, then alias, then id prefix (dated
// variants such as "claude-opus-4-6-20260205"). It returns false when the id
// is unknown.
func ByID(id string) (Model, bool) {
	if id == "" {
		return Model{}, false
	}

	if i := slices.IndexFunc(catalog, func(m Model) bool { return m.ID == id }); i >= 0 {
		return catalog[i], true
	}

	if i := slices.IndexFunc(catalog, func(m Model) bool { return slices.Contains(m.Aliases, id) }); i >= 0 {
		return catalog[i], true
	}

	if i := slices.IndexFunc(catalog, func(m Model) bool { return strings.HasPrefix(id, m.ID) }); i >= 0 {
		return catalog[i], true
	}

	return Model{}, false
}

// Resolve returns the canonical id for id. Unknown ids are returned
// unchanged so that the CLI stays the authority on what it accepts.
func Resolve(id string) string {
	if m, ok := ByID(id); ok {
		return m.ID
	}

	return id
}

// IDs returns the canonical id of every known model.
func IDs() []string {
	out := make([]string, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, m.ID)
	}

	return out
}

// Aliases returns every short alias in catalog order.
func Aliases() []string {
	var out []string
	for _, m := range catalog {
		out = append(out, m.Aliases...)
	}

	return out
}

// ByTier returns all models of the given tier.
func ByTier(tier Tier) []Model {
	var out []Model

	for _, m := range catalog {
		if m.Tier == tier {
			out = append(out, m)
		}
	}

	return out
}

// Supports reports whether any known model has the capability.
func Supports(capability Capability) bool {
	return slices.ContainsFunc(catalog, func(m Model) bool { return m.HasCapability(capability) })
}
