package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ClaudeCodeSettings are the provider-specific keys read from
// ProviderConfig.Metadata.
type ClaudeCodeSettings struct {
	CliPath      string            `mapstructure:"cli_path"`
	DefaultModel string            `mapstructure:"default_model"`
	Mock         bool              `mapstructure:"mock"`
	Env          map[string]string `mapstructure:"env"`
	KillGrace    time.Duration     `mapstructure:"kill_grace"`
	JSONOutput   bool              `mapstructure:"json_output"`
}

// DecodeClaudeCodeSettings decodes metadata into settings. Unknown keys are
// ignored so that metadata can carry data for other consumers. Durations
// accept Go duration strings ("5s").
func DecodeClaudeCodeSettings(metadata map[string]any) (ClaudeCodeSettings, error) {
	var s ClaudeCodeSettings

	if len(metadata) == 0 {
		return s, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, fmt.Errorf("build settings decoder: %w", err)
	}

	if err := dec.Decode(metadata); err != nil {
		return s, fmt.Errorf("decode claude-code settings: %w", err)
	}

	return s, nil
}
