package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthType names a credential scheme.
type AuthType string

const (
	// AuthNone delegates authentication to the CLI's own login state.
	AuthNone AuthType = "none"
	// AuthBearer carries a bearer token.
	AuthBearer AuthType = "bearer"
	// AuthAPIKey carries an API key.
	AuthAPIKey AuthType = "api_key"
)

// Credentials are passed to a provider's Authenticate.
type Credentials struct {
	Type   AuthType `yaml:"type" json:"type" mapstructure:"type"`
	Token  string   `yaml:"token,omitempty" json:"token,omitempty" mapstructure:"token"`
	APIKey string   `yaml:"api_key,omitempty" json:"apiKey,omitempty" mapstructure:"api_key"`
}

// Validate checks that the credential fields required by Type are present.
func (c *Credentials) Validate() error {
	switch c.Type {
	case AuthNone:
		return nil
	case AuthBearer:
		if strings.TrimSpace(c.Token) == "" {
			return errors.New("bearer credentials require a token")
		}

		return nil
	case AuthAPIKey:
		if strings.TrimSpace(c.APIKey) == "" {
			return errors.New("api_key credentials require an api key")
		}

		return nil
	default:
		return fmt.Errorf("unsupported credential type %q", c.Type)
	}
}

// Masked returns a copy safe to log, with secrets shortened by MaskToken.
func (c Credentials) Masked() Credentials {
	c.Token = MaskToken(c.Token)
	c.APIKey = MaskToken(c.APIKey)

	return c
}

// MaskToken keeps the first and last four characters of a secret and
// replaces the rest with asterisks. Secrets of eight characters or fewer are
// fully masked.
func MaskToken(token string) string {
	r := []rune(token)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}

	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}

// ProviderConfig describes one provider instance.
type ProviderConfig struct {
	ID      string
	Name    string
	Auth    *Credentials
	Timeout time.Duration
	// Metadata holds provider-specific settings, decoded by the provider.
	Metadata map[string]any
}

// Credentials returns cfg.Auth, or AuthNone credentials when unset.
func (cfg *ProviderConfig) Credentials() Credentials {
	if cfg.Auth == nil {
		return Credentials{Type: AuthNone}
	}

	return *cfg.Auth
}
