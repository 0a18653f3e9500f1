// Package config provides configuration types for claude CLI invocations and
// provider instances, and loads provider definitions from YAML or JSON files.
package config
