// README: Default organization pricing settings, used when an organization has no settings row.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vtcquote/internal/modules/pricing"
)

//go:embed pricing_defaults.yaml
var builtinPricingDefaults []byte

// LoadPricingDefaults parses the YAML file at path, or the built-in defaults when path is empty.
func LoadPricingDefaults(path string) (pricing.Settings, error) {
	raw := builtinPricingDefaults
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return pricing.Settings{}, fmt.Errorf("read pricing defaults: %w", err)
		}
		raw = b
	}
	var s pricing.Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return pricing.Settings{}, fmt.Errorf("parse pricing defaults: %w", err)
	}
	return s, nil
}
