package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one grant case swept by the driver. GrantMonth is 0-based;
// nil means the grant (if any) never arrives.
type Scenario struct {
	Name        string  `toml:"name" json:"name" yaml:"name"`
	GrantAmount float64 `toml:"grant_amount" json:"grant_amount" yaml:"grant_amount"`
	GrantMonth  *int    `toml:"grant_month,omitempty" json:"grant_month,omitempty" yaml:"grant_month"`
}

// LoadScenariosYAML reads a YAML preset file holding a list of scenarios.
func LoadScenariosYAML(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios: %w", err)
	}
	var out []Scenario
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing scenarios: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("scenarios file %s is empty", path)
	}
	return out, nil
}

func asScenarios(val any) ([]Scenario, bool) {
	raw, ok := val.([]any)
	if !ok {
		if scens, ok := val.([]Scenario); ok {
			out := make([]Scenario, len(scens))
			copy(out, scens)
			return out, true
		}
		return nil, false
	}
	out := make([]Scenario, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		var sc Scenario
		if s, ok := m["name"].(string); ok {
			sc.Name = s
		}
		if f, ok := asFloat(m["grant_amount"]); ok {
			sc.GrantAmount = f
		}
		if n, ok := asInt(m["grant_month"]); ok {
			mo := n
			sc.GrantMonth = &mo
		}
		out = append(out, sc)
	}
	return out, true
}
