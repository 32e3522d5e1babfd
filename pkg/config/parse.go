package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseExperimentYAML parses an Experiment from YAML bytes, applies
// defaults and validates it.
func ParseExperimentYAML(data []byte) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse experiment yaml: %w", err)
	}

	exp.applyDefaults()
	if err := validateExperiment(&exp); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}

	return &exp, nil
}

// ParseExperimentYAMLString parses an Experiment from a YAML string
func ParseExperimentYAMLString(yamlText string) (*Experiment, error) {
	return ParseExperimentYAML([]byte(yamlText))
}

// MarshalExperimentYAML renders an Experiment back to YAML
func MarshalExperimentYAML(exp *Experiment) (string, error) {
	out, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal experiment: %w", err)
	}
	return string(out), nil
}
