package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadExperiment loads and parses an experiment file. Relative data and
// output paths are resolved against the file's directory.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file %s: %w", path, err)
	}
	exp, err := ParseExperimentYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse experiment file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	exp.Data.Train = resolvePath(dir, exp.Data.Train)
	exp.Data.Test = resolvePath(dir, exp.Data.Test)
	exp.OutputDirectory = resolvePath(dir, exp.OutputDirectory)
	return exp, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// validateExperiment performs validation on the experiment
func validateExperiment(exp *Experiment) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[exp.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", exp.LogLevel)
	}

	if exp.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if exp.Algorithm == "" {
		return fmt.Errorf("algorithm cannot be empty")
	}

	if len(exp.IterationList) == 0 {
		return fmt.Errorf("iteration_list must have at least one entry")
	}
	for i, it := range exp.IterationList {
		if it < 0 {
			return fmt.Errorf("iteration_list[%d]: iteration cannot be negative, got %d", i, it)
		}
	}

	for name, values := range exp.GridSearchParameters {
		if name == "" {
			return fmt.Errorf("grid_search_parameters: parameter name cannot be empty")
		}
		if len(values) == 0 {
			return fmt.Errorf("grid_search_parameters.%s: at least one candidate value is required", name)
		}
	}

	validSelections := map[string]bool{
		"best_test_score": true,
		"balanced_score":  true,
	}
	if !validSelections[exp.Selection] {
		return fmt.Errorf("invalid selection: %s (must be best_test_score or balanced_score)", exp.Selection)
	}

	if err := validateClassifier(exp.Classifier); err != nil {
		return fmt.Errorf("classifier validation failed: %w", err)
	}

	if exp.Data.Train == "" {
		return fmt.Errorf("data.train is required")
	}
	if exp.Data.Test == "" {
		return fmt.Errorf("data.test is required")
	}

	return nil
}

// validateClassifier validates the classifier hyperparameters
func validateClassifier(c Classifier) error {
	if c.ClipMaxValue() <= 0 {
		return fmt.Errorf("clip_max must be positive, got %g", c.ClipMaxValue())
	}
	if c.MaxAttemptsValue() <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttemptsValue())
	}
	return nil
}
