package nngs

import (
	"fmt"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/algorithms"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runner"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/config"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/dataset"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

// OptionsFromExperiment loads the datasets named by exp and resolves its
// algorithm and selection strategy
func OptionsFromExperiment(exp *config.Experiment) (Options, error) {
	alg, err := algorithms.Lookup(exp.Algorithm)
	if err != nil {
		return Options{}, err
	}
	selection, ok := runner.SelectionByName(exp.Selection)
	if !ok {
		return Options{}, fmt.Errorf("%w: unknown selection %q", runner.ErrInvalidConfig, exp.Selection)
	}

	labelColumn := exp.Data.LabelColumnValue()
	train, err := dataset.LoadCSV(exp.Data.Train, labelColumn)
	if err != nil {
		return Options{}, fmt.Errorf("load training data: %w", err)
	}
	test, err := dataset.LoadCSV(exp.Data.Test, labelColumn)
	if err != nil {
		return Options{}, fmt.Errorf("load test data: %w", err)
	}

	return Options{
		Train:                train,
		Test:                 test,
		ExperimentName:       exp.Name,
		Seed:                 exp.Seed,
		IterationList:        exp.IterationList,
		Algorithm:            alg,
		GridSearchParameters: exp.GridSearchParameters,
		Bias:                 exp.Classifier.BiasEnabled(),
		EarlyStopping:        exp.Classifier.EarlyStoppingEnabled(),
		ClipMax:              exp.Classifier.ClipMaxValue(),
		MaxAttempts:          exp.Classifier.MaxAttemptsValue(),
		GenerateCurves:       exp.CurvesEnabled(),
		OutputDirectory:      exp.OutputDirectory,
		ExtraArgs:            params.FromMap(exp.ExtraArgs),
		Selection:            selection,
	}, nil
}
