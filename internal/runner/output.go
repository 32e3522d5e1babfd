package runner

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

const (
	runStatsSuffix    = "run_stats_df.csv"
	curvesSuffix      = "curves_df.csv"
	gridResultsSuffix = "grid_results.yaml"
)

// OutputPath returns <dir>/<experiment>/<runner>__<experiment>__<suffix>
func OutputPath(dir, runner, experiment, suffix string) string {
	return filepath.Join(dir, experiment, fmt.Sprintf("%s__%s__%s", runner, experiment, suffix))
}

type gridResultsFile struct {
	Runner     string       `yaml:"runner"`
	Experiment string       `yaml:"experiment"`
	Selection  string       `yaml:"selection"`
	BestTrial  int          `yaml:"best_trial"`
	DurationMs int64        `yaml:"duration_ms"`
	Trials     []trialEntry `yaml:"trials"`
}

type trialEntry struct {
	Index             int           `yaml:"index"`
	RunID             string        `yaml:"run_id"`
	Params            []params.Pair `yaml:"params"`
	TrainScore        float64       `yaml:"train_score"`
	TestScore         float64       `yaml:"test_score"`
	BestFitness       float64       `yaml:"best_fitness"`
	Iterations        int           `yaml:"iterations"`
	StopReason        string        `yaml:"stop_reason"`
	Converged         bool          `yaml:"converged"`
	ConvergenceReason string        `yaml:"convergence_reason,omitempty"`
}

func writeOutputs(dir string, g *GridResult, curves bool) error {
	if err := os.MkdirAll(filepath.Join(dir, g.Experiment), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	columns := paramColumns(g.Trials)
	statsPath := OutputPath(dir, g.Runner, g.Experiment, runStatsSuffix)
	if err := writeSamplesCSV(statsPath, g.Trials, columns, func(r *Result) []runstore.Sample { return r.Checkpoints }); err != nil {
		return err
	}
	if curves {
		curvesPath := OutputPath(dir, g.Runner, g.Experiment, curvesSuffix)
		if err := writeSamplesCSV(curvesPath, g.Trials, columns, func(r *Result) []runstore.Sample { return r.Curve }); err != nil {
			return err
		}
	}
	return writeGridResults(OutputPath(dir, g.Runner, g.Experiment, gridResultsSuffix), g)
}

// paramColumns is the union of user_info keys in first-seen order
func paramColumns(trials []Trial) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, t := range trials {
		if t.Result == nil {
			continue
		}
		for _, p := range t.Result.UserInfo {
			if !seen[p.Key] {
				seen[p.Key] = true
				cols = append(cols, p.Key)
			}
		}
	}
	return cols
}

func writeSamplesCSV(path string, trials []Trial, columns []string, samples func(*Result) []runstore.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"trial", "run_id", "iteration", "fitness", "fevals", "time_ms"}, columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for _, t := range trials {
		if t.Result == nil {
			continue
		}
		info := params.FromPairs(t.Result.UserInfo...)
		for _, s := range samples(t.Result) {
			row := []string{
				strconv.Itoa(t.Index),
				t.Result.RunID,
				strconv.Itoa(s.Iteration),
				strconv.FormatFloat(s.Fitness, 'g', -1, 64),
				strconv.Itoa(s.FEvals),
				strconv.FormatFloat(s.ElapsedMs, 'f', 3, 64),
			}
			for _, col := range columns {
				v, ok := info.Get(col)
				if !ok {
					row = append(row, "")
					continue
				}
				row = append(row, fmt.Sprint(v))
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func writeGridResults(path string, g *GridResult) error {
	file := gridResultsFile{
		Runner:     g.Runner,
		Experiment: g.Experiment,
		Selection:  g.Selection,
		BestTrial:  g.BestIndex,
		DurationMs: g.Duration.Milliseconds(),
		Trials:     make([]trialEntry, 0, len(g.Trials)),
	}
	for _, t := range g.Trials {
		entry := trialEntry{
			Index:      t.Index,
			Params:     t.Params,
			TrainScore: t.TrainScore,
			TestScore:  t.TestScore,
		}
		if t.Result != nil {
			entry.RunID = t.Result.RunID
			entry.BestFitness = t.Result.BestFitness
			entry.Iterations = t.Result.Iterations
			entry.StopReason = t.Result.StopReason
			entry.Converged = t.Result.Converged
			entry.ConvergenceReason = t.Result.ConvergenceReason
		}
		file.Trials = append(file.Trials, entry)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encode grid results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
