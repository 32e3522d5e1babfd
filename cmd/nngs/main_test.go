package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

func TestParseSetFlags(t *testing.T) {
	got, err := parseSetFlags([]string{"restarts=4", "lr=0.5", "bias=false", "layers=[4, 2]", "activation=relu", "note="})
	if err != nil {
		t.Fatalf("parseSetFlags: %v", err)
	}
	want := []params.Pair{
		{Key: "restarts", Value: 4},
		{Key: "lr", Value: 0.5},
		{Key: "bias", Value: false},
		{Key: "layers", Value: []any{4, 2}},
		{Key: "activation", Value: "relu"},
		{Key: "note", Value: ""},
	}
	if !reflect.DeepEqual(got.Pairs(), want) {
		t.Fatalf("expected %v, got %v", want, got.Pairs())
	}
}

func TestParseSetFlagsInvalid(t *testing.T) {
	for _, in := range []string{"novalue", "=3", "x=[1"} {
		if _, err := parseSetFlags([]string{in}); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"version", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var out map[string]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out["version"] != version {
		t.Fatalf("expected version %s, got %s", version, out["version"])
	}
}

const testExperiment = `
name: cli_test
seed: 11
algorithm: random_hill_climb
iteration_list: [1, 20]
grid_search_parameters:
  learning_rate: [0.1, 0.5]
  hidden_layer_sizes: [[2]]
classifier:
  clip_max: 5
  max_attempts: 10
  early_stopping: true
generate_curves: false
output_directory: out
data:
  train: train.csv
  test: test.csv
`

const testData = `x1,x2,label
0,0,0
0,1,1
1,0,1
1,1,1
`

func writeExperiment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"experiment.yaml": testExperiment,
		"train.csv":       testData,
		"test.csv":        testData,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRunCmd(t *testing.T) {
	dir := writeExperiment(t)
	archive := filepath.Join(dir, "runs.db")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{
		"run",
		"--config", filepath.Join(dir, "experiment.yaml"),
		"--set", "restarts=1",
		"--archive", archive,
		"--log-level", "warn",
		"--json",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v (stderr: %s)", err, stderr.String())
	}

	var summary map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &summary); err != nil {
		t.Fatalf("invalid json summary %q: %v", stdout.String(), err)
	}
	if summary["runner"] != "nngs_rhc" {
		t.Fatalf("expected runner nngs_rhc, got %v", summary["runner"])
	}
	if summary["trials"] != float64(2) {
		t.Fatalf("expected 2 trials, got %v", summary["trials"])
	}

	stats := filepath.Join(dir, "out", "cli_test", "nngs_rhc__cli_test__run_stats_df.csv")
	if _, err := os.Stat(stats); err != nil {
		t.Fatalf("expected run stats output: %v", err)
	}
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected archive file: %v", err)
	}
}

func TestRunCmdMissingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to read experiment file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestRunCmdBadSet(t *testing.T) {
	dir := writeExperiment(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--config", filepath.Join(dir, "experiment.yaml"), "--set", "broken"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "invalid --set") {
		t.Fatalf("expected --set error, got %v", err)
	}
}

func TestRunCmdBadCallbackURL(t *testing.T) {
	dir := writeExperiment(t)
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--config", filepath.Join(dir, "experiment.yaml"), "--callback-url", "ftp://example.com/hook"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "invalid callback url") {
		t.Fatalf("expected callback url error, got %v", err)
	}
}
