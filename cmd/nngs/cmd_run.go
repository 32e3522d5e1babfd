package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/nngs-runner/internal/nngs"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runner"
	"github.com/GoSim-25-26J-441/nngs-runner/internal/runstore"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/config"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/logger"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the grid search described by an experiment file",
		Long: `Run loads an experiment file, fits one classifier per grid point and
reports the best trial. Each algorithm invocation is recorded in a run
store that can be inspected over HTTP and gRPC while the search runs.`,
		Example: `  nngs run --config config/nn_test.yaml
  nngs run --config config/nn_test.yaml --set restarts=4 --set max_attempts=20
  nngs run --config config/nn_test.yaml --http-addr :8080 --archive runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExperiment(ctx, cmd)
		},
	}

	cmd.Flags().StringP("config", "c", "", "experiment YAML file (required)")
	cmd.Flags().StringArray("set", nil, "extra algorithm argument as key=value (repeatable)")
	cmd.Flags().String("output", "", "output directory; overrides the experiment file")
	cmd.Flags().String("http-addr", "", "expose the run store over HTTP on this address")
	cmd.Flags().String("grpc-addr", "", "expose the run store over gRPC on this address")
	cmd.Flags().String("archive", "", "SQLite file to archive finished runs into")
	cmd.Flags().String("callback-url", "", "POST every finished run to this URL; {run_id} is substituted")
	cmd.Flags().String("callback-secret", "", "value sent in the "+runstore.SecretHeader+" header")
	cmd.Flags().Bool("serve", false, "keep serving the run store after the search finishes, until interrupted")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runExperiment(ctx context.Context, cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	sets, _ := cmd.Flags().GetStringArray("set")
	output, _ := cmd.Flags().GetString("output")
	logLevel, _ := cmd.Flags().GetString("log-level")
	httpAddr, _ := cmd.Flags().GetString("http-addr")
	grpcAddr, _ := cmd.Flags().GetString("grpc-addr")
	archivePath, _ := cmd.Flags().GetString("archive")
	callbackURL, _ := cmd.Flags().GetString("callback-url")
	callbackSecret, _ := cmd.Flags().GetString("callback-secret")
	serve, _ := cmd.Flags().GetBool("serve")
	jsonOut, _ := cmd.Flags().GetBool("json")

	exp, err := config.LoadExperiment(path)
	if err != nil {
		return err
	}
	if logLevel == "" {
		logLevel = exp.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, cmd.ErrOrStderr()))
	if output != "" {
		exp.OutputDirectory = output
	}

	opts, err := nngs.OptionsFromExperiment(exp)
	if err != nil {
		return err
	}
	extra, err := parseSetFlags(sets)
	if err != nil {
		return err
	}
	opts.ExtraArgs.Merge(extra)

	store := runstore.NewStore()
	if archivePath != "" {
		archive, err := runstore.OpenArchive(archivePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		store.WithSink(archive)
	}
	if callbackURL != "" {
		notifier, err := runstore.NewNotifier(callbackURL, callbackSecret)
		if err != nil {
			return err
		}
		defer notifier.Wait()
		store.WithSink(notifier)
	}
	opts.Store = store

	srv, err := startServers(store, httpAddr, grpcAddr)
	if err != nil {
		return err
	}
	defer srv.shutdown()

	r, err := nngs.New(opts)
	if err != nil {
		return err
	}
	logger.Info("experiment loaded",
		"experiment", exp.Name,
		"runner", r.Name(),
		"extra_args", opts.ExtraArgs.String())

	res, err := r.Run(ctx)
	if err != nil {
		return fmt.Errorf("experiment %s: %w", exp.Name, err)
	}
	if err := printSummary(cmd, res, jsonOut); err != nil {
		return err
	}

	if serve && srv.running() {
		logger.Info("search finished; serving run store until interrupted")
		<-ctx.Done()
	}
	return nil
}

// parseSetFlags turns key=value pairs into args. Values are decoded as
// YAML scalars or flow sequences, so "0.5", "true" and "[4, 2]" keep
// their types.
func parseSetFlags(sets []string) (*params.Args, error) {
	out := params.New()
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		if value == nil {
			value = raw
		}
		out.Set(key, value)
	}
	return out, nil
}

func printSummary(cmd *cobra.Command, res *runner.GridResult, jsonOut bool) error {
	best := res.Best()
	if best == nil {
		return fmt.Errorf("experiment %s produced no trials", res.Experiment)
	}
	w := cmd.OutOrStdout()

	if jsonOut {
		return json.NewEncoder(w).Encode(map[string]any{
			"runner":      res.Runner,
			"experiment":  res.Experiment,
			"trials":      len(res.Trials),
			"best_trial":  best.Index,
			"best_params": params.FromPairs(best.Params...).Map(),
			"train_score": best.TrainScore,
			"test_score":  best.TestScore,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}

	fmt.Fprintf(w, "%s: %d trials in %s\n", res.Runner, len(res.Trials), res.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "best trial %d: train %.4f test %.4f\n", best.Index, best.TrainScore, best.TestScore)
	fmt.Fprintf(w, "params: %s\n", params.FromPairs(best.Params...).String())
	return nil
}
