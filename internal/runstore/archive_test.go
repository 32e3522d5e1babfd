package runstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

func TestSQLiteArchiveSaveAndList(t *testing.T) {
	archive, err := OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	rec := &RunRecord{
		ID:          "run-1",
		Experiment:  "nn_test",
		Runner:      "nngs_sa",
		Algorithm:   "simulated_annealing",
		Status:      StatusCompleted,
		UserInfo:    []params.Pair{{Key: "max_iters", Value: 100}, {Key: "activation", Value: "relu"}},
		BestFitness: -0.3,
		Iterations:  100,
		StopReason:  "max_iters",
		Checkpoints: []Sample{{Iteration: 1, Fitness: -0.9, FEvals: 2}},

		CreatedAtUnixMs: 10,
		EndedAtUnixMs:   20,
	}
	if err := archive.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := archive.Save(ctx, &RunRecord{ID: "run-2", Experiment: "other", Status: StatusFailed, Error: "boom", CreatedAtUnixMs: 11}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := archive.List(ctx, "nn_test")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got))
	}
	run := got[0]
	if run.Runner != "nngs_sa" || run.Status != StatusCompleted || run.Iterations != 100 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if len(run.UserInfo) != 2 || run.UserInfo[0].Key != "max_iters" || run.UserInfo[1].Value != "relu" {
		t.Fatalf("user_info order lost: %+v", run.UserInfo)
	}
	if len(run.Checkpoints) != 1 || run.Checkpoints[0].FEvals != 2 {
		t.Fatalf("checkpoints lost: %+v", run.Checkpoints)
	}

	all, err := archive.List(ctx, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 || all[1].Error != "boom" {
		t.Fatalf("expected both runs, got %+v", all)
	}
}

func TestSQLiteArchiveUpsert(t *testing.T) {
	archive, err := OpenArchive(":memory:")
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	rec := &RunRecord{ID: "run-1", Experiment: "e", Status: StatusFailed, Error: "first"}
	archive.Save(ctx, rec)
	rec.Status = StatusCompleted
	rec.Error = ""
	if err := archive.Save(ctx, rec); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, _ := archive.List(ctx, "e")
	if len(got) != 1 || got[0].Status != StatusCompleted {
		t.Fatalf("expected a single updated row, got %+v", got)
	}
}

func TestStoreWithSQLiteArchive(t *testing.T) {
	archive, err := OpenArchive(":memory:")
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()

	store := NewStore().WithSink(archive)
	store.Create(RunRecord{ID: "run-1", Experiment: "e"})
	store.Complete("run-1", Outcome{Iterations: 3})

	got, err := archive.List(context.Background(), "e")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Iterations != 3 {
		t.Fatalf("expected archived run, got %+v", got)
	}
}
