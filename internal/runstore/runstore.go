// Package runstore keeps the record of every trial an experiment runs and
// exposes it over HTTP and gRPC while the experiment is in progress.
package runstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/logger"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrRunExists   = errors.New("run already exists")
)

// Status is the lifecycle state of a trial run
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are expected
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Sample is the fitness observed at one iteration
type Sample struct {
	Iteration int     `json:"iteration" yaml:"iteration"`
	Fitness   float64 `json:"fitness" yaml:"fitness"`
	FEvals    int     `json:"fevals" yaml:"fevals"`
	ElapsedMs float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Outcome is what a finished trial reports back to the store
type Outcome struct {
	BestFitness float64
	Iterations  int
	StopReason  string
	Checkpoints []Sample
}

// RunRecord describes one algorithm invocation
type RunRecord struct {
	ID          string
	Experiment  string
	Runner      string
	Algorithm   string
	Status      Status
	Error       string
	UserInfo    []params.Pair
	BestFitness float64
	Iterations  int
	StopReason  string
	Checkpoints []Sample

	CreatedAtUnixMs int64
	StartedAtUnixMs int64
	EndedAtUnixMs   int64
}

func (r *RunRecord) clone() *RunRecord {
	out := *r
	out.UserInfo = append([]params.Pair(nil), r.UserInfo...)
	out.Checkpoints = append([]Sample(nil), r.Checkpoints...)
	return &out
}

// Sink receives every run record reaching a terminal status
type Sink interface {
	Save(ctx context.Context, rec *RunRecord) error
}

// Store is an in-memory, concurrency-safe run registry. Getters return
// snapshots so readers never observe a record mid-update.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]*RunRecord
	order []string
	sinks []Sink
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		runs: make(map[string]*RunRecord),
	}
}

// WithSink forwards every record reaching a terminal status to sink
func (s *Store) WithSink(sink Sink) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
	return s
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a pending run. An empty ID is generated.
func (s *Store) Create(rec RunRecord) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = utils.GenerateRunID()
	}
	if _, exists := s.runs[rec.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, rec.ID)
	}

	stored := rec.clone()
	stored.Status = StatusPending
	stored.CreatedAtUnixMs = nowUnixMs()
	s.runs[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.clone(), nil
}

// Get returns a snapshot of the run
func (s *Store) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// List returns up to limit runs in creation order, optionally filtered by status
func (s *Store) List(limit int, status Status) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*RunRecord, 0, min(limit, len(s.order)))
	for _, id := range s.order {
		rec := s.runs[id]
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, rec.clone())
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SetStatus moves a run to status, stamping start and end times
func (s *Store) SetStatus(runID string, status Status, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	rec, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}
	switch status {
	case StatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case StatusCompleted, StatusFailed:
		rec.EndedAtUnixMs = nowUnixMs()
	}
	snapshot := rec.clone()
	s.mu.Unlock()

	if status.Terminal() {
		s.persist(snapshot)
	}
	return snapshot, nil
}

// Complete stores the outcome and marks the run completed
func (s *Store) Complete(runID string, outcome Outcome) (*RunRecord, error) {
	s.mu.Lock()
	rec, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.BestFitness = outcome.BestFitness
	rec.Iterations = outcome.Iterations
	rec.StopReason = outcome.StopReason
	rec.Checkpoints = append([]Sample(nil), outcome.Checkpoints...)
	s.mu.Unlock()

	return s.SetStatus(runID, StatusCompleted, "")
}

// Fail marks the run failed with err
func (s *Store) Fail(runID string, err error) (*RunRecord, error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return s.SetStatus(runID, StatusFailed, msg)
}

// Sink failures are logged, never surfaced to the experiment
func (s *Store) persist(rec *RunRecord) {
	s.mu.RLock()
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Save(context.Background(), rec); err != nil {
			logger.Warn("failed to hand off run", "run_id", rec.ID, "error", err)
		}
	}
}
