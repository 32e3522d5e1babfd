package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

func TestValidateCallbackURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"valid external URL", "https://example.com/callback", nil},
		{"localhost", "http://localhost:8000/callback", nil},
		{"run_id template", "http://localhost:8000/callback/{run_id}", nil},
		{"invalid scheme", "ftp://example.com/callback", ErrInvalidURL},
		{"missing hostname", "http:///callback", ErrInvalidURL},
		{"metadata IP", "http://169.254.169.254/latest", ErrMetadataEndpoint},
		{"metadata hostname", "http://metadata.google.internal/x", ErrMetadataEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCallbackURL(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNotifierPostsTerminalRun(t *testing.T) {
	var (
		mu      sync.Mutex
		payload NotificationPayload
		path    string
		secret  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		path = r.URL.Path
		secret = r.Header.Get(SecretHeader)
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n, err := NewNotifier(server.URL+"/callback/{run_id}", "s3cret")
	if err != nil {
		t.Fatalf("NewNotifier returned error: %v", err)
	}
	store := NewStore().WithSink(n)

	rec, _ := store.Create(RunRecord{
		ID:        "run-abc",
		Runner:    "nngs_sa",
		Algorithm: "simulated_annealing",
		UserInfo:  []params.Pair{{Key: "hidden_layer_sizes", Value: []int{8}}, {Key: "learning_rate", Value: 0.9}},
	})
	if _, err := store.SetStatus(rec.ID, StatusRunning, ""); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if _, err := store.Complete(rec.ID, Outcome{BestFitness: -0.25, Iterations: 30, StopReason: "max_iters"}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	n.Wait()

	mu.Lock()
	defer mu.Unlock()
	if path != "/callback/run-abc" {
		t.Fatalf("expected templated path, got %q", path)
	}
	if secret != "s3cret" {
		t.Fatalf("expected secret header, got %q", secret)
	}
	if payload.RunID != "run-abc" || payload.Status != StatusCompleted {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.BestFitness != -0.25 || payload.Iterations != 30 {
		t.Fatalf("unexpected outcome in payload %+v", payload)
	}
	if len(payload.UserInfo) != 2 || payload.UserInfo[0].Key != "hidden_layer_sizes" {
		t.Fatalf("expected user_info in payload, got %+v", payload.UserInfo)
	}
	if lr := payload.UserInfo[1].Value; lr != 0.9 {
		t.Fatalf("expected learning_rate 0.9, got %v", lr)
	}
}

func TestNotifierRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n, err := NewNotifier(server.URL, "")
	if err != nil {
		t.Fatalf("NewNotifier returned error: %v", err)
	}
	n.backoff = utils.ConstantBackoff{Delay: time.Millisecond}

	if err := n.Save(testContext(t), &RunRecord{ID: "run-1", Status: StatusFailed}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	n.Wait()

	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestNotifierGivesUp(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n, _ := NewNotifier(server.URL, "")
	n.backoff = utils.ConstantBackoff{Delay: time.Millisecond}
	_ = n.Save(testContext(t), &RunRecord{ID: "run-1", Status: StatusFailed})
	n.Wait()

	if got := calls.Load(); got != int32(n.maxRetries+1) {
		t.Fatalf("expected %d attempts, got %d", n.maxRetries+1, got)
	}
}

func TestNewNotifierRejectsBadURL(t *testing.T) {
	if _, err := NewNotifier("ftp://example.com", ""); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

// testContext stands in for testing.T.Context (Go 1.24+): a context that is
// canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
