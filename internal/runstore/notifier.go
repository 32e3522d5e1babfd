package runstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/logger"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/utils"
)

var (
	ErrInvalidURL       = errors.New("invalid callback url")
	ErrMetadataEndpoint = errors.New("callback url targets a metadata endpoint")
)

// SecretHeader carries the shared secret on every callback request
const SecretHeader = "X-NNGS-Callback-Secret"

// NotificationPayload is the JSON body posted to the callback URL
type NotificationPayload struct {
	RunID       string  `json:"run_id"`
	Experiment  string  `json:"experiment"`
	Runner      string  `json:"runner"`
	Algorithm   string  `json:"algorithm"`
	Status      Status  `json:"status"`
	Error       string  `json:"error,omitempty"`
	BestFitness float64 `json:"best_fitness"`
	Iterations  int     `json:"iterations"`
	StopReason  string  `json:"stop_reason,omitempty"`
	EndedAtMs   int64   `json:"ended_at_unix_ms,omitempty"`
	Timestamp   int64   `json:"timestamp"`

	UserInfo []params.Pair `json:"user_info"`
}

// Notifier posts terminal run records to a webhook. It satisfies Sink, so
// it is attached with Store.WithSink.
type Notifier struct {
	callbackURL string
	secret      string
	httpClient  *http.Client
	maxRetries  int
	backoff     utils.BackoffStrategy
	wg          sync.WaitGroup
}

// NewNotifier validates callbackURL and returns a notifier for it.
// A "{run_id}" placeholder in the URL is replaced per run.
func NewNotifier(callbackURL, secret string) (*Notifier, error) {
	if err := validateCallbackURL(callbackURL); err != nil {
		return nil, err
	}
	return &Notifier{
		callbackURL: callbackURL,
		secret:      secret,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxRetries:  3,
		backoff:     utils.NewExponentialBackoff(time.Second, 30*time.Second, 2),
	}, nil
}

// Save schedules the notification and returns immediately
func (n *Notifier) Save(_ context.Context, rec *RunRecord) error {
	if rec == nil {
		return nil
	}
	payload := NotificationPayload{
		RunID:       rec.ID,
		Experiment:  rec.Experiment,
		Runner:      rec.Runner,
		Algorithm:   rec.Algorithm,
		Status:      rec.Status,
		Error:       rec.Error,
		BestFitness: rec.BestFitness,
		Iterations:  rec.Iterations,
		StopReason:  rec.StopReason,
		EndedAtMs:   rec.EndedAtUnixMs,
		Timestamp:   time.Now().UTC().UnixMilli(),
		UserInfo:    make([]params.Pair, 0, len(rec.UserInfo)),
	}
	for _, p := range rec.UserInfo {
		payload.UserInfo = append(payload.UserInfo, params.Pair{Key: p.Key, Value: jsonValue(p.Value)})
	}
	target := strings.ReplaceAll(n.callbackURL, "{run_id}", url.PathEscape(rec.ID))

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.send(target, payload)
	}()
	return nil
}

// Wait blocks until every scheduled notification has finished
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(target string, payload NotificationPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload", "run_id", payload.RunID, "error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.NextDelay(attempt - 1)
			logger.Debug("retrying notification",
				"callback_url", target,
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "nngs-runner/1.0")
		if n.secret != "" {
			req.Header.Set(SecretHeader, n.secret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", target,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"error", err)
			continue
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"run_id", payload.RunID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return
		}
		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", target,
			"run_id", payload.RunID,
			"status_code", resp.StatusCode,
			"response_body", string(snippet),
			"attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", target,
		"run_id", payload.RunID,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
}

var metadataHosts = map[string]bool{
	"169.254.169.254":          true,
	"metadata.google.internal": true,
	"metadata":                 true,
}

func validateCallbackURL(raw string) error {
	u, err := url.Parse(strings.ReplaceAll(raw, "{run_id}", "run"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if metadataHosts[strings.ToLower(host)] {
		return fmt.Errorf("%w: %s", ErrMetadataEndpoint, host)
	}
	return nil
}
