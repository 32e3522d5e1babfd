package runstore

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
)

// jsonValue converts any parameter value into plain JSON-compatible data
func jsonValue(v any) any {
	return params.ToValue(v).AsInterface()
}

func userInfoJSON(pairs []params.Pair) []any {
	out := make([]any, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, map[string]any{"key": p.Key, "value": jsonValue(p.Value)})
	}
	return out
}

func checkpointsJSON(samples []Sample) []any {
	out := make([]any, 0, len(samples))
	for _, c := range samples {
		out = append(out, map[string]any{
			"iteration":  c.Iteration,
			"fitness":    c.Fitness,
			"fevals":     c.FEvals,
			"elapsed_ms": c.ElapsedMs,
		})
	}
	return out
}

// convertRunToJSON renders a record as JSON-compatible maps. It is shared
// by the HTTP handlers and the gRPC Struct encoding.
func convertRunToJSON(rec *RunRecord) map[string]any {
	out := map[string]any{
		"id":                 rec.ID,
		"experiment":         rec.Experiment,
		"runner":             rec.Runner,
		"algorithm":          rec.Algorithm,
		"status":             string(rec.Status),
		"user_info":          userInfoJSON(rec.UserInfo),
		"best_fitness":       rec.BestFitness,
		"iterations":         rec.Iterations,
		"checkpoints":        checkpointsJSON(rec.Checkpoints),
		"created_at_unix_ms": rec.CreatedAtUnixMs,
	}
	if rec.Error != "" {
		out["error"] = rec.Error
	}
	if rec.StopReason != "" {
		out["stop_reason"] = rec.StopReason
	}
	if rec.StartedAtUnixMs > 0 {
		out["started_at_unix_ms"] = rec.StartedAtUnixMs
	}
	if rec.EndedAtUnixMs > 0 {
		out["ended_at_unix_ms"] = rec.EndedAtUnixMs
	}
	return out
}

// runToStruct encodes a record as a protobuf Struct
func runToStruct(rec *RunRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(convertRunToJSON(rec))
}
