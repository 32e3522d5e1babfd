package algorithms

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestScheduleEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		sched Schedule
		t     int
		want  float64
	}{
		{"geom start", NewGeomDecay(), 0, 1.0},
		{"geom step", NewGeomDecay(), 2, 0.99 * 0.99},
		{"geom floor", NewGeomDecay(), 100000, 0.001},
		{"arith step", NewArithDecay(), 1000, 0.9},
		{"arith floor", NewArithDecay(), 1000000, 0.001},
		{"exp step", NewExpDecay(), 100, math.Exp(-0.5)},
		{"exp floor", NewExpDecay(), 100000, 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sched.Evaluate(tt.t); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Evaluate(%d) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestScheduleFrom(t *testing.T) {
	s, err := ScheduleFrom(nil)
	if err != nil || s.ID() != "geom_decay" {
		t.Fatalf("nil: got %v, %v", s, err)
	}

	s, err = ScheduleFrom("arith")
	if err != nil || s.ID() != "arith_decay" {
		t.Fatalf("short name: got %v, %v", s, err)
	}

	custom := &ExpDecay{InitTemp: 2, ExpConst: 0.1, MinTemp: 0.01}
	s, err = ScheduleFrom(custom)
	if err != nil || s != Schedule(custom) {
		t.Fatalf("schedule value: got %v, %v", s, err)
	}

	s, err = ScheduleFrom(map[string]any{"type": "geom_decay", "init_temp": 10, "decay": 0.5})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	geom := s.(*GeomDecay)
	if geom.InitTemp != 10 || geom.Decay != 0.5 || geom.MinTemp != 0.001 {
		t.Fatalf("unexpected overrides %+v", geom)
	}

	if _, err := ScheduleFrom(map[string]any{"type": "geom_decay", "decay": "fast"}); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs for bad override, got %v", err)
	}
	if _, err := ScheduleFrom(42); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs for int, got %v", err)
	}
	if _, err := ScheduleFrom("cosine"); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("expected ErrInvalidArgs for unknown name, got %v", err)
	}
}

func TestScheduleString(t *testing.T) {
	got := NewGeomDecay().String()
	if !strings.HasPrefix(got, "geom(") {
		t.Fatalf("unexpected rendering %q", got)
	}
}
