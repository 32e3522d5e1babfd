package algorithms

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"
	"github.com/GoSim-25-26J-441/nngs-runner/pkg/shortname"
)

// Schedule maps an iteration number to an annealing temperature
type Schedule interface {
	ID() string
	Evaluate(t int) float64
}

// GeomDecay: T(t) = max(init_temp * decay^t, min_temp)
type GeomDecay struct {
	InitTemp float64
	Decay    float64
	MinTemp  float64
}

// NewGeomDecay returns a geometric schedule with the usual defaults
func NewGeomDecay() *GeomDecay {
	return &GeomDecay{InitTemp: 1.0, Decay: 0.99, MinTemp: 0.001}
}

func (s *GeomDecay) ID() string { return "geom_decay" }

func (s *GeomDecay) Evaluate(t int) float64 {
	return math.Max(s.InitTemp*math.Pow(s.Decay, float64(t)), s.MinTemp)
}

func (s *GeomDecay) String() string {
	return fmt.Sprintf("%s(init_temp=%g, decay=%g, min_temp=%g)", shortname.Lookup(s.ID()), s.InitTemp, s.Decay, s.MinTemp)
}

// ArithDecay: T(t) = max(init_temp - decay*t, min_temp)
type ArithDecay struct {
	InitTemp float64
	Decay    float64
	MinTemp  float64
}

// NewArithDecay returns an arithmetic schedule with the usual defaults
func NewArithDecay() *ArithDecay {
	return &ArithDecay{InitTemp: 1.0, Decay: 0.0001, MinTemp: 0.001}
}

func (s *ArithDecay) ID() string { return "arith_decay" }

func (s *ArithDecay) Evaluate(t int) float64 {
	return math.Max(s.InitTemp-s.Decay*float64(t), s.MinTemp)
}

func (s *ArithDecay) String() string {
	return fmt.Sprintf("%s(init_temp=%g, decay=%g, min_temp=%g)", shortname.Lookup(s.ID()), s.InitTemp, s.Decay, s.MinTemp)
}

// ExpDecay: T(t) = max(init_temp * exp(-exp_const*t), min_temp)
type ExpDecay struct {
	InitTemp float64
	ExpConst float64
	MinTemp  float64
}

// NewExpDecay returns an exponential schedule with the usual defaults
func NewExpDecay() *ExpDecay {
	return &ExpDecay{InitTemp: 1.0, ExpConst: 0.005, MinTemp: 0.001}
}

func (s *ExpDecay) ID() string { return "exp_decay" }

func (s *ExpDecay) Evaluate(t int) float64 {
	return math.Max(s.InitTemp*math.Exp(-s.ExpConst*float64(t)), s.MinTemp)
}

func (s *ExpDecay) String() string {
	return fmt.Sprintf("%s(init_temp=%g, exp_const=%g, min_temp=%g)", shortname.Lookup(s.ID()), s.InitTemp, s.ExpConst, s.MinTemp)
}

// ScheduleFrom resolves a schedule parameter. Accepted forms are a
// Schedule, a name ("geom_decay" or "geom"), or a map with a "type" key
// and optional init_temp, decay, exp_const and min_temp overrides.
// nil yields the default geometric schedule.
func ScheduleFrom(v any) (Schedule, error) {
	switch x := v.(type) {
	case nil:
		return NewGeomDecay(), nil
	case Schedule:
		return x, nil
	case string:
		return scheduleByName(x)
	case map[string]any:
		return scheduleFromMap(x)
	}
	return nil, fmt.Errorf("%w: unsupported schedule %T", ErrInvalidArgs, v)
}

func scheduleByName(name string) (Schedule, error) {
	for _, s := range []Schedule{NewGeomDecay(), NewArithDecay(), NewExpDecay()} {
		if name == s.ID() || name == shortname.Lookup(s.ID()) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown schedule %q", ErrInvalidArgs, name)
}

func scheduleFromMap(m map[string]any) (Schedule, error) {
	name, _ := m["type"].(string)
	s, err := scheduleByName(name)
	if err != nil {
		return nil, err
	}
	opts := params.FromMap(m)
	switch sched := s.(type) {
	case *GeomDecay:
		err = readFloats(opts, map[string]*float64{"init_temp": &sched.InitTemp, "decay": &sched.Decay, "min_temp": &sched.MinTemp})
	case *ArithDecay:
		err = readFloats(opts, map[string]*float64{"init_temp": &sched.InitTemp, "decay": &sched.Decay, "min_temp": &sched.MinTemp})
	case *ExpDecay:
		err = readFloats(opts, map[string]*float64{"init_temp": &sched.InitTemp, "exp_const": &sched.ExpConst, "min_temp": &sched.MinTemp})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return s, nil
}

func readFloats(opts *params.Args, dst map[string]*float64) error {
	for key, ptr := range dst {
		v, err := opts.Float(key, *ptr)
		if err != nil {
			return err
		}
		*ptr = v
	}
	return nil
}
