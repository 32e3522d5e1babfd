package config

// Experiment is the YAML description of one grid-search experiment
type Experiment struct {
	Name                 string           `yaml:"name"`
	Seed                 int64            `yaml:"seed"`
	Algorithm            string           `yaml:"algorithm"`
	IterationList        []int            `yaml:"iteration_list"`
	GridSearchParameters map[string][]any `yaml:"grid_search_parameters,omitempty"`
	Classifier           Classifier       `yaml:"classifier"`
	GenerateCurves       *bool            `yaml:"generate_curves,omitempty"`
	OutputDirectory      string           `yaml:"output_directory,omitempty"`
	Selection            string           `yaml:"selection,omitempty"`
	ExtraArgs            map[string]any   `yaml:"extra_args,omitempty"`
	Data                 Data             `yaml:"data"`
	LogLevel             string           `yaml:"log_level,omitempty"`
}

// Classifier holds the hyperparameters fixed for every trial
type Classifier struct {
	Bias          *bool    `yaml:"bias,omitempty"`
	EarlyStopping *bool    `yaml:"early_stopping,omitempty"`
	ClipMax       *float64 `yaml:"clip_max,omitempty"`
	MaxAttempts   *int     `yaml:"max_attempts,omitempty"`
}

// Data points at the train and test CSV files
type Data struct {
	Train       string `yaml:"train"`
	Test        string `yaml:"test"`
	LabelColumn *int   `yaml:"label_column,omitempty"`
}

const (
	DefaultBias           = true
	DefaultEarlyStopping  = false
	DefaultClipMax        = 1e10
	DefaultMaxAttempts    = 500
	DefaultGenerateCurves = true
	DefaultLabelColumn    = -1
	DefaultLogLevel       = "info"
	DefaultSelection      = "best_test_score"
)

// applyDefaults fills every unset optional field
func (e *Experiment) applyDefaults() {
	if e.Classifier.Bias == nil {
		v := DefaultBias
		e.Classifier.Bias = &v
	}
	if e.Classifier.EarlyStopping == nil {
		v := DefaultEarlyStopping
		e.Classifier.EarlyStopping = &v
	}
	if e.Classifier.ClipMax == nil {
		v := DefaultClipMax
		e.Classifier.ClipMax = &v
	}
	if e.Classifier.MaxAttempts == nil {
		v := DefaultMaxAttempts
		e.Classifier.MaxAttempts = &v
	}
	if e.GenerateCurves == nil {
		v := DefaultGenerateCurves
		e.GenerateCurves = &v
	}
	if e.Data.LabelColumn == nil {
		v := DefaultLabelColumn
		e.Data.LabelColumn = &v
	}
	if e.LogLevel == "" {
		e.LogLevel = DefaultLogLevel
	}
	if e.Selection == "" {
		e.Selection = DefaultSelection
	}
}

// CurvesEnabled reports whether full fitness curves are recorded
func (e *Experiment) CurvesEnabled() bool {
	return e.GenerateCurves == nil || *e.GenerateCurves
}

// BiasEnabled reports whether networks carry a bias node
func (c Classifier) BiasEnabled() bool {
	return c.Bias == nil || *c.Bias
}

// EarlyStoppingEnabled reports whether max_attempts ends a search early
func (c Classifier) EarlyStoppingEnabled() bool {
	return c.EarlyStopping != nil && *c.EarlyStopping
}

// ClipMaxValue returns the weight clipping bound
func (c Classifier) ClipMaxValue() float64 {
	if c.ClipMax == nil {
		return DefaultClipMax
	}
	return *c.ClipMax
}

// MaxAttemptsValue returns the attempts budget per improvement
func (c Classifier) MaxAttemptsValue() int {
	if c.MaxAttempts == nil {
		return DefaultMaxAttempts
	}
	return *c.MaxAttempts
}

// LabelColumnValue returns the CSV label column index
func (d Data) LabelColumnValue() int {
	if d.LabelColumn == nil {
		return DefaultLabelColumn
	}
	return *d.LabelColumn
}
