// Package analysis runs the per-field review loop: the user writes a field,
// asks the backend to score it, then applies or dismisses the suggestion.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/document"
	"github.com/nikhilbhutani/etpassistant/internal/fields"
)

var (
	ErrUnknownField         = errors.New("unknown field")
	ErrAssistantUnavailable = errors.New("Configure o assistente IA primeiro")
	ErrValueTooShort        = errors.New("Digite pelo menos 10 caracteres no campo para usar o assistente")
	ErrNoResult             = errors.New("no analysis to act on")
)

// State is where a field sits in the review loop.
type State string

const (
	StateIdle      State = "idle"
	StateAnalyzing State = "analyzing"
	StateReviewing State = "reviewing"
	StateApplied   State = "applied"
	StateDismissed State = "dismissed"
)

// StatusSource reports the capabilities last seen live. Current must not
// block on the network.
type StatusSource interface {
	Current() backend.Status
}

// Analyzer scores one field value.
type Analyzer interface {
	AnalyzeField(ctx context.Context, kind, text string, prior map[string]string) (*backend.Analysis, error)
}

// Observer is told about each completed analysis.
type Observer func(name string, a *backend.Analysis)

type Workflow struct {
	gw       Analyzer
	status   StatusSource
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	values   document.Values
	results  map[string]*backend.Analysis
	states   map[string]State
	active   string
	inFlight map[string]bool
}

func NewWorkflow(gw Analyzer, status StatusSource, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		gw:       gw,
		status:   status,
		logger:   logger,
		values:   make(document.Values),
		results:  make(map[string]*backend.Analysis),
		states:   make(map[string]State),
		inFlight: make(map[string]bool),
	}
}

// OnAnalyzed registers fn to run after each successful analysis.
func (w *Workflow) OnAnalyzed(fn Observer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observer = fn
}

// SetValue records an edit. It does not touch the field's state.
func (w *Workflow) SetValue(name, text string) error {
	if _, ok := fields.Lookup(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[name] = text
	return nil
}

func (w *Workflow) Value(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values[name]
}

func (w *Workflow) Values() document.Values {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values.Clone()
}

// Load replaces every value, as when a draft is restored. Results and
// states are left alone.
func (w *Workflow) Load(values document.Values) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values = make(document.Values, len(values))
	for k, v := range values {
		if _, ok := fields.Lookup(k); ok {
			w.values[k] = v
		}
	}
}

// RequestAnalysis asks the backend to score the field's current value.
// The capability and length checks use local state only; a refused request
// makes no network call.
func (w *Workflow) RequestAnalysis(ctx context.Context, name string) (*backend.Analysis, error) {
	field, ok := fields.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !w.status.Current().Has(backend.CapabilityFieldAssistant) {
		return nil, ErrAssistantUnavailable
	}

	w.mu.Lock()
	value := w.values[name]
	if !fields.LongEnough(value) {
		w.mu.Unlock()
		return nil, ErrValueTooShort
	}
	prior := w.values.Clone()
	w.active = name
	w.inFlight[name] = true
	w.mu.Unlock()

	w.logger.Info("analyzing field", "field", name)
	a, err := w.gw.AnalyzeField(ctx, field.AnalysisKind, value, prior)

	w.mu.Lock()
	delete(w.inFlight, name)
	if w.active == name {
		w.active = ""
	}
	if err != nil {
		delete(w.results, name)
		w.states[name] = StateIdle
		w.mu.Unlock()
		w.logger.Warn("field analysis failed", "field", name, "error", err)
		return nil, err
	}
	w.results[name] = a
	w.states[name] = StateReviewing
	observer := w.observer
	w.mu.Unlock()

	w.logger.Info("field analyzed", "field", name, "score", a.Score)
	if observer != nil {
		observer(name, a)
	}
	return a, nil
}

// State reports analyzing only while the field is the active one and its
// call has not returned.
func (w *Workflow) State(name string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == name && w.inFlight[name] {
		return StateAnalyzing
	}
	if s, ok := w.states[name]; ok {
		return s
	}
	return StateIdle
}

// Active is the field most recently sent for analysis, or "" when none is
// pending.
func (w *Workflow) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Workflow) Result(name string) (*backend.Analysis, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.results[name]
	return a, ok
}

// Status is the presentation status of the field's latest score.
func (w *Workflow) Status(name string) (ScoreStatus, bool) {
	a, ok := w.Result(name)
	if !ok {
		return "", false
	}
	return StatusForScore(a.Score), true
}

// ApplySuggestion copies the suggested text into the field. It reports
// whether the value changed; a result without a suggestion changes nothing.
func (w *Workflow) ApplySuggestion(name string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.results[name]
	if !ok || w.states[name] != StateReviewing {
		return false, fmt.Errorf("%w: %s", ErrNoResult, name)
	}
	if a.ImprovedText == "" {
		return false, nil
	}
	w.values[name] = a.ImprovedText
	w.states[name] = StateApplied
	return true, nil
}

func (w *Workflow) Dismiss(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.states[name] != StateReviewing {
		return fmt.Errorf("%w: %s", ErrNoResult, name)
	}
	w.states[name] = StateDismissed
	return nil
}

// FieldView is one registry entry with its live workflow data.
type FieldView struct {
	fields.Field
	Value  string            `json:"value"`
	State  State             `json:"state"`
	Score  *int              `json:"score,omitempty"`
	Status ScoreStatus       `json:"status,omitempty"`
	Result *backend.Analysis `json:"analysis,omitempty"`
}

// Snapshot lists every field in registry order.
func (w *Workflow) Snapshot() []FieldView {
	all := fields.All()
	out := make([]FieldView, 0, len(all))
	for _, f := range all {
		v := FieldView{Field: f, Value: w.Value(f.Name), State: w.State(f.Name)}
		if a, ok := w.Result(f.Name); ok {
			score := a.Score
			v.Score = &score
			v.Status = StatusForScore(score)
			v.Result = a
		}
		out = append(out, v)
	}
	return out
}
