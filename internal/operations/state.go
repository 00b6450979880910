package operations

import (
	"sync"
	"time"

	"icwfixtures/internal/exporter"
	"icwfixtures/internal/script"
	"icwfixtures/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState is the complete state of one fixture run
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Step states, in registration order
	Steps map[string]*StepState `json:"steps"`
	order []string

	// Data passed between steps
	Context map[string]interface{} `json:"context"`

	// Files written so far, in write order
	Outputs []string `json:"outputs"`

	Error error `json:"error,omitempty"`
}

// NewRunState creates a new run state
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		Context:   make(map[string]interface{}),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// Cancel marks the run as cancelled
func (r *RunState) Cancel(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCancelled
	r.Error = err
}

// GetStatus returns the run status
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// GetStep returns the state of a specific step
func (r *RunState) GetStep(stepID string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[stepID]
}

// SetStep records the state of a step, keeping first registration order
func (r *RunState) SetStep(stepID string, state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.Steps[stepID]; !exists {
		r.order = append(r.order, stepID)
	}
	r.Steps[stepID] = state
}

// GetContext retrieves a value from the run context
func (r *RunState) GetContext(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	val, ok := r.Context[key]
	return val, ok
}

// SetContext sets a value in the run context
func (r *RunState) SetContext(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Context[key] = value
}

// AddOutput records a file written by a step
func (r *RunState) AddOutput(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outputs = append(r.Outputs, path)
}

// Dataset returns the generated dataset, if any
func (r *RunState) Dataset() (*domain.Dataset, bool) {
	val, ok := r.GetContext(ContextKeyDataset)
	if !ok {
		return nil, false
	}
	ds, ok := val.(*domain.Dataset)
	return ds, ok && ds != nil
}

// DatasetResult returns the outcome of writing the dataset, if any
func (r *RunState) DatasetResult() (*exporter.WriteResult, bool) {
	val, ok := r.GetContext(ContextKeyDatasetResult)
	if !ok {
		return nil, false
	}
	res, ok := val.(*exporter.WriteResult)
	return res, ok && res != nil
}

// ScriptResult returns the outcome of emitting the script, if any
func (r *RunState) ScriptResult() (*script.EmitResult, bool) {
	val, ok := r.GetContext(ContextKeyScriptResult)
	if !ok {
		return nil, false
	}
	res, ok := val.(*script.EmitResult)
	return res, ok && res != nil
}

// Duration returns the duration of the run
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// HasFailures returns true if any step has failed
func (r *RunState) HasFailures() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, step := range r.Steps {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// Summary snapshots the run for reporting
func (r *RunState) Summary() *RunSummary {
	duration := r.Duration()

	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &RunSummary{
		RunID:    r.ID,
		Status:   r.Status,
		Duration: duration,
		Steps:    make([]StepExecution, 0, len(r.order)),
		Outputs:  append([]string(nil), r.Outputs...),
	}
	for _, id := range r.order {
		summary.Steps = append(summary.Steps, r.Steps[id].execution())
	}
	if r.Error != nil {
		summary.Error = r.Error.Error()
	}
	return summary
}
