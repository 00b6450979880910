package operations

import (
	"time"
)

// Config controls how the manager runs steps
type Config struct {
	// Step-specific timeouts
	StepTimeouts map[string]time.Duration `json:"step_timeouts"`

	// Steps that are recorded as skipped instead of executed
	DisabledSteps map[string]string `json:"disabled_steps"`
}

// NewConfig returns the default run configuration
func NewConfig() *Config {
	return &Config{
		StepTimeouts: map[string]time.Duration{
			StepIDSynthesize: DefaultSynthesizeTimeout,
		},
		DisabledSteps: make(map[string]string),
	}
}

// GetStepTimeout returns the timeout for a specific step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok {
		return timeout
	}
	return DefaultStepTimeout
}

// SetStepTimeout sets the timeout for a specific step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}

// DisableStep makes the manager skip stepID, recording reason
func (c *Config) DisableStep(stepID, reason string) {
	if c.DisabledSteps == nil {
		c.DisabledSteps = make(map[string]string)
	}
	c.DisabledSteps[stepID] = reason
}

// IsDisabled reports whether stepID is disabled and why
func (c *Config) IsDisabled(stepID string) (string, bool) {
	reason, ok := c.DisabledSteps[stepID]
	return reason, ok
}
