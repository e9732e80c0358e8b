package testutils

import (
	"context"
	"sync"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var (
	_ ports.Writer                = (*ScriptedWriter)(nil)
	_ ports.Critic                = (*ScriptedCritic)(nil)
	_ ports.RegenerationValidator = (*StubValidator)(nil)
)

// ScriptedWriter returns pre-scripted explanations in call order and
// records the revision context passed to each call.
// When the script runs out, the last entry repeats.
type ScriptedWriter struct {
	mu sync.Mutex

	// Explanations are returned one per call, in order.
	Explanations []string
	// Contexts records the revision context of each call.
	Contexts []domain.RevisionContext

	calls int
}

// Write returns the next scripted explanation.
func (w *ScriptedWriter) Write(ctx context.Context, code string, rc domain.RevisionContext) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Contexts = append(w.Contexts, rc)
	idx := w.calls
	w.calls++
	if idx >= len(w.Explanations) {
		idx = len(w.Explanations) - 1
	}
	if idx < 0 {
		return ""
	}
	return w.Explanations[idx]
}

// CallCount returns how many times Write has been invoked.
func (w *ScriptedWriter) CallCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// ScriptedCritic returns pre-scripted critique results in call order.
// When the script runs out, the last entry repeats.
type ScriptedCritic struct {
	mu sync.Mutex

	// Results are returned one per call, in order.
	Results []domain.CritiqueResult

	calls int
}

// Critique returns the next scripted result.
func (c *ScriptedCritic) Critique(ctx context.Context, code, explanation string) domain.CritiqueResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.calls
	c.calls++
	if idx >= len(c.Results) {
		idx = len(c.Results) - 1
	}
	if idx < 0 {
		return domain.CritiqueResult{Verdict: domain.VerdictFail}
	}
	return c.Results[idx]
}

// CallCount returns how many times Critique has been invoked.
func (c *ScriptedCritic) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// StubValidator returns a fixed fidelity report or error and counts
// invocations.
type StubValidator struct {
	mu sync.Mutex

	// Report is returned when Err is nil.
	Report domain.FidelityReport
	// Err, when set, is returned instead of the report.
	Err error

	calls int
}

// Validate returns the configured report or error.
func (v *StubValidator) Validate(ctx context.Context, originalCode, explanation, language string) (domain.FidelityReport, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.calls++
	if v.Err != nil {
		return domain.FidelityReport{}, v.Err
	}
	return v.Report, nil
}

// CallCount returns how many times Validate has been invoked.
func (v *StubValidator) CallCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}
