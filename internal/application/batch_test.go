package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
	"github.com/ahrav/codelens/internal/testutils"
)

// recordingMetrics captures label sets so tests can assert on metric
// cardinality.
type recordingMetrics struct {
	mu         sync.Mutex
	counters   []map[string]string
	histograms []map[string]string
}

var _ ports.MetricsCollector = (*recordingMetrics)(nil)

func (m *recordingMetrics) RecordLatency(string, time.Duration, map[string]string) {}

func (m *recordingMetrics) RecordCounter(_ string, _ float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, labels)
}

func (m *recordingMetrics) RecordGauge(string, float64, map[string]string) {}

func (m *recordingMetrics) RecordHistogram(_ string, _ float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, labels)
}

func batchFunctions() []domain.FunctionRecord {
	return []domain.FunctionRecord{
		{
			Name:      "findOwner",
			ClassName: "OwnerRepository",
			Code:      "public Owner findOwner(String id) { return db.load(id); }",
			Language:  "java",
			Calls:     []string{"load"},
		},
		{
			Name:     "save",
			Code:     "public void save(Owner o) { db.persist(o); }",
			Language: "java",
			Calls:    []string{"persist"},
		},
	}
}

func TestBatchRunner_Run(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"explains things"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	runner, err := NewBatchRunner(o, nil, nil, 2)
	require.NoError(t, err)

	callGraph := map[string][]string{
		"OwnerRepository.findOwner": {"OwnerController.show"},
	}
	results, err := runner.Run(context.Background(), batchFunctions(), callGraph)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results align with input order regardless of scheduling.
	assert.Equal(t, "findOwner", results[0].Function.Name)
	assert.Equal(t, "save", results[1].Function.Name)
	for _, r := range results {
		assert.True(t, r.Result.Verified)
	}

	// Callers flow from the call graph into the revision context.
	var sawCallers bool
	for _, rc := range writer.Contexts {
		if len(rc.Callers) == 1 && rc.Callers[0] == "OwnerController.show" {
			sawCallers = true
		}
	}
	assert.True(t, sawCallers)
}

func TestBatchRunner_StatusLabelStaysBounded(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"explains things"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(87)}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	metrics := &recordingMetrics{}
	runner, err := NewBatchRunner(o, metrics, nil, 2)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), batchFunctions(), nil)
	require.NoError(t, err)

	// The status label takes one of two fixed values so the counter's
	// cardinality never grows with confidence percentages.
	require.Len(t, metrics.counters, 2)
	for _, labels := range metrics.counters {
		assert.Contains(t, []string{"verified", "unverified"}, labels["status"])
	}

	// Confidence is recorded through the histogram instead.
	require.Len(t, metrics.histograms, 2)
	for _, labels := range metrics.histograms {
		assert.Equal(t, "java", labels["language"])
	}
}

func TestBatchRunner_CancelledContext(t *testing.T) {
	writer := &testutils.ScriptedWriter{Explanations: []string{"x"}}
	critic := &testutils.ScriptedCritic{Results: []domain.CritiqueResult{passResult(90)}}

	config := DefaultOrchestratorConfig()
	config.RunRegeneration = false
	o := newTestOrchestrator(t, writer, critic, nil, config)

	runner, err := NewBatchRunner(o, nil, nil, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx, batchFunctions(), nil)
	assert.Error(t, err)
}

func TestNewBatchRunner_RequiresOrchestrator(t *testing.T) {
	_, err := NewBatchRunner(nil, nil, nil, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}
