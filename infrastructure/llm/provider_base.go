package llm

import "sync"

// baseProvider supplies thread-safe model accessors shared by all
// providers.
type baseProvider struct {
	mu    sync.RWMutex
	model string
}

func (b *baseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

func (b *baseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// tokenOrEstimate prefers the provider-reported token count, falling
// back to estimation when usage metadata is absent.
func tokenOrEstimate(apiTokens int, text string) int {
	if apiTokens > 0 {
		return apiTokens
	}
	return EstimateTokens(text)
}
