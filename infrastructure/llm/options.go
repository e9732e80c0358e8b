package llm

// RequestOptions is the provider-neutral view of the per-request
// options map. Providers translate it into their native request types.
type RequestOptions struct {
	// Model overrides the provider's configured model for one request.
	Model string
	// MaxTokens bounds the reply length; zero leaves the provider
	// default in place.
	MaxTokens int
	// Temperature is optional; nil keeps the provider default.
	Temperature *float64
	// System is an optional system prompt. Providers without a system
	// role prepend it to the user prompt.
	System string
}

// DefaultMaxTokens caps replies when the caller gives no limit.
const DefaultMaxTokens = 1024

// ParseRequestOptions extracts the common options with defaults.
// Unknown keys and wrongly-typed values are ignored rather than
// rejected: callers script options loosely and the provider's own
// validation is authoritative.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		Model:     defaultModel,
		MaxTokens: DefaultMaxTokens,
	}
	if opts == nil {
		return options
	}

	if model, ok := opts["model"].(string); ok && model != "" {
		options.Model = model
	}
	if maxTokens, ok := asInt(opts["max_tokens"]); ok && maxTokens > 0 {
		options.MaxTokens = maxTokens
	}
	if temp, ok := asFloat64(opts["temperature"]); ok {
		t := clampFloat64(temp, 0.0, 2.0)
		options.Temperature = &t
	}
	if system, ok := opts["system"].(string); ok {
		options.System = system
	}
	return options
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
