// Package llm provides a unified client for the LLM providers used by
// the verification pipeline (OpenAI, Anthropic, Google) with pluggable
// middleware for retries, timeouts, rate limiting, logging, and
// metrics.
//
// Providers implement the minimal CoreLLM interface and register
// themselves through RegisterProviderFactory; middleware wraps any
// CoreLLM without touching provider logic.
//
// Basic usage:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-haiku-latest",
//	    Middleware: []llm.Middleware{
//	        llm.RetryMiddleware(3, time.Second, 30*time.Second),
//	        llm.RateLimitMiddleware(rate.Limit(10), 20),
//	    },
//	})
//	reply, err := client.Generate(ctx, prompt, map[string]any{"temperature": 0.0})
package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ahrav/codelens/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware
// wraps CoreLLM values, so every cross-cutting concern composes over
// any provider.
type CoreLLM interface {
	// DoRequest sends one prompt and returns the reply text along with
	// input and output token counts. Providers fall back to estimation
	// when the API omits usage data.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the configured model name.
	GetModel() string

	// SetModel switches the model for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreLLM to add cross-cutting behavior.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds the settings for constructing a provider client.
type ClientConfig struct {
	// APIKey authenticates requests. For the Google provider it may
	// instead be a path to a service account credentials file.
	APIKey string

	// Model selects the provider model; empty selects the provider
	// default.
	Model string

	// BaseURL overrides the provider endpoint; empty uses the default.
	BaseURL string

	// Timeout bounds individual requests; zero means no timeout.
	Timeout time.Duration

	// Middleware is applied around the provider in the order given,
	// so the first entry sees the request first.
	Middleware []Middleware
}

// ProviderFactory constructs a CoreLLM from a ClientConfig.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var (
	factoriesMu       sync.RWMutex
	providerFactories = make(map[string]ProviderFactory)
)

// RegisterProviderFactory registers a provider under a name for
// NewClient lookup. Providers register themselves in init.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	providerFactories[name] = factory
}

// Client adapts a middleware-wrapped CoreLLM to the ports.LLMClient
// interface the pipeline components consume.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient builds a client for the named provider, wrapping it in the
// configured middleware chain.
func NewClient(provider string, config ClientConfig) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := providerFactories[provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", provider, err)
	}

	if config.Timeout > 0 {
		core = TimeoutMiddleware(config.Timeout)(core)
	}
	// Wrap in reverse so the first configured middleware is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// WrapCore adapts an already-constructed CoreLLM, applying the given
// middleware. Useful for tests and custom provider stacks.
func WrapCore(core CoreLLM, middleware ...Middleware) *Client {
	for i := len(middleware) - 1; i >= 0; i-- {
		core = middleware[i](core)
	}
	return &Client{core: core}
}

// Generate sends the prompt through the middleware chain and returns
// the reply text.
func (c *Client) Generate(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	if err != nil {
		return "", err
	}
	return response, nil
}

// EstimateTokens approximates the token count of the given text.
func (c *Client) EstimateTokens(text string) (int, error) {
	return EstimateTokens(text), nil
}

// Model returns the active model name.
func (c *Client) Model() string {
	return c.core.GetModel()
}

// charsPerToken is the rough average for English text and code across
// the supported providers.
const charsPerToken = 4

// EstimateTokens approximates a token count from text length. Used
// when a provider response omits usage metadata.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}
