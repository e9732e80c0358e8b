package llm

import (
	"context"
	"math/rand"
	"time"
)

// RetryMiddleware retries retryable provider failures with exponential
// backoff and jitter. Auth and bad-request failures are returned
// immediately since retrying them cannot succeed.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreLLM) CoreLLM {
		return &retryLLM{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

type retryLLM struct {
	next       CoreLLM
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func (r *retryLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", 0, 0, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}

		response, tokensIn, tokensOut, err := r.next.DoRequest(ctx, prompt, opts)
		if err == nil {
			return response, tokensIn, tokensOut, nil
		}
		lastErr = err
		if !IsRetryableError(err) {
			break
		}
	}
	return "", 0, 0, lastErr
}

// backoff doubles the delay per attempt, caps it at maxDelay, and adds
// up to 25% jitter to avoid synchronized retry storms.
func (r *retryLLM) backoff(attempt int) time.Duration {
	delay := r.baseDelay << (attempt - 1)
	if delay > r.maxDelay || delay <= 0 {
		delay = r.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

func (r *retryLLM) GetModel() string { return r.next.GetModel() }

func (r *retryLLM) SetModel(m string) { r.next.SetModel(m) }
