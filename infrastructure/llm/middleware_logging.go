package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingMiddleware logs each request's model, latency, token usage,
// and outcome. Prompts themselves are never logged since they can
// contain proprietary source code.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next CoreLLM) CoreLLM {
		return &loggingLLM{next: next, logger: logger}
	}
}

type loggingLLM struct {
	next   CoreLLM
	logger *zap.Logger
}

func (l *loggingLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	start := time.Now()
	response, tokensIn, tokensOut, err := l.next.DoRequest(ctx, prompt, opts)
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Warn("llm request failed",
			zap.String("model", l.next.GetModel()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return response, tokensIn, tokensOut, err
	}

	l.logger.Debug("llm request complete",
		zap.String("model", l.next.GetModel()),
		zap.Duration("elapsed", elapsed),
		zap.Int("tokens_in", tokensIn),
		zap.Int("tokens_out", tokensOut),
	)
	return response, tokensIn, tokensOut, nil
}

func (l *loggingLLM) GetModel() string { return l.next.GetModel() }

func (l *loggingLLM) SetModel(m string) { l.next.SetModel(m) }
