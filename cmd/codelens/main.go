// Command codelens verifies LLM-generated explanations for every
// function in a source file: it drafts an explanation, critiques it,
// revises until the critic passes, and scores fidelity by regenerating
// the code from the explanation.
//
// Usage:
//
//	codelens -file Service.java -language java [-config pipeline.yaml]
//
// The LLM provider is selected from the writer model in the config
// ("provider/model") and authenticated via the provider's conventional
// environment variable (ANTHROPIC_API_KEY, OPENAI_API_KEY, or
// GOOGLE_API_KEY).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ahrav/codelens/infrastructure/llm"
	"github.com/ahrav/codelens/infrastructure/metrics"
	"github.com/ahrav/codelens/infrastructure/treesitter"
	"github.com/ahrav/codelens/internal/agents"
	"github.com/ahrav/codelens/internal/application"
	"github.com/ahrav/codelens/internal/critic"
	"github.com/ahrav/codelens/internal/regen"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "codelens:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		filePath   = flag.String("file", "", "source file to verify")
		language   = flag.String("language", "java", "source language (java or python)")
		configPath = flag.String("config", "", "pipeline config YAML (optional)")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *filePath == "" {
		return fmt.Errorf("-file is required")
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	config := application.DefaultPipelineConfig()
	if *configPath != "" {
		config, err = application.LoadPipelineConfig(*configPath)
		if err != nil {
			return err
		}
	}
	config.Orchestrator.Language = *language

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := buildLLMClient(config.Writer.Model, logger)
	if err != nil {
		return err
	}

	collector := metrics.NewPrometheusMetrics(nil)
	parsers := treesitter.NewProvider()

	writer, err := agents.NewTemplateWriter(client, logger, config.Writer.Temperature, config.Writer.MaxTokens)
	if err != nil {
		return err
	}
	compositional, err := critic.NewCompositionalCritic(client, nil, nil, config.Critic)
	if err != nil {
		return err
	}
	validator, err := regen.NewValidator(client, parsers, config.Regeneration)
	if err != nil {
		return err
	}
	orchestrator, err := application.NewVerificationOrchestrator(writer, compositional, validator, logger, config.Orchestrator)
	if err != nil {
		return err
	}
	runner, err := application.NewBatchRunner(orchestrator, collector, logger, config.Concurrency)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	functions, err := treesitter.ExtractFunctions(ctx, parsers, *filePath, *language, src)
	if err != nil {
		return err
	}
	if len(functions) == 0 {
		return fmt.Errorf("no functions found in %s", *filePath)
	}

	results, err := runner.Run(ctx, functions, nil)
	if err != nil {
		return err
	}

	finalizer := agents.NewFinalizer(client, logger)
	for _, r := range results {
		fmt.Printf("== %s (%s:%d)\n", r.Function.QualifiedName(), r.Function.FilePath, r.Function.StartLine)
		fmt.Printf("   status=%s confidence=%d iterations=%d\n",
			r.Result.StatusString(), r.Result.Confidence, r.Result.Iterations)
		if r.Result.FidelityScore != nil {
			fmt.Printf("   fidelity=%.3f (%s)\n", *r.Result.FidelityScore, r.Result.FidelityDetails)
		}
		if r.Result.Verified {
			fmt.Println(indent(finalizer.Finalize(ctx, r.Result.Explanation), "   "))
		} else if r.Result.Critique != nil {
			for _, issue := range r.Result.Critique.Issues {
				fmt.Println("   issue:", issue)
			}
		}
		fmt.Println()
	}
	return nil
}

// buildLLMClient parses a "provider/model" string and assembles the
// client with the standard middleware stack.
func buildLLMClient(modelSpec string, logger *zap.Logger) (*llm.Client, error) {
	provider, model, ok := strings.Cut(modelSpec, "/")
	if !ok {
		return nil, fmt.Errorf("writer model must be provider/model, got %q", modelSpec)
	}

	apiKey := os.Getenv(apiKeyEnvVar(provider))
	if apiKey == "" {
		return nil, fmt.Errorf("missing %s", apiKeyEnvVar(provider))
	}

	return llm.NewClient(provider, llm.ClientConfig{
		APIKey:  apiKey,
		Model:   model,
		Timeout: 60 * time.Second,
		Middleware: []llm.Middleware{
			llm.LoggingMiddleware(logger),
			llm.RetryMiddleware(3, time.Second, 30*time.Second),
			llm.RateLimitMiddleware(rate.Limit(5), 10),
		},
	})
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		return strings.ToUpper(provider) + "_API_KEY"
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
