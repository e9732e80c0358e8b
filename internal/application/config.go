package application

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/codelens/internal/critic"
	"github.com/ahrav/codelens/internal/regen"
)

// PipelineConfig is the top-level configuration for a verification
// pipeline, loaded from YAML. It aggregates the per-component
// configurations so one file describes a full run.
type PipelineConfig struct {
	// Writer configures the explanation drafting agent.
	Writer WriterSettings `yaml:"writer"`

	// Critic configures the compositional critique stage.
	Critic critic.CriticConfig `yaml:"critic"`

	// Regeneration configures the fidelity validation stage.
	Regeneration regen.ValidatorConfig `yaml:"regeneration"`

	// Orchestrator configures the verification loop.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Concurrency bounds parallel verification in batch runs.
	Concurrency int `yaml:"concurrency" validate:"min=0,max=64"`
}

// WriterSettings selects the model and sampling parameters for the
// explanation writer.
type WriterSettings struct {
	// Model names the LLM used for drafting, in "provider/model" form.
	Model string `yaml:"model" validate:"required"`

	// Temperature controls sampling randomness for drafts. Drafting
	// benefits from some variation between revision rounds.
	Temperature float64 `yaml:"temperature" validate:"min=0.0,max=1.0"`

	// MaxTokens limits the length of a drafted explanation.
	MaxTokens int `yaml:"max_tokens" validate:"required,min=50,max=4000"`
}

// DefaultPipelineConfig returns a PipelineConfig with every component
// at its standard settings.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Writer: WriterSettings{
			Model:       "anthropic/claude-3-5-haiku-latest",
			Temperature: 0.3,
			MaxTokens:   512,
		},
		Critic:       critic.DefaultCriticConfig(),
		Regeneration: regen.DefaultValidatorConfig(),
		Orchestrator: DefaultOrchestratorConfig(),
		Concurrency:  DefaultBatchConcurrency,
	}
}

// LoadPipelineConfig reads and validates a pipeline configuration from
// a YAML file. Fields absent from the file keep their default values.
func LoadPipelineConfig(path string) (PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("read pipeline config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return PipelineConfig{}, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return PipelineConfig{}, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return config, nil
}

// Validate checks the configuration against its declared constraints.
func (c PipelineConfig) Validate() error {
	return validate.Struct(c)
}
