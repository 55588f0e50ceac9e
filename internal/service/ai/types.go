package ai

import "context"

// ModelPreset represents the sampling preset used for a request
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative"
	PresetPrecise  ModelPreset = "precise"
	PresetBalanced ModelPreset = "balanced"
)

// ModelConfig holds Gemini sampling configuration
type ModelConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int
	MaxOutputTokens  int
	ResponseMimeType string
}

// OpenAIConfig holds OpenAI-specific sampling configuration
type OpenAIConfig struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// GenerateMetadata describes which provider answered
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

type GenerateOptions struct {
	Model     string
	Overrides *ModelConfig
}

// TextProvider is one upstream text generation backend.
type TextProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

type ProviderResult struct {
	Text  string
	Model string
}

// GetPresetConfig returns the configuration for a preset. Bios are short, so
// output budgets are small compared with structured generation.
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{
			Temperature:     0.9,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 256,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 128,
		}
	case PresetBalanced:
		return ModelConfig{
			Temperature:     0.6,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 256,
		}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

func GetOpenAIPresetConfig(preset ModelPreset) OpenAIConfig {
	switch preset {
	case PresetCreative:
		return OpenAIConfig{Temperature: 0.9, MaxTokens: 512, TopP: 0.95}
	case PresetPrecise:
		return OpenAIConfig{Temperature: 0.1, MaxTokens: 256, TopP: 0.9}
	case PresetBalanced:
		return OpenAIConfig{Temperature: 0.6, MaxTokens: 512, TopP: 0.95}
	default:
		return GetOpenAIPresetConfig(PresetBalanced)
	}
}
