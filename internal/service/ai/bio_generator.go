package ai

import (
	"context"
	"strings"
	"time"

	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/prompt"
	"github.com/kapu/socialforge-go/internal/service/cache"
	"github.com/kapu/socialforge-go/internal/util"
	"go.uber.org/zap"
)

// Bio generation outcomes, also used as metric labels.
const (
	OutcomeGenerated = "generated"
	OutcomeCached    = "cached"
	OutcomeEmpty     = "empty"
	OutcomeFallback  = "fallback"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

type BioStore interface {
	GetBio(ctx context.Context, key string) (string, bool, error)
	SetBio(ctx context.Context, key, text, provider string) error
}

type BioObserver interface {
	ObserveBio(outcome string, elapsed time.Duration)
}

type BioResult struct {
	Text     string
	Outcome  string
	Provider string
}

// BioGenerator is the boundary to the external text service. It never fails:
// errors and timeouts resolve to the fixed fallback text.
type BioGenerator struct {
	generator TextGenerator
	store     BioStore
	observer  BioObserver
	timeout   time.Duration
	logger    *zap.Logger
}

type BioGeneratorConfig struct {
	Timeout  time.Duration
	Store    BioStore
	Observer BioObserver
}

func NewBioGenerator(generator TextGenerator, cfg BioGeneratorConfig, logger *zap.Logger) *BioGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.BioConfig.DefaultTimeout
	}
	return &BioGenerator{
		generator: generator,
		store:     cfg.Store,
		observer:  cfg.Observer,
		timeout:   timeout,
		logger:    logger,
	}
}

func (g *BioGenerator) Generate(ctx context.Context, name, workplace string, tone domain.Tone) string {
	return g.GenerateDetailed(ctx, name, workplace, tone).Text
}

func (g *BioGenerator) GenerateDetailed(ctx context.Context, name, workplace string, tone domain.Tone) (result BioResult) {
	start := time.Now()
	defer func() {
		if g.observer != nil {
			g.observer.ObserveBio(result.Outcome, time.Since(start))
		}
	}()

	if !tone.Valid() {
		tone = domain.ToneProfessional
	}
	name = util.TruncateString(strings.TrimSpace(name), constants.AIInputLimits.MaxNameLength)
	workplace = util.TruncateString(strings.TrimSpace(workplace), constants.AIInputLimits.MaxWorkplaceLength)

	if g.generator == nil {
		return fallbackResult()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	key := cache.BioKey(name, workplace, string(tone))

	text, err := prompt.BuildBio(prompt.BioPromptData{
		Name:      name,
		Workplace: workplace,
		Tone:      string(tone),
		MaxWords:  constants.BioConfig.MaxWords,
	})
	if err != nil {
		g.logger.Error("Failed to render bio prompt", zap.Error(err))
		return fallbackResult()
	}

	preset := PresetBalanced
	if tone != domain.ToneProfessional {
		preset = PresetCreative
	}

	answer, meta, err := g.generator.GenerateText(ctx, text, preset, nil)
	if err != nil {
		g.logger.Error("Bio generation failed", zap.Error(err), zap.String("tone", string(tone)))
		if cached, ok := g.lastGenerated(ctx, key); ok {
			return cached
		}
		return fallbackResult()
	}

	bio := cleanBio(answer)
	if bio == "" {
		return BioResult{Text: constants.BioConfig.EmptyText, Outcome: OutcomeEmpty}
	}

	provider := ""
	if meta != nil {
		provider = meta.Provider
	}
	if g.store != nil {
		if err := g.store.SetBio(ctx, key, bio, provider); err != nil {
			g.logger.Warn("Bio cache store failed", zap.Error(err))
		}
	}

	g.logger.Info("Bio generated",
		zap.String("provider", provider),
		zap.String("tone", string(tone)),
		zap.Int("words", len(strings.Fields(bio))),
	)
	return BioResult{Text: bio, Outcome: OutcomeGenerated, Provider: provider}
}

// lastGenerated returns the most recent bio stored for key. The lookup gets its
// own deadline because ctx may already have expired.
func (g *BioGenerator) lastGenerated(ctx context.Context, key string) (BioResult, bool) {
	if g.store == nil {
		return BioResult{}, false
	}

	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.CacheTTL.LookupTimeout)
	defer cancel()

	cached, ok, err := g.store.GetBio(lookupCtx, key)
	if err != nil {
		g.logger.Warn("Bio cache lookup failed", zap.Error(err))
		return BioResult{}, false
	}
	if !ok || cached == "" {
		return BioResult{}, false
	}
	return BioResult{Text: cached, Outcome: OutcomeCached, Provider: "cache"}, true
}

func fallbackResult() BioResult {
	return BioResult{Text: constants.BioConfig.FallbackText, Outcome: OutcomeFallback}
}

func cleanBio(answer string) string {
	bio := util.StripCodeFence(answer)
	bio = strings.Trim(bio, "\"“”'")
	return util.TruncateString(strings.TrimSpace(bio), 300)
}
