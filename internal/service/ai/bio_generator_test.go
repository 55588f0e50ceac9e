package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/service/cache"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	text    string
	err     error
	block   bool
	prompts []string
	presets []ModelPreset
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, preset ModelPreset, _ *GenerateOptions) (string, *GenerateMetadata, error) {
	f.prompts = append(f.prompts, prompt)
	f.presets = append(f.presets, preset)
	if f.block {
		<-ctx.Done()
		return "", nil, ctx.Err()
	}
	if f.err != nil {
		return "", nil, f.err
	}
	return f.text, &GenerateMetadata{Provider: "Gemini", Model: "test"}, nil
}

type fakeStore struct {
	values map[string]string
	getErr error
	sets   int
}

func (f *fakeStore) GetBio(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) SetBio(_ context.Context, key, text, _ string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = text
	f.sets++
	return nil
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveBio(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestGenerateReturnsTrimmedText(t *testing.T) {
	gen := &fakeGenerator{text: "  \"Designer by day ✨ coffee by night\"\n"}
	bg := NewBioGenerator(gen, BioGeneratorConfig{}, zap.NewNop())

	got := bg.Generate(context.Background(), "Samir Al-Masri", "Freelance Designer", domain.ToneProfessional)
	if got != "Designer by day ✨ coffee by night" {
		t.Fatalf("unexpected bio %q", got)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "named Samir Al-Masri who works as Freelance Designer") {
		t.Fatalf("unexpected prompt %v", gen.prompts)
	}
	if gen.presets[0] != PresetBalanced {
		t.Fatalf("expected balanced preset for professional tone, got %s", gen.presets[0])
	}
}

func TestGenerateFailureYieldsFallback(t *testing.T) {
	obs := &recordingObserver{}
	bg := NewBioGenerator(&fakeGenerator{err: errors.New("503 Service Unavailable")}, BioGeneratorConfig{Observer: obs}, zap.NewNop())

	got := bg.Generate(context.Background(), "Layla", "", domain.ToneFunny)
	if got != "Creative enthusiast | Tech lover | Dreamer" {
		t.Fatalf("expected fallback text, got %q", got)
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0] != OutcomeFallback {
		t.Fatalf("expected fallback outcome, got %v", obs.outcomes)
	}
}

func TestGenerateTimeoutYieldsFallback(t *testing.T) {
	bg := NewBioGenerator(&fakeGenerator{block: true}, BioGeneratorConfig{Timeout: 20 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	got := bg.Generate(context.Background(), "Layla", "Studio", domain.ToneProfessional)
	if got != "Creative enthusiast | Tech lover | Dreamer" {
		t.Fatalf("expected fallback on timeout, got %q", got)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("expected timeout to bound the call")
	}
}

func TestGenerateEmptyAnswer(t *testing.T) {
	bg := NewBioGenerator(&fakeGenerator{text: "   "}, BioGeneratorConfig{}, zap.NewNop())
	if got := bg.Generate(context.Background(), "Layla", "Studio", domain.ToneProfessional); got != "Could not generate bio." {
		t.Fatalf("unexpected text for empty answer %q", got)
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	bg := NewBioGenerator(nil, BioGeneratorConfig{}, zap.NewNop())
	res := bg.GenerateDetailed(context.Background(), "Layla", "Studio", domain.ToneProfessional)
	if res.Outcome != OutcomeFallback || res.Text != "Creative enthusiast | Tech lover | Dreamer" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGenerateCallsProviderOnEveryRequest(t *testing.T) {
	gen := &fakeGenerator{text: "first bio"}
	store := &fakeStore{}
	bg := NewBioGenerator(gen, BioGeneratorConfig{Store: store}, zap.NewNop())

	first := bg.GenerateDetailed(context.Background(), "Layla", "Studio", domain.ToneProfessional)
	gen.text = "second bio"
	second := bg.GenerateDetailed(context.Background(), "Layla", "Studio", domain.ToneProfessional)

	if first.Text != "first bio" || second.Text != "second bio" {
		t.Fatalf("expected a fresh bio per request, got %q then %q", first.Text, second.Text)
	}
	if second.Outcome != OutcomeGenerated || len(gen.prompts) != 2 {
		t.Fatalf("expected two upstream calls, got %d (%s)", len(gen.prompts), second.Outcome)
	}
	if store.sets != 2 || store.values[cacheKey("Layla", "Studio", domain.ToneProfessional)] != "second bio" {
		t.Fatalf("expected latest bio to overwrite the stored one, got %v", store.values)
	}
}

func TestGenerateFallsBackToLastGeneratedBio(t *testing.T) {
	gen := &fakeGenerator{text: "Fresh bio"}
	store := &fakeStore{}
	bg := NewBioGenerator(gen, BioGeneratorConfig{Store: store}, zap.NewNop())

	_ = bg.Generate(context.Background(), "Layla", "Studio", domain.TonePoetic)

	gen.err = errors.New("503 unavailable")
	res := bg.GenerateDetailed(context.Background(), "layla", "studio", domain.TonePoetic)
	if res.Outcome != OutcomeCached || res.Text != "Fresh bio" {
		t.Fatalf("expected stored bio when the provider fails, got %+v", res)
	}

	res = bg.GenerateDetailed(context.Background(), "Omar", "Studio", domain.TonePoetic)
	if res.Outcome != OutcomeFallback {
		t.Fatalf("expected fixed fallback without a stored bio, got %+v", res)
	}
}

func TestGenerateFallsBackAfterTimeoutWithStoredBio(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{text: "Stored bio"}
	bg := NewBioGenerator(gen, BioGeneratorConfig{Store: store, Timeout: 10 * time.Millisecond}, zap.NewNop())
	_ = bg.Generate(context.Background(), "Layla", "Studio", domain.ToneFunny)

	gen.block = true
	if got := bg.Generate(context.Background(), "Layla", "Studio", domain.ToneFunny); got != "Stored bio" {
		t.Fatalf("expected stored bio after timeout, got %q", got)
	}
}

func cacheKey(name, workplace string, tone domain.Tone) string {
	return cache.BioKey(name, workplace, string(tone))
}

func TestGenerateIgnoresCacheErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	bg := NewBioGenerator(gen, BioGeneratorConfig{Store: &fakeStore{getErr: errors.New("redis down")}}, zap.NewNop())

	if got := bg.Generate(context.Background(), "Layla", "Studio", domain.ToneProfessional); got != "Creative enthusiast | Tech lover | Dreamer" {
		t.Fatalf("expected fixed fallback when the cache also fails, got %q", got)
	}
}

func TestGenerateDoesNotCacheFallback(t *testing.T) {
	store := &fakeStore{}
	bg := NewBioGenerator(&fakeGenerator{err: errors.New("boom")}, BioGeneratorConfig{Store: store}, zap.NewNop())
	_ = bg.Generate(context.Background(), "Layla", "Studio", domain.ToneProfessional)
	if store.sets != 0 {
		t.Fatalf("expected fallback text not to be cached")
	}
}
