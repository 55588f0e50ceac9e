package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ModelPreset, _ *GenerateOptions) (ProviderResult, error) {
	f.calls++
	if f.err != nil {
		return ProviderResult{}, f.err
	}
	return ProviderResult{Text: f.text, Model: f.name + "-model"}, nil
}

func (f *fakeProvider) Ping(context.Context) bool { return f.err == nil }

func TestGenerateTextUsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", text: "hello"}
	fallback := &fakeProvider{name: "OpenAI", text: "other"}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	text, meta, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" || meta.Provider != "Gemini" || meta.UsedFallback {
		t.Fatalf("unexpected result %q %+v", text, meta)
	}
	if fallback.calls != 0 {
		t.Fatalf("expected fallback untouched")
	}
}

func TestGenerateTextFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: errors.New(`{"code":500}`)}
	fallback := &fakeProvider{name: "OpenAI", text: "from openai"}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	text, meta, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from openai" || !meta.UsedFallback {
		t.Fatalf("expected fallback answer, got %q %+v", text, meta)
	}
}

func TestGenerateTextWithoutProviders(t *testing.T) {
	mm := NewModelManagerWithProviders(nil, nil, zap.NewNop())
	if mm.Available() {
		t.Fatalf("expected no provider")
	}
	if _, _, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestFallbackPromotedWhenPrimaryMissing(t *testing.T) {
	fallback := &fakeProvider{name: "OpenAI", text: "ok"}
	mm := NewModelManagerWithProviders(nil, fallback, zap.NewNop())
	if _, meta, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil); err != nil || meta.Provider != "OpenAI" {
		t.Fatalf("expected OpenAI to serve as primary, got %+v %v", meta, err)
	}
}

func TestCircuitOpensAfterServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: errors.New("503 Service Unavailable")}
	mm := NewModelManagerWithProviders(primary, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, _, _ = mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	}

	if _, _, err := mm.GenerateText(context.Background(), "p", PresetBalanced, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if primary.calls != 3 {
		t.Fatalf("expected provider not to be called while open, got %d calls", primary.calls)
	}
}

func TestClientErrorsDoNotTripCircuit(t *testing.T) {
	primary := &fakeProvider{name: "Gemini", err: errors.New(`{"code":400,"message":"bad request"}`)}
	mm := NewModelManagerWithProviders(primary, nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _, _ = mm.GenerateText(context.Background(), "p", PresetBalanced, nil)
	}
	if primary.calls != 5 {
		t.Fatalf("expected every call to reach the provider, got %d", primary.calls)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err         error
		service     bool
		rateLimited bool
	}{
		{errors.New("429 Too Many Requests"), true, true},
		{errors.New(`{"code":429}`), true, true},
		{errors.New(`{"code": 502}`), true, false},
		{context.DeadlineExceeded, true, false},
		{errors.New(`{"code":404}`), false, false},
		{nil, false, false},
	}
	for _, tc := range cases {
		if got := isServiceFailure(tc.err); got != tc.service {
			t.Fatalf("isServiceFailure(%v) = %v", tc.err, got)
		}
		if got := isRateLimitError(tc.err); got != tc.rateLimited {
			t.Fatalf("isRateLimitError(%v) = %v", tc.err, got)
		}
	}
}
