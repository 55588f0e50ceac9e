package editor

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/pkg/errors"
	"go.uber.org/zap"
)

const fallbackBio = "Creative enthusiast | Tech lover | Dreamer"

// stubBios returns text, or blocks until release is closed when release is set.
type stubBios struct {
	mu      sync.Mutex
	text    string
	release chan struct{}
	started chan struct{}
	calls   []domain.Tone
}

func (s *stubBios) Generate(ctx context.Context, name, workplace string, tone domain.Tone) string {
	s.mu.Lock()
	s.calls = append(s.calls, tone)
	s.mu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return fallbackBio
		}
	}
	return s.text + " " + string(tone)
}

func (s *stubBios) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubImages struct {
	ref string
	err error
}

func (s *stubImages) Put(_, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.ReadAll(r)
	return s.ref, nil
}

type countingObserver struct {
	mu      sync.Mutex
	edits   map[string]int
	uploads map[string]int
}

func (c *countingObserver) ObserveEdit(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edits == nil {
		c.edits = map[string]int{}
	}
	c.edits[field]++
}

func (c *countingObserver) ObserveUpload(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uploads == nil {
		c.uploads = map[string]int{}
	}
	c.uploads[result]++
}

func newEditor(t *testing.T, cfg Config) (*Editor, *profile.Store) {
	t.Helper()
	store := profile.NewStore(domain.DefaultProfile(), zap.NewNop())
	ed := New(store, cfg, zap.NewNop())
	t.Cleanup(ed.Close)
	return ed, store
}

func TestSetTextReplacesOneField(t *testing.T) {
	ed, store := newEditor(t, Config{})
	before := store.Get()

	after, err := ed.SetText(domain.FieldFullName, "Layla")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := before
	want.FullName = "Layla"
	if after != want || store.Get() != want {
		t.Fatalf("expected only fullName to change, got %+v", after)
	}
}

func TestSetTextAllowsEmpty(t *testing.T) {
	ed, store := newEditor(t, Config{})
	if _, err := ed.SetText(domain.FieldWorkplace, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Get().Workplace != "" {
		t.Fatalf("expected empty workplace")
	}
}

func TestSetTextRejectsNonTextField(t *testing.T) {
	ed, store := newEditor(t, Config{})
	before := store.Get()

	_, err := ed.SetText(domain.FieldFriendsCount, "12")
	var verr *errors.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Get() != before {
		t.Fatalf("record must not change on rejected edit")
	}
}

func TestSetCountCoercesGarbageToZero(t *testing.T) {
	ed, store := newEditor(t, Config{})

	if _, err := ed.SetCount(domain.FieldFriendsCount, "lots"); err != nil {
		t.Fatalf("numeric coercion must not error: %v", err)
	}
	if got := store.Get().FriendsCount; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}

	_, _ = ed.SetCount(domain.FieldFollowersCount, "-40")
	if got := store.Get().FollowersCount; got != 0 {
		t.Fatalf("expected negative input to clamp to 0, got %d", got)
	}

	_, _ = ed.SetCount(domain.FieldFollowersCount, "2500000")
	if got := store.Get().FollowersCount; got != 2500000 {
		t.Fatalf("expected 2500000, got %d", got)
	}
}

func TestTogglesRoundTrip(t *testing.T) {
	ed, store := newEditor(t, Config{})
	start := store.Get()

	_, _ = ed.ToggleVerified()
	if store.Get().IsVerified {
		t.Fatalf("expected badge off")
	}
	_, _ = ed.ToggleVerified()

	_, _ = ed.ToggleLanguage()
	if store.Get().Language != domain.LanguageArabic {
		t.Fatalf("expected ar")
	}
	_, _ = ed.ToggleLanguage()

	if store.Get() != start {
		t.Fatalf("expected round trip to restore the record")
	}
}

func TestAttachImageStoresRef(t *testing.T) {
	obs := &countingObserver{}
	ed, store := newEditor(t, Config{Images: &stubImages{ref: "/blobs/01ABC"}, Observer: obs})

	if _, err := ed.AttachImage(domain.FieldCoverPhotoURL, "cover.png", "image/png", strings.NewReader("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Get().CoverPhotoURL; got != "/blobs/01ABC" {
		t.Fatalf("expected blob ref, got %q", got)
	}
	if obs.uploads["stored"] != 1 || obs.edits[string(domain.FieldCoverPhotoURL)] != 1 {
		t.Fatalf("unexpected observations %+v %+v", obs.uploads, obs.edits)
	}
}

func TestAttachImageRejectsNonImageField(t *testing.T) {
	ed, _ := newEditor(t, Config{Images: &stubImages{ref: "/blobs/x"}})
	if _, err := ed.AttachImage(domain.FieldBio, "a.png", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for non-image field")
	}
}

func TestAttachImageKeepsRecordOnFailure(t *testing.T) {
	ed, store := newEditor(t, Config{Images: &stubImages{err: errors.NewUploadError("too big", "a.png", 413, nil)}})
	before := store.Get()
	if _, err := ed.AttachImage(domain.FieldProfilePhotoURL, "a.png", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected upload error")
	}
	if store.Get() != before {
		t.Fatalf("record must not change")
	}
}

func TestGenerateBioReplacesBio(t *testing.T) {
	bios := &stubBios{text: "Pixel painter"}
	ed, store := newEditor(t, Config{Bios: bios})
	before := store.Get()

	out, err := ed.GenerateBio(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Applied || store.Get().Bio != "Pixel painter professional" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if ed.BioState() != BioIdle {
		t.Fatalf("expected idle after settle")
	}

	want := before
	want.Bio = "Pixel painter professional"
	if store.Get() != want {
		t.Fatalf("expected only bio to change")
	}
	if len(bios.calls) != 1 || bios.calls[0] != domain.ToneProfessional {
		t.Fatalf("expected a single professional call, got %v", bios.calls)
	}
}

func TestGenerateBioFallbackSettlesIdle(t *testing.T) {
	ed, store := newEditor(t, Config{})

	if _, err := ed.GenerateBio(context.Background()); err != nil {
		t.Fatalf("generation must not surface an error: %v", err)
	}
	if store.Get().Bio != fallbackBio {
		t.Fatalf("expected fallback bio, got %q", store.Get().Bio)
	}
	if ed.BioState() != BioIdle {
		t.Fatalf("expected idle")
	}
}

func TestSecondTriggerWhileGeneratingIsRejected(t *testing.T) {
	bios := &stubBios{text: "Done", release: make(chan struct{}), started: make(chan struct{}, 1)}
	ed, store := newEditor(t, Config{Bios: bios})

	var states []BioState
	var statesMu sync.Mutex
	ed.OnBioStateChange(func(s BioState) {
		statesMu.Lock()
		states = append(states, s)
		statesMu.Unlock()
	})

	if err := ed.StartGenerateBio(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-bios.started

	if ed.BioState() != BioGenerating || !ed.FormState().Busy {
		t.Fatalf("expected generating state")
	}
	if got := ed.FormState().GenerateCaption; got != "Magic working..." {
		t.Fatalf("unexpected busy caption %q", got)
	}
	if err := ed.StartGenerateBio(); !stderrors.Is(err, ErrBioInFlight) {
		t.Fatalf("expected ErrBioInFlight, got %v", err)
	}
	if _, err := ed.GenerateBio(context.Background()); !stderrors.Is(err, ErrBioInFlight) {
		t.Fatalf("expected ErrBioInFlight, got %v", err)
	}

	close(bios.release)
	waitFor(t, func() bool {
		statesMu.Lock()
		defer statesMu.Unlock()
		return len(states) == 2
	})

	if store.Get().Bio != "Done professional" {
		t.Fatalf("unexpected bio %q", store.Get().Bio)
	}
	if len(bios.calls) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", len(bios.calls))
	}

	statesMu.Lock()
	defer statesMu.Unlock()
	if len(states) != 2 || states[0] != BioGenerating || states[1] != BioIdle {
		t.Fatalf("unexpected transitions %v", states)
	}
}

func TestLateResultIgnoredWhenBioEdited(t *testing.T) {
	bios := &stubBios{text: "Generated", release: make(chan struct{}), started: make(chan struct{}, 1)}
	ed, store := newEditor(t, Config{Bios: bios})

	_ = ed.StartGenerateBio()
	<-bios.started

	_, _ = ed.SetText(domain.FieldBio, "typed by hand")
	_, _ = ed.SetText(domain.FieldFullName, "Layla")
	close(bios.release)
	waitFor(t, func() bool { return ed.BioState() == BioIdle })

	got := store.Get()
	if got.Bio != "typed by hand" || got.FullName != "Layla" {
		t.Fatalf("expected hand edits to survive, got %+v", got)
	}
}

func TestResultAppliedToCurrentRecord(t *testing.T) {
	bios := &stubBios{text: "Generated", release: make(chan struct{}), started: make(chan struct{}, 1)}
	ed, store := newEditor(t, Config{Bios: bios})

	_ = ed.StartGenerateBio()
	<-bios.started

	_, _ = ed.SetText(domain.FieldLocation, "Alexandria")
	close(bios.release)
	waitFor(t, func() bool { return ed.BioState() == BioIdle })

	got := store.Get()
	if got.Bio != "Generated professional" || got.Location != "Alexandria" {
		t.Fatalf("expected both edits, got %+v", got)
	}
}

func TestCloseCancelsPendingJob(t *testing.T) {
	bios := &stubBios{text: "Generated", release: make(chan struct{}), started: make(chan struct{}, 1)}
	store := profile.NewStore(domain.DefaultProfile(), zap.NewNop())
	ed := New(store, Config{Bios: bios}, zap.NewNop())
	before := store.Get()

	_ = ed.StartGenerateBio()
	<-bios.started

	done := make(chan struct{})
	go func() {
		ed.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return")
	}
	if store.Get() != before {
		t.Fatalf("cancelled job must not write")
	}
	if err := ed.StartGenerateBio(); err == nil {
		t.Fatalf("expected trigger after Close to fail")
	}
}

func TestNoJobStartsAfterClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		bios := &stubBios{text: "Generated"}
		ed := New(profile.NewStore(domain.DefaultProfile(), zap.NewNop()), Config{Bios: bios}, zap.NewNop())

		var triggers sync.WaitGroup
		triggers.Add(1)
		go func() {
			defer triggers.Done()
			for j := 0; j < 20; j++ {
				_ = ed.StartGenerateBio()
			}
		}()

		ed.Close()
		settled := bios.callCount()
		triggers.Wait()
		time.Sleep(time.Millisecond)

		if got := bios.callCount(); got != settled {
			t.Fatalf("job ran after Close returned: %d calls, %d at Close", got, settled)
		}
		if ed.BioState() != BioIdle {
			t.Fatalf("expected idle after Close")
		}
	}
}

func TestSuggestionsCoverEveryTone(t *testing.T) {
	bios := &stubBios{text: "Bio"}
	ed, store := newEditor(t, Config{Bios: bios})
	before := store.Get()

	got := ed.Suggestions(context.Background())
	if len(got) != len(domain.AllTones) {
		t.Fatalf("expected %d suggestions, got %d", len(domain.AllTones), len(got))
	}
	for i, s := range got {
		if s.Tone != domain.AllTones[i] || s.Text != "Bio "+string(s.Tone) {
			t.Fatalf("unexpected suggestion %d: %+v", i, s)
		}
	}
	if store.Get() != before {
		t.Fatalf("suggestions must not modify the record")
	}
}

func TestFormStateIdle(t *testing.T) {
	ed, _ := newEditor(t, Config{})
	fs := ed.FormState()
	if fs.Busy || fs.GenerateCaption != "Auto-Generate" {
		t.Fatalf("unexpected idle form %+v", fs)
	}
	if fs.FriendsCount != "1240" || fs.ArabicLayout {
		t.Fatalf("unexpected form values %+v", fs)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
