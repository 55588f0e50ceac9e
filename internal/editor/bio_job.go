package editor

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"

	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var errStaleBio = stderrors.New("bio changed while generating")

// BioOutcome describes what happened to one generated bio.
type BioOutcome struct {
	Text    string
	Applied bool
	Profile domain.Profile
}

// Suggestion is one candidate bio for a tone. Suggestions are never written to the record.
type Suggestion struct {
	Tone domain.Tone `json:"tone"`
	Text string      `json:"text"`
}

func (e *Editor) BioState() BioState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bioState
}

// OnBioStateChange registers fn to run after every busy flag transition.
func (e *Editor) OnBioStateChange(fn func(BioState)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// GenerateBio runs one bio job and waits for it. It returns ErrBioInFlight when
// another job is pending; triggers are not queued.
func (e *Editor) GenerateBio(ctx context.Context) (BioOutcome, error) {
	jobCtx, cancel := context.WithCancel(e.ctx)
	stop := context.AfterFunc(ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()

	var out BioOutcome
	done := make(chan struct{})
	err := e.beginBio(func() {
		defer close(done)
		out = e.runBio(jobCtx)
	})
	if err != nil {
		return BioOutcome{}, err
	}
	<-done
	return out, nil
}

// StartGenerateBio starts a bio job in the background and returns immediately.
func (e *Editor) StartGenerateBio() error {
	return e.beginBio(func() {
		e.runBio(e.ctx)
	})
}

// Close cancels pending jobs and waits for them to settle. Results of
// cancelled jobs are discarded, and no job starts after Close.
func (e *Editor) Close() {
	e.mu.Lock()
	e.cancel()
	e.mu.Unlock()
	e.jobs.Wait()
}

// beginBio flips the busy flag and starts job in one critical section, so a
// concurrent Close either sees the job or the job sees the cancelled context.
// notifyMu keeps listeners seeing generating before the job's idle.
func (e *Editor) beginBio(job func()) error {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	if e.bioState == BioGenerating {
		e.mu.Unlock()
		return ErrBioInFlight
	}
	if err := e.ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.bioState = BioGenerating
	listeners := slices.Clone(e.listeners)
	e.jobs.Go(job)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(BioGenerating)
	}
	return nil
}

func (e *Editor) endBio() {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()

	e.mu.Lock()
	e.bioState = BioIdle
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(BioIdle)
	}
}

// runBio always clears the busy flag. The result replaces only the bio field of
// the record current at settle time, and is dropped if the user edited the bio
// while the job was pending.
func (e *Editor) runBio(ctx context.Context) BioOutcome {
	defer e.endBio()

	start := e.store.Get()
	tone := domain.Tone(constants.BioConfig.TriggerTone)

	var text string
	if e.bios == nil {
		text = constants.BioConfig.FallbackText
	} else {
		text = e.bios.Generate(ctx, start.FullName, start.Workplace, tone)
	}

	if ctx.Err() != nil {
		e.logger.Info("Bio job cancelled, result discarded")
		return BioOutcome{Text: text, Profile: e.store.Get()}
	}

	next, err := e.store.Update(func(current domain.Profile) (domain.Profile, error) {
		if current.Bio != start.Bio {
			return current, errStaleBio
		}
		current.Bio = text
		return current, nil
	})
	if err != nil {
		e.logger.Info("Bio result ignored", zap.Error(err))
		return BioOutcome{Text: text, Profile: next}
	}

	if e.observer != nil {
		e.observer.ObserveEdit(string(domain.FieldBio))
	}
	return BioOutcome{Text: text, Applied: true, Profile: next}
}

// Suggestions generates one bio per tone for the current name and workplace.
func (e *Editor) Suggestions(ctx context.Context) []Suggestion {
	record := e.store.Get()
	results := make([]Suggestion, len(domain.AllTones))
	if e.bios == nil {
		for idx, tone := range domain.AllTones {
			results[idx] = Suggestion{Tone: tone, Text: constants.BioConfig.FallbackText}
		}
		return results
	}

	p := pool.New().WithMaxGoroutines(len(domain.AllTones))
	resultsMu := sync.Mutex{}

	for idx, tone := range domain.AllTones {
		p.Go(func() {
			text := e.bios.Generate(ctx, record.FullName, record.Workplace, tone)
			resultsMu.Lock()
			results[idx] = Suggestion{Tone: tone, Text: text}
			resultsMu.Unlock()
		})
	}

	p.Wait()
	return results
}
