// Package editor implements the edit panel: one operation per form control,
// each replacing exactly one field of the live record.
package editor

import (
	"context"
	"io"
	"sync"

	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// BioSource produces bio text. Implementations never fail; they return a
// fallback string instead.
type BioSource interface {
	Generate(ctx context.Context, name, workplace string, tone domain.Tone) string
}

type ImageStore interface {
	Put(filename, contentType string, r io.Reader) (string, error)
}

type Observer interface {
	ObserveEdit(field string)
	ObserveUpload(result string)
}

// BioState is the busy flag of the Generate Bio control.
type BioState string

const (
	BioIdle       BioState = "idle"
	BioGenerating BioState = "generating"
)

var ErrBioInFlight = errors.NewConflictError("bio generation already in progress", nil)

type Editor struct {
	store    *profile.Store
	bios     BioSource
	images   ImageStore
	observer Observer
	logger   *zap.Logger

	mu        sync.Mutex
	notifyMu  sync.Mutex
	bioState  BioState
	listeners []func(BioState)

	ctx    context.Context
	cancel context.CancelFunc
	jobs   conc.WaitGroup
}

type Config struct {
	Bios     BioSource
	Images   ImageStore
	Observer Observer
}

func New(store *profile.Store, cfg Config, logger *zap.Logger) *Editor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Editor{
		store:    store,
		bios:     cfg.Bios,
		images:   cfg.Images,
		observer: cfg.Observer,
		logger:   logger,
		bioState: BioIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (e *Editor) Record() domain.Profile {
	return e.store.Get()
}

// Apply runs one typed edit against the current record and stores the result.
func (e *Editor) Apply(edit domain.Edit) (domain.Profile, error) {
	next, err := e.store.Update(edit.Apply)
	if err != nil {
		e.logger.Debug("Edit rejected",
			zap.String("field", string(edit.Target())),
			zap.Error(err),
		)
		return next, err
	}
	if e.observer != nil {
		e.observer.ObserveEdit(string(edit.Target()))
	}
	return next, nil
}

// SetText stores value verbatim; empty strings are allowed.
func (e *Editor) SetText(field domain.Field, value string) (domain.Profile, error) {
	return e.Apply(domain.TextEdit{Field: field, Value: value})
}

// SetCount coerces raw input to a non-negative integer, 0 when unparseable.
func (e *Editor) SetCount(field domain.Field, raw string) (domain.Profile, error) {
	return e.Apply(domain.CountEdit{Field: field, Raw: raw})
}

func (e *Editor) ToggleVerified() (domain.Profile, error) {
	return e.Apply(domain.ToggleVerified{})
}

func (e *Editor) ToggleLanguage() (domain.Profile, error) {
	return e.Apply(domain.ToggleLanguage{})
}

func (e *Editor) SetImageURL(field domain.Field, url string) (domain.Profile, error) {
	return e.Apply(domain.ImageEdit{Field: field, Ref: url})
}

// AttachImage stores a locally selected file and points the image field at it.
func (e *Editor) AttachImage(field domain.Field, filename, contentType string, r io.Reader) (domain.Profile, error) {
	if field.Kind() != domain.KindImage {
		return e.store.Get(), errors.NewValidationError("field does not hold an image", string(field), filename)
	}
	if e.images == nil {
		return e.store.Get(), errors.NewUploadError("local image selection is not available", filename, 503, nil)
	}

	ref, err := e.images.Put(filename, contentType, r)
	if err != nil {
		e.observeUpload("rejected")
		e.logger.Warn("Image rejected", zap.String("field", string(field)), zap.Error(err))
		return e.store.Get(), err
	}
	e.observeUpload("stored")

	return e.SetImageURL(field, ref)
}

func (e *Editor) observeUpload(result string) {
	if e.observer != nil {
		e.observer.ObserveUpload(result)
	}
}
