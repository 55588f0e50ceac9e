package server

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/editor"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/pkg/errors"
	"go.uber.org/zap"
)

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type bioRequest struct {
	Tone      string  `json:"tone"`
	Name      *string `json:"name,omitempty"`
	Workplace *string `json:"workplace,omitempty"`
}

type bioResponse struct {
	Tone domain.Tone `json:"tone"`
	Bio  string      `json:"bio"`
}

type bioJobResponse struct {
	Bio     string         `json:"bio"`
	Applied bool           `json:"applied"`
	Profile domain.Profile `json:"profile"`
}

type stateResponse struct {
	View     profile.View    `json:"view"`
	Version  uint64          `json:"version"`
	BioState editor.BioState `json:"bioState"`
	Busy     bool            `json:"busy"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.deps.Store.Get())
}

// handlePutProfile replaces the whole record. Omitted fields take their zero
// value, so clients send the full record.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		s.writeError(w, r, errors.NewValidationError("invalid JSON body", "body", nil).WithCause(err))
		return
	}
	if err := s.deps.Store.Set(p); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, s.deps.Store.Get())
}

func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, errors.NewValidationError("invalid JSON body", "body", nil).WithCause(err))
		return
	}
	edit, err := domain.ParseEdit(req.Field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	next, err := s.deps.Editor.Apply(edit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, next)
}

// handleAPIGenerateBio runs the Generate Bio job and waits for it.
func (s *Server) handleAPIGenerateBio(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Editor.GenerateBio(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, bioJobResponse{Bio: out.Text, Applied: out.Applied, Profile: out.Profile})
}

// handleBio generates a bio without touching the record. Name and workplace
// default to the current record.
func (s *Server) handleBio(w http.ResponseWriter, r *http.Request) {
	var req bioRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			s.writeError(w, r, errors.NewValidationError("invalid JSON body", "body", nil).WithCause(err))
			return
		}
	}
	tone, err := domain.ParseTone(strings.TrimSpace(req.Tone))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	current := s.deps.Store.Get()
	name, workplace := current.FullName, current.Workplace
	if req.Name != nil {
		name = *req.Name
	}
	if req.Workplace != nil {
		workplace = *req.Workplace
	}

	render.JSON(w, r, bioResponse{Tone: tone, Bio: s.deps.Bios.Generate(r.Context(), name, workplace, tone)})
}

func (s *Server) handleBioSuggestions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.deps.Editor.Suggestions(r.Context()))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.deps.Editor.BioState()
	render.JSON(w, r, stateResponse{
		View:     s.deps.Store.View(),
		Version:  s.deps.Store.Version(),
		BioState: state,
		Busy:     state == editor.BioGenerating,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"liveBio": s.deps.LiveBio,
		"clients": s.hub.Clients(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusCode(err)
	resp := errorResponse{Error: err.Error(), Code: errors.CodeAppError}

	var verr *errors.ValidationError
	var uerr *errors.UploadError
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &verr):
		resp.Code = verr.Code
		resp.Field = verr.Field
		resp.Error = verr.Message
	case stderrors.As(err, &uerr):
		resp.Code = uerr.Code
		resp.Error = uerr.Message
	case stderrors.As(err, &appErr):
		resp.Code = appErr.Code
		resp.Error = appErr.Message
	}

	if status >= 500 {
		s.logger.Error("API request failed", zap.String("path", r.URL.Path), zap.Error(err))
		resp.Error = http.StatusText(status)
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
