package server

import (
	"bytes"
	stderrors "errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/internal/domain"
	"github.com/kapu/socialforge-go/internal/editor"
	"github.com/kapu/socialforge-go/internal/preview"
	"github.com/kapu/socialforge-go/internal/profile"
	"github.com/kapu/socialforge-go/pkg/errors"
	"go.uber.org/zap"
)

type layoutData struct {
	View    profile.View
	Form    editor.FormState
	Preview template.HTML
}

func (s *Server) renderPreview(p domain.Profile) (template.HTML, error) {
	return s.deps.Preview.RenderHTML(preview.Build(p, s.now().Year()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	form := s.deps.Editor.FormState()
	html, err := s.renderPreview(form.Record)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writePage(w, "layout", layoutData{
		View:    s.deps.Store.View(),
		Form:    form,
		Preview: html,
	})
}

func (s *Server) handleEditFragment(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, "edit", s.deps.Editor.FormState())
}

func (s *Server) handlePreviewFragment(w http.ResponseWriter, r *http.Request) {
	html, err := s.renderPreview(s.deps.Store.Get())
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, errors.NewValidationError("malformed form", "form", nil))
		return
	}
	edit, err := domain.ParseEdit(r.PostForm.Get("field"), r.PostForm.Get("value"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := s.deps.Editor.Apply(edit); err != nil {
		s.fail(w, err)
		return
	}
	s.backToIndex(w, r)
}

func (s *Server) handleToggleVerified(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Editor.ToggleVerified(); err != nil {
		s.fail(w, err)
		return
	}
	s.backToIndex(w, r)
}

func (s *Server) handleToggleLanguage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Editor.ToggleLanguage(); err != nil {
		s.fail(w, err)
		return
	}
	s.backToIndex(w, r)
}

// handleEditImage accepts either a selected file or a typed URL. A file wins
// when both are present.
func (s *Server) handleEditImage(w http.ResponseWriter, r *http.Request) {
	field := domain.Field(chi.URLParam(r, "field"))
	if field.Kind() != domain.KindImage {
		s.fail(w, errors.NewValidationError("field does not hold an image", string(field), nil))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.deps.UploadMaxBytes+(1<<20))
	if err := r.ParseMultipartForm(s.deps.UploadMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.fail(w, errors.NewUploadError("file too large", "", http.StatusRequestEntityTooLarge, err))
			return
		}
		if err := r.ParseForm(); err != nil {
			s.fail(w, errors.NewValidationError("malformed form", "form", nil))
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(constants.UploadConfig.FormField)
	switch {
	case err == nil:
		defer file.Close()
		_, err = s.deps.Editor.AttachImage(field, header.Filename, header.Header.Get("Content-Type"), file)
	case stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart):
		_, err = s.deps.Editor.SetImageURL(field, strings.TrimSpace(r.FormValue("url")))
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.backToIndex(w, r)
}

func (s *Server) handleGenerateBio(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Editor.StartGenerateBio(); err != nil {
		if !stderrors.Is(err, editor.ErrBioInFlight) {
			s.fail(w, err)
			return
		}
		s.logger.Debug("Bio trigger ignored while generating")
	}
	s.backToIndex(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.deps.Store.Reset()
	s.backToIndex(w, r)
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	view, err := profile.ParseView(chi.URLParam(r, "view"))
	if err == nil {
		err = s.deps.Store.SetView(view)
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.backToIndex(w, r)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	b, ok := s.deps.Blobs.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", blobContentType(b.ContentType))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(b.Data)
}

// blobContentType only lets image types through; anything else is served as
// opaque bytes so an upload can never render as a page on this origin.
func blobContentType(declared string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(declared)), "image/") {
		return declared
	}
	return "application/octet-stream"
}

func (s *Server) writePage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) backToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	if status >= 500 {
		s.logger.Error("Request failed", zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}
