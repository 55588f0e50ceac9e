// Package blob keeps locally selected images in memory for the lifetime of the
// process and hands out references usable as image sources.
package blob

import (
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kapu/socialforge-go/internal/constants"
	"github.com/kapu/socialforge-go/pkg/errors"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type Blob struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type Store struct {
	mu       sync.RWMutex
	blobs    map[string]*Blob
	maxBytes int64
	prefix   string
	entropy  io.Reader
	logger   *zap.Logger
}

func NewStore(maxBytes int64, logger *zap.Logger) *Store {
	if maxBytes <= 0 {
		maxBytes = constants.UploadConfig.DefaultMaxBytes
	}
	return &Store{
		blobs:    make(map[string]*Blob),
		maxBytes: maxBytes,
		prefix:   constants.UploadConfig.RoutePrefix,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		logger:   logger,
	}
}

// Put reads the file and returns its reference. The content is not inspected
// beyond sniffing a content type when the client sent none.
func (s *Store) Put(filename, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", errors.NewUploadError("failed to read file", filename, 400, err)
	}
	if len(data) == 0 {
		return "", errors.NewUploadError("file is empty", filename, 400, nil)
	}
	if int64(len(data)) > s.maxBytes {
		return "", errors.NewUploadError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes), filename, 413, nil)
	}

	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	s.blobs[id] = &Blob{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	s.mu.Unlock()

	s.logger.Debug("Blob stored",
		zap.String("id", id),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)
	return s.prefix + id, nil
}

func (s *Store) Get(id string) (*Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	return b, ok
}

// IsRef reports whether ref points into this store.
func (s *Store) IsRef(ref string) bool {
	id, ok := strings.CutPrefix(ref, s.prefix)
	if !ok {
		return false
	}
	_, found := s.Get(id)
	return found
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Clear drops every blob; references handed out earlier stop resolving.
func (s *Store) Clear() {
	s.mu.Lock()
	s.blobs = make(map[string]*Blob)
	s.mu.Unlock()
}
