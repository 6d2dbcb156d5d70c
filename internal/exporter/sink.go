package exporter

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Artifact is a named, typed blob ready for delivery
type Artifact struct {
	Name     string
	MIMEType string
	Body     []byte
}

// ArtifactSink delivers artifacts to their destination
type ArtifactSink interface {
	Write(ctx context.Context, a Artifact) error
}

// HTTPSink answers an HTTP request with the artifact as a file download
type HTTPSink struct {
	w http.ResponseWriter
}

// NewHTTPSink creates a sink writing to w
func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w}
}

// Write sets download headers and writes the body
func (s *HTTPSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := s.w.Header()
	h.Set("Content-Type", a.MIMEType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeName(a.Name)))
	h.Set("Content-Length", strconv.Itoa(len(a.Body)))
	s.w.WriteHeader(http.StatusOK)

	if _, err := s.w.Write(a.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// FileSink writes artifacts as files under a base directory
type FileSink struct {
	dir string

	mu      sync.Mutex
	written []string
}

// NewFileSink creates a sink rooted at dir. The directory is created on first write.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Write stores the artifact as dir/<name>, replacing an existing file
func (s *FileSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(s.dir, sanitizeName(a.Name))
	if err := os.WriteFile(path, a.Body, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.mu.Lock()
	s.written = append(s.written, path)
	s.mu.Unlock()
	return nil
}

// Paths returns the files written so far
func (s *FileSink) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.written))
	copy(out, s.written)
	return out
}

// BufferSink keeps artifacts in memory. Safe for concurrent use.
type BufferSink struct {
	mu        sync.Mutex
	artifacts []Artifact
}

// NewBufferSink creates an empty buffer sink
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// Write appends a copy of the artifact
func (s *BufferSink) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := make([]byte, len(a.Body))
	copy(body, a.Body)
	a.Body = body

	s.mu.Lock()
	s.artifacts = append(s.artifacts, a)
	s.mu.Unlock()
	return nil
}

// Artifacts returns the stored artifacts in write order
func (s *BufferSink) Artifacts() []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// Last returns the most recent artifact
func (s *BufferSink) Last() (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.artifacts) == 0 {
		return Artifact{}, false
	}
	return s.artifacts[len(s.artifacts)-1], true
}

// sanitizeName keeps the base name and drops characters unsafe in
// filenames and header values
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`<>:"|?*`, r):
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "export"
	}
	return name
}
