package writer

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// A Sink persists named artifacts. data is a string or []byte.
type Sink interface {
	WriteSync(scope, name string, data any) error
}

// A Source reads artifacts back.
type Source interface {
	ReadSync(scope, name string) (any, error)
	ExistsSync(scope, name string) bool
}

// ErrArtifactNotFound is returned by sources for missing artifacts.
var ErrArtifactNotFound = errors.New("artifact not found")

// MemorySink keeps artifacts in memory. It is safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	artifacts map[string]map[string]any
}

// NewMemorySink returns an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{artifacts: map[string]map[string]any{}}
}

// WriteSync implements Sink.
func (s *MemorySink) WriteSync(scope, name string, data any) error {
	if err := checkData(data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts[scope] == nil {
		s.artifacts[scope] = map[string]any{}
	}
	if b, ok := data.([]byte); ok {
		data = append([]byte(nil), b...)
	}
	s.artifacts[scope][name] = data
	return nil
}

// ReadSync implements Source.
func (s *MemorySink) ReadSync(scope, name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.artifacts[scope][name]
	if !ok {
		return nil, errors.Wrapf(ErrArtifactNotFound, "%s/%s", scope, name)
	}
	return data, nil
}

// ExistsSync implements Source.
func (s *MemorySink) ExistsSync(scope, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.artifacts[scope][name]
	return ok
}

// Names returns the artifact names of scope in sorted order.
func (s *MemorySink) Names(scope string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := lo.Keys(s.artifacts[scope])
	slices.Sort(names)
	return names
}

// FileSink stores artifacts as files, one directory per scope under Root.
type FileSink struct {
	Root string
}

// NewFileSink returns a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Root: dir}
}

func (s *FileSink) path(scope, name string) string {
	return filepath.Join(s.Root, scope, name)
}

// WriteSync implements Sink.
func (s *FileSink) WriteSync(scope, name string, data any) error {
	if err := checkData(data); err != nil {
		return err
	}
	path := s.path(scope, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	var b []byte
	switch d := data.(type) {
	case string:
		b = []byte(d)
	case []byte:
		b = d
	}
	//nolint:gosec
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadSync implements Source. Files are returned as []byte.
func (s *FileSink) ReadSync(scope, name string) (any, error) {
	//nolint:gosec
	b, err := os.ReadFile(s.path(scope, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrArtifactNotFound, "%s/%s", scope, name)
		}
		return nil, err
	}
	return b, nil
}

// ExistsSync implements Source.
func (s *FileSink) ExistsSync(scope, name string) bool {
	_, err := os.Stat(s.path(scope, name))
	return err == nil
}

func checkData(data any) error {
	switch data.(type) {
	case string, []byte:
		return nil
	default:
		return errors.Errorf("artifacts must be string or []byte, got %T", data)
	}
}
