package results

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// FileStore keeps the record in one JSON file. Writes go through a temp
// file and rename so readers never see a partial record.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// Path returns the record file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrAbsent
		}
		return nil, fmt.Errorf("read result file: %w", err)
	}
	return decodeRecord(data)
}

func (s *FileStore) Save(_ context.Context, r *Result) error {
	b, err := Encode(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}
	return atomicWrite(s.path, b)
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove result file: %w", err)
	}
	return nil
}

func atomicWrite(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".result-tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileProvider stores each session's record as <dir>/<session>.json.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider { return &FileProvider{dir: dir} }

func (p *FileProvider) ForSession(sessionID string) Store {
	if !sessionIDPattern.MatchString(sessionID) {
		// keep ids that are not plain names inside dir
		sum := sha256.Sum256([]byte(sessionID))
		sessionID = hex.EncodeToString(sum[:16])
	}
	return NewFileStore(filepath.Join(p.dir, sessionID+".json"))
}

func (p *FileProvider) Forget(sessionID string) error {
	return p.ForSession(sessionID).Clear(context.Background())
}

func (p *FileProvider) Close() error { return nil }

var (
	_ Store    = (*FileStore)(nil)
	_ Provider = (*FileProvider)(nil)
)
