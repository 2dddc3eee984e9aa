package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Saurabhkg03/saraavdata-backend/internal/domain"
)

// Snapshot file names inside the data directory.
const (
	InputFileName  = "input.json"
	OutputFileName = "output.json"
)

// Store persists question bank snapshots as JSON files in a single data
// directory: the uploaded input and the progressively enriched output.
// Every write goes through a temp file and rename so an interrupted save
// never leaves a half-written snapshot behind.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// InputPath returns the path of the uploaded input snapshot.
func (s *Store) InputPath() string {
	return filepath.Join(s.dir, InputFileName)
}

// OutputPath returns the path of the enriched output snapshot.
func (s *Store) OutputPath() string {
	return filepath.Join(s.dir, OutputFileName)
}

// HasOutput reports whether an output snapshot exists. A fresh run uses
// this to decide between resuming prior progress and starting over from
// the input.
func (s *Store) HasOutput() bool {
	_, err := os.Stat(s.OutputPath())
	return err == nil
}

// LoadInput reads and decodes the uploaded input snapshot.
func (s *Store) LoadInput() (*domain.QuestionBank, error) {
	return s.load(s.InputPath())
}

// LoadOutput reads and decodes the enriched output snapshot.
func (s *Store) LoadOutput() (*domain.QuestionBank, error) {
	return s.load(s.OutputPath())
}

func (s *Store) load(path string) (*domain.QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, filepath.Base(path))
		}
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	bank := &domain.QuestionBank{}
	if err := json.Unmarshal(data, bank); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, filepath.Base(path), err)
	}
	return bank, nil
}

// SaveOutput writes the bank to the output snapshot. The file keeps the
// shape the companion frontend reads directly: two-space indentation and
// non-ASCII text written literally rather than escaped, so formulas and
// regional characters stay readable in the file.
func (s *Store) SaveOutput(bank *domain.QuestionBank) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bank); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.replaceFile(s.OutputPath(), buf.Bytes())
}

// ReadOutput returns the raw bytes of the output snapshot, for serving
// the file exactly as it sits on disk.
func (s *Store) ReadOutput() ([]byte, error) {
	data, err := os.ReadFile(s.OutputPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, OutputFileName)
		}
		return nil, fmt.Errorf("reading %s: %w", OutputFileName, err)
	}
	return data, nil
}

// WriteInput stores an uploaded document as the input snapshot, byte for
// byte. Nothing is decoded or reformatted here; the file on disk is
// exactly what the client sent.
func (s *Store) WriteInput(r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.InputPath()); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("replacing %s: %w", InputFileName, err)
	}
	return n, nil
}

// RemoveOutput deletes the output snapshot if one exists. Uploading a new
// input clears stale progress this way; a missing file is not an error.
func (s *Store) RemoveOutput() error {
	err := os.Remove(s.OutputPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", OutputFileName, err)
	}
	return nil
}

func (s *Store) replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
