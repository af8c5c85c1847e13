package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps assets under a directory that is also served statically.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Put writes data next to the destination and renames it into place, so a
// reader sees either the previous file or the complete new one.
func (s *LocalStore) Put(_ context.Context, name string, data []byte, _ string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid asset name %q", name)
	}
	dst := filepath.Join(s.root, name)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

// Root is the directory assets are written to.
func (s *LocalStore) Root() string { return s.root }
