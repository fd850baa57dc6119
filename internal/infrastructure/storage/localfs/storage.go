// Package localfs implements the object store on a local directory tree.
// Object keys map directly to relative file paths under the store root.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	if root == "" {
		root = "./data/storage"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Storage{root: root}, nil
}

func (s *Storage) Download(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return data, nil
}

// Upload overwrites any existing object at path. The content type is not
// representable on a plain filesystem and is ignored.
func (s *Storage) Upload(_ context.Context, path string, data []byte, _ string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write object %s: %w", path, err)
	}
	return nil
}

// List returns the immediate child entry names under prefix, sorted. A
// missing prefix directory is an empty listing, not an error.
func (s *Storage) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(prefix)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list prefix %s: %w", prefix, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SignedURL has nothing to sign against on a local disk; it returns a file
// URL carrying the expiry so callers still see TTL-shaped links in dev.
func (s *Storage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	full, err := filepath.Abs(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("resolve object path %s: %w", path, err)
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("stat object %s: %w", path, err)
	}
	return fmt.Sprintf("file://%s?expires=%d", filepath.ToSlash(full), time.Now().Add(ttl).Unix()), nil
}

// EnsureBucket is idempotent. Size limits are a managed-storage concern and
// are not enforced locally.
func (s *Storage) EnsureBucket(_ context.Context, name string, _ int64) error {
	if name == "" {
		return fmt.Errorf("bucket name is empty")
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", name, err)
	}
	return nil
}
