// Package blob stores rendered artifacts such as certificates.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the store root.
var ErrInvalidName = errors.New("invalid object name")

// Store saves an object and returns the location clients can use to fetch it.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// DirStore writes objects to a local directory served under URLPrefix.
type DirStore struct {
	dir       string
	urlPrefix string
}

// NewDirStore creates the directory when missing.
func NewDirStore(dir, urlPrefix string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &DirStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory objects are written to.
func (d *DirStore) Dir() string { return d.dir }

// Put implements Store.
func (d *DirStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0o644); err != nil { //nolint:gosec // certificates are public downloads
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return d.urlPrefix + "/" + name, nil
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
