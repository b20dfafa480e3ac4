package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localDisk stores objects on the local filesystem. Used in development
// and tests where no object store is available.
type localDisk struct {
	root    string
	baseURL string
}

// NewLocal builds a filesystem-backed Disk rooted at root.
func NewLocal(root, baseURL string) Disk {
	return &localDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (d *localDisk) path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimLeft(key, "/")))
}

func (d *localDisk) PutStream(_ context.Context, key string, r io.Reader) error {
	full := d.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) Delete(_ context.Context, key string) error {
	if err := os.Remove(d.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}

func (d *localDisk) Exists(_ context.Context, key string) bool {
	_, err := os.Stat(d.path(key))
	return err == nil
}

func (d *localDisk) URL(key string) string {
	return d.baseURL + "/" + strings.TrimLeft(key, "/")
}
