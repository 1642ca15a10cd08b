package photostore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores photos under Dir and serves them below URLPrefix
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (l *Local) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	p, rel, err := l.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	dst, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return l.URLPrefix + "/" + rel, nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	p, _, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// path keeps name inside Dir and returns it relative to Dir as well
func (l *Local) path(name string) (string, string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return "", "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(l.Dir, clean), strings.TrimPrefix(filepath.ToSlash(clean), "/"), nil
}
