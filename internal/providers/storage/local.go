package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider stores documents on the local filesystem and maps them
// to URLs under a configured base.
type LocalProvider struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &LocalProvider{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (p *LocalProvider) Put(ctx context.Context, name string, content []byte) (string, error) {
	_ = ctx
	name = filepath.Base(name)
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write document %s: %w", name, err)
	}
	return p.baseURL + "/" + name, nil
}

func (p *LocalProvider) Get(ctx context.Context, url string) ([]byte, error) {
	_ = ctx
	name, ok := strings.CutPrefix(url, p.baseURL+"/")
	if !ok || name == "" {
		return nil, ErrNotFound
	}
	content, err := os.ReadFile(filepath.Join(p.dir, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return content, nil
}
