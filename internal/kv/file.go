package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps every key in one JSON document. Each write rewrites the whole
// document through a temp file and rename, so a crash never leaves it torn.
type File struct {
	mu   sync.Mutex
	Path string
}

// NewFile creates a file-backed store. The file is created on first write.
func NewFile(path string) *File {
	return &File{Path: strings.TrimSpace(path)}
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	value, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	doc[key] = string(value)
	if err := f.save(doc); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	if err := f.save(doc); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) load() (map[string]string, error) {
	doc := map[string]string{}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *File) save(doc map[string]string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}
