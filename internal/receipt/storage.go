package receipt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage keeps the uploaded receipt files
type Storage interface {
	// Save writes data under filename and returns the name to retrieve it by
	Save(filename string, data []byte) (string, error)

	// Get reads a stored file, or returns ErrNotFound
	Get(name string) ([]byte, error)

	// Delete removes a stored file, or returns ErrNotFound
	Delete(name string) error
}

// LocalStorage stores receipt files flat in one directory. Names are reduced
// to their base name, so a stored file can never resolve outside basePath.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the storage directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes a receipt file and returns its stored name
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name, path, err := l.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", name, err)
	}
	return name, nil
}

// Get reads a stored receipt file
func (l *LocalStorage) Get(name string) ([]byte, error) {
	name, path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a stored receipt file
func (l *LocalStorage) Delete(name string) error {
	name, path, err := l.resolve(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: file %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("deleting file %s: %w", name, err)
	}
	return nil
}

// resolve maps a requested name to its stored name and path inside basePath
func (l *LocalStorage) resolve(requested string) (string, string, error) {
	name := filepath.Base(requested)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", "", fmt.Errorf("invalid filename %q", requested)
	}
	return name, filepath.Join(l.basePath, name), nil
}
