package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// SaveFile stores the upload as <uuid>/<original name> so the file stem, which
// becomes the video id, survives while concurrent uploads of the same name
// stay apart.
func (ls *LocalStorage) SaveFile(file multipart.File, info FileInfo) (string, error) {
	name := sanitizeFilename(info.Filename)

	dir := uuid.New().String()
	if err := os.MkdirAll(filepath.Join(ls.basePath, dir), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	relPath := filepath.Join(dir, name)
	fullPath := filepath.Join(ls.basePath, relPath)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.RemoveAll(filepath.Join(ls.basePath, dir))
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return relPath, nil
}

func (ls *LocalStorage) OpenFile(path string) (io.ReadSeekCloser, error) {
	fullPath, err := ls.GetFilePath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (ls *LocalStorage) GetFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(ls.basePath, cleanPath), nil
}

// DeleteFile removes the file and, for uploads saved by SaveFile, its
// per-upload directory.
func (ls *LocalStorage) DeleteFile(path string) error {
	fullPath, err := ls.GetFilePath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if dir := filepath.Dir(filepath.Clean(path)); dir != "." {
		// Only succeeds when empty, which is the case for SaveFile uploads.
		os.Remove(filepath.Join(ls.basePath, dir))
	}

	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = ""
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		}
		return r
	}, name)

	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	if strings.TrimSuffix(name, filepath.Ext(name)) == "" {
		name = "upload" + name
	}
	return name
}
