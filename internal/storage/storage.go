package storage

import (
	"errors"
	"io"
	"mime/multipart"
)

var ErrInvalidPath = errors.New("invalid path")

type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Storage keeps uploaded videos on disk for the duration of an analysis.
// Paths are relative to the storage root.
type Storage interface {
	SaveFile(file multipart.File, info FileInfo) (string, error)
	OpenFile(path string) (io.ReadSeekCloser, error)
	GetFilePath(path string) (string, error)
	DeleteFile(path string) error
}
