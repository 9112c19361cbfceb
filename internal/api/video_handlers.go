package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/storage"
)

var allowedContentTypes = map[string]bool{
	"video/mp4":                true,
	"video/webm":               true,
	"video/quicktime":          true,
	"application/octet-stream": true,
}

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

func (h *Handlers) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video_file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
			writeError(w, http.StatusBadRequest, "Invalid video format: "+contentType)
			return
		}
	}

	broadcastStart := r.FormValue("broadcast_start_time")
	if broadcastStart == "" {
		writeError(w, http.StatusBadRequest, "broadcast_start_time is required")
		return
	}

	attributes := config.ParseAttributes(r.FormValue("attribute_types"))
	if len(attributes) == 0 {
		attributes = h.DefaultAttributes
	}

	relPath, err := h.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		h.log().Error("failed to save upload", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer func() {
		if err := h.Storage.DeleteFile(relPath); err != nil {
			h.log().Warn("failed to remove upload", "path", relPath, "error", err)
		}
	}()

	fullPath, err := h.Storage.GetFilePath(relPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to locate upload")
		return
	}

	result, err := h.Analyzer.AnalyzeVideo(r.Context(), fullPath, broadcastStart, attributes, 0)
	if err != nil {
		h.writeDomainError(w, r, "Analysis failed", err)
		return
	}

	// A storage failure is reported on the result, the timeline is still returned.
	if err := h.Analyzer.Persist(r.Context(), result, header.Filename, header.Filename); err != nil {
		h.log().Warn("ground truth not saved", "video_id", result.VideoID, "error", err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.Videos.ListVideos(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list videos", err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// VideoAttributes lists the attributes present in a video's ground truth, or
// the default vocabulary when it has none.
func (h *Handlers) VideoAttributes(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")

	attributes, err := h.Attributes.ListAttributes(r.Context(), videoID)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list attributes", err)
		return
	}
	if len(attributes) == 0 {
		attributes = h.DefaultAttributes
	}
	writeJSON(w, http.StatusOK, attributes)
}

// ServeVideo streams a file from the assets directory. ServeContent handles
// range requests.
func (h *Handlers) ServeVideo(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(h.AssetsPath, filename))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.log().Warn("failed to open asset", "filename", filename, "error", err)
		}
		writeError(w, http.StatusNotFound, "Video not found: "+filename)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		writeError(w, http.StatusNotFound, "Video not found: "+filename)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, filename, stat.ModTime(), f)
}
