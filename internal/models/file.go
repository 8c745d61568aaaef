package models

import (
	"path"
	"time"
)

// File represents an uploaded file owned by a user. Name is the on-disk
// filename, already de-duplicated by the storage layer.
type File struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// URL returns the media path a client uses to fetch the file.
func (f *File) URL(username string) string {
	return path.Join("/media", username, f.Name)
}

// FileInfo is the response shape for file listings and uploads.
type FileInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

// Info renders the file as its client-facing shape.
func (f *File) Info(username string) FileInfo {
	return FileInfo{
		ID:       f.ID,
		Name:     f.Name,
		Size:     f.Size,
		MimeType: f.MimeType,
		URL:      f.URL(username),
	}
}
