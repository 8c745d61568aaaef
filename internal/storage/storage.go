// Package storage owns the on-disk layout of uploaded files: one
// directory per user under the configured upload root, with filename
// collisions resolved by a numeric suffix.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files below a root directory.
type Storage struct {
	root string
}

// New creates a storage rooted at dir.
func New(dir string) *Storage {
	return &Storage{root: dir}
}

// UserDir returns the directory holding a user's files, creating it if
// needed.
func (s *Storage) UserDir(username string) (string, error) {
	dir := filepath.Join(s.root, username)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	return dir, nil
}

// Path returns the on-disk path of a stored file.
func (s *Storage) Path(username, name string) string {
	return filepath.Join(s.root, username, name)
}

var suffixRx = regexp.MustCompile(`_(\d+)$`)

// FixFileName returns a filename that does not collide with an existing
// file in dir. "a.txt" becomes "a_2.txt", then "a_3.txt" and so on.
func FixFileName(dir, filename string) string {
	name := sanitize(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		count := 2
		if m := suffixRx.FindStringSubmatch(base); m != nil {
			n, _ := strconv.Atoi(m[1])
			count = n + 1
			base = strings.TrimSuffix(base, m[0])
		}
		name = fmt.Sprintf("%s_%d%s", base, count, ext)
	}
}

// sanitize strips any path components a client may have smuggled into the
// filename.
func sanitize(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "file"
	}
	return name
}

// Save writes a multipart upload into the user's directory and returns the
// final (possibly de-duplicated) filename and size. The file is written to
// a temporary part file first so a failed upload never leaves a partial
// file under the final name.
func (s *Storage) Save(username string, fh *multipart.FileHeader) (string, int64, error) {
	dir, err := s.UserDir(username)
	if err != nil {
		return "", 0, err
	}

	src, err := fh.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := FixFileName(dir, fh.Filename)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".part")

	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("failed to store file: %w", err)
	}

	return name, size, nil
}

// Remove deletes a stored file. A file already gone is not an error.
func (s *Storage) Remove(username, name string) error {
	err := os.Remove(s.Path(username, sanitize(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
