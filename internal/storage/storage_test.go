package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0640))
}

func TestFixFileName_Dedup(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	assert.Equal(t, "a.txt", FixFileName(dir, "a.txt"))

	touch(t, dir, "a.txt")
	assert.Equal(t, "a_2.txt", FixFileName(dir, "a.txt"))

	touch(t, dir, "a_2.txt")
	assert.Equal(t, "a_3.txt", FixFileName(dir, "a.txt"))
	assert.Equal(t, "a_3.txt", FixFileName(dir, "a_2.txt"))
}

func TestFixFileName_NoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	touch(t, dir, "notes")
	assert.Equal(t, "notes_2", FixFileName(dir, "notes"))
}

func TestFixFileName_StripsPathComponents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	assert.Equal(t, "passwd", FixFileName(dir, "../../etc/passwd"))
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndRemove(t *testing.T) {
	t.Parallel()
	s := New(t.TempDir())

	name, size, err := s.Save("alice", uploadHeader(t, "hello.txt", "hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", name)
	assert.Equal(t, int64(11), size)

	data, err := os.ReadFile(s.Path("alice", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	// Second upload with the same name lands beside the first.
	name2, _, err := s.Save("alice", uploadHeader(t, "hello.txt", "again"))
	require.NoError(t, err)
	assert.Equal(t, "hello_2.txt", name2)

	// No leftover part files.
	entries, err := os.ReadDir(filepath.Join(s.root, "alice"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, s.Remove("alice", "hello.txt"))
	_, err = os.Stat(s.Path("alice", "hello.txt"))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing file is fine.
	require.NoError(t, s.Remove("alice", "hello.txt"))
}
