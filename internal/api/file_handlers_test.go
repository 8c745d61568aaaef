package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare-backend/internal/models"
)

func loginToken(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.do(loginForm("alice", "secret123", true))
	require.Equal(t, http.StatusOK, rec.Code)
	var body models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Token
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set(echo.HeaderAuthorization, token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/file-upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadListFetchRemove(t *testing.T) {
	ts := newTestServer(t)
	token := loginToken(t, ts)

	// Upload.
	rec := ts.do(authed(uploadRequest(t, "photo.jpg", "jpegdata"), token))
	require.Equal(t, http.StatusOK, rec.Code)

	var uploaded struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, "photo.jpg", uploaded.Filename)
	assert.Equal(t, int64(8), uploaded.Size)
	assert.Equal(t, "/media/alice/photo.jpg", uploaded.URL)

	// Same name again gets de-duplicated.
	rec2 := ts.do(authed(uploadRequest(t, "photo.jpg", "other"), token))
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "photo_2.jpg")

	// List.
	list := ts.do(authed(httptest.NewRequest(http.MethodGet, "/api/alice/files", nil), token))
	require.Equal(t, http.StatusOK, list.Code)
	var files []models.FileInfo
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &files))
	assert.Len(t, files, 2)

	// Fetch the bytes back.
	media := ts.do(authed(httptest.NewRequest(http.MethodGet, "/media/alice/photo.jpg", nil), token))
	require.Equal(t, http.StatusOK, media.Code)
	assert.Equal(t, "jpegdata", media.Body.String())

	// Remove.
	del := ts.do(authed(httptest.NewRequest(http.MethodDelete, "/api/file-remove?fileid="+strconv.FormatInt(uploaded.ID, 10), nil), token))
	require.Equal(t, http.StatusOK, del.Code)

	// Gone from listing and from disk-backed fetch.
	list2 := ts.do(authed(httptest.NewRequest(http.MethodGet, "/api/alice/files", nil), token))
	var rest []models.FileInfo
	require.NoError(t, json.Unmarshal(list2.Body.Bytes(), &rest))
	assert.Len(t, rest, 1)

	media2 := ts.do(authed(httptest.NewRequest(http.MethodGet, "/media/alice/photo.jpg", nil), token))
	assert.Equal(t, http.StatusNotFound, media2.Code)

	// Removing it again is a 404, not a crash.
	del2 := ts.do(authed(httptest.NewRequest(http.MethodDelete, "/api/file-remove?fileid="+strconv.FormatInt(uploaded.ID, 10), nil), token))
	assert.Equal(t, http.StatusNotFound, del2.Code)
}

func TestListFiles_CrossUserRejected(t *testing.T) {
	ts := newTestServer(t)
	token := loginToken(t, ts)

	// Programmatic: 401 JSON.
	rec := ts.do(authed(httptest.NewRequest(http.MethodGet, "/api/bob/files", nil), token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	// Browser: bounced back home.
	req := httptest.NewRequest(http.MethodGet, "/api/bob/files", nil)
	req.Header.Set(echo.HeaderAuthorization, token)
	rec2 := ts.do(req)
	assert.Equal(t, http.StatusFound, rec2.Code)
	assert.Equal(t, "/", rec2.Header().Get(echo.HeaderLocation))
}

func TestMedia_CrossUserRejected(t *testing.T) {
	ts := newTestServer(t)
	token := loginToken(t, ts)

	rec := ts.do(authed(httptest.NewRequest(http.MethodGet, "/media/bob/photo.jpg", nil), token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpload_NoFile(t *testing.T) {
	ts := newTestServer(t)
	token := loginToken(t, ts)

	req := httptest.NewRequest(http.MethodPost, "/api/file-upload", nil)
	rec := ts.do(authed(req, token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileRoutes_BrowserNeverSeesJSON(t *testing.T) {
	ts := newTestServer(t)
	cookie := jwtCookie(t, ts.do(loginForm("alice", "secret123", false)))

	// Upload form posts land here straight from the index page: a missing
	// file must come back as a rendered page, not a JSON body.
	req := httptest.NewRequest(http.MethodPost, "/api/file-upload", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "no file uploaded")

	// A successful browser upload bounces back to the index.
	up := uploadRequest(t, "notes.txt", "hello")
	up.AddCookie(cookie)
	rec2 := ts.do(up)
	assert.Equal(t, http.StatusFound, rec2.Code)
	assert.Equal(t, "/", rec2.Header().Get(echo.HeaderLocation))

	// Someone else's media URL sends the browser home.
	media := httptest.NewRequest(http.MethodGet, "/media/bob/photo.jpg", nil)
	media.AddCookie(cookie)
	rec3 := ts.do(media)
	assert.Equal(t, http.StatusFound, rec3.Code)
	assert.Equal(t, "/", rec3.Header().Get(echo.HeaderLocation))

	// An unknown file renders a not-found page.
	missing := httptest.NewRequest(http.MethodGet, "/media/alice/nope.txt", nil)
	missing.AddCookie(cookie)
	rec4 := ts.do(missing)
	assert.Equal(t, http.StatusNotFound, rec4.Code)
	assert.Contains(t, rec4.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
}

func TestIndex_BrowserRendersPage(t *testing.T) {
	ts := newTestServer(t)

	cookie := jwtCookie(t, ts.do(loginForm("alice", "secret123", false)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "Alice")
}
