package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"fileshare-backend/internal/auth"
	"fileshare-backend/internal/database"
	"fileshare-backend/internal/models"
)

// Maximum upload size (100MB)
const maxUploadSize = 100 * 1024 * 1024

// failFile reports a file-route failure in the caller's shape: JSON for
// programmatic clients, a rendered error page for browsers. Browsers
// never see a raw JSON error body.
func (h *Handlers) failFile(c echo.Context, status int, msg string) error {
	if auth.IsProgrammatic(c) {
		return c.JSON(status, map[string]string{"error": msg})
	}
	return h.renderError(c, status, msg)
}

// indexHandler handles GET /: the authenticated user's file list, as a
// page for browsers and as JSON for programmatic callers.
func (h *Handlers) indexHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	files, err := h.fileRepo.ListByUser(user.ID, 0)
	if err != nil {
		c.Logger().Error("list files error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to list files")
	}

	infos := fileInfos(files, user.Username)
	if auth.IsProgrammatic(c) {
		return c.JSON(http.StatusOK, infos)
	}
	return h.renderIndex(c, user, infos)
}

// listFilesHandler handles GET /api/:user/files. Users can only list
// their own files; a mismatched username is rejected, not resolved.
func (h *Handlers) listFilesHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	if c.Param("user") != user.Username {
		if auth.IsProgrammatic(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthorized access",
			})
		}
		return c.Redirect(http.StatusFound, "/")
	}

	files, err := h.fileRepo.ListByUser(user.ID, 0)
	if err != nil {
		c.Logger().Error("list files error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to list files")
	}

	return c.JSON(http.StatusOK, fileInfos(files, user.Username))
}

// uploadFileHandler handles POST /api/file-upload
func (h *Handlers) uploadFileHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return h.failFile(c, http.StatusBadRequest, "no file uploaded")
	}
	if fh.Size > maxUploadSize {
		return h.failFile(c, http.StatusRequestEntityTooLarge, "file too large")
	}

	name, size, err := h.store.Save(user.Username, fh)
	if err != nil {
		c.Logger().Error("upload error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to store file")
	}

	file := &models.File{
		UserID:   user.ID,
		Name:     name,
		Size:     size,
		MimeType: fh.Header.Get(echo.HeaderContentType),
	}
	if err := h.fileRepo.Create(file); err != nil {
		h.store.Remove(user.Username, name)
		c.Logger().Error("file record error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to record file")
	}

	h.events.Publish(user.ID, Event{Action: "upload", File: file.Info(user.Username)})

	if !auth.IsProgrammatic(c) {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       file.ID,
		"filename": file.Name,
		"size":     file.Size,
		"mimetype": file.MimeType,
		"url":      file.URL(user.Username),
	})
}

// removeFileHandler handles DELETE /api/file-remove?fileid=N
func (h *Handlers) removeFileHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	fileID, err := strconv.ParseInt(c.QueryParam("fileid"), 10, 64)
	if err != nil {
		return h.failFile(c, http.StatusBadRequest, "fileid is required")
	}

	file, err := h.fileRepo.GetByIDAndUser(fileID, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return h.failFile(c, http.StatusNotFound, "file not found")
		}
		c.Logger().Error("file lookup error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to look up file")
	}

	if err := h.fileRepo.DeleteByIDAndUser(fileID, user.ID); err != nil {
		c.Logger().Error("file delete error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to delete file")
	}
	if err := h.store.Remove(user.Username, file.Name); err != nil {
		c.Logger().Error("file unlink error: ", err)
	}

	h.events.Publish(user.ID, Event{Action: "delete", File: file.Info(user.Username)})

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// mediaHandler handles GET /media/:user/:name — inline download so
// browsers can preview images and media directly. Only the owner may
// fetch a file.
func (h *Handlers) mediaHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	if c.Param("user") != user.Username {
		if auth.IsProgrammatic(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthorized access",
			})
		}
		return c.Redirect(http.StatusFound, "/")
	}

	file, err := h.fileRepo.GetByNameAndUser(c.Param("name"), user.ID)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return h.failFile(c, http.StatusNotFound, "file not found")
		}
		c.Logger().Error("file lookup error: ", err)
		return h.failFile(c, http.StatusInternalServerError, "failed to look up file")
	}

	return c.File(h.store.Path(user.Username, file.Name))
}

func fileInfos(files []*models.File, username string) []models.FileInfo {
	infos := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, f.Info(username))
	}
	return infos
}
