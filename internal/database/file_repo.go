package database

import (
	"database/sql"
	"errors"

	"fileshare-backend/internal/models"
)

var ErrFileNotFound = errors.New("file not found")

// FileRepo handles file metadata database operations
type FileRepo struct{}

// NewFileRepo creates a new file repository
func NewFileRepo() *FileRepo {
	return &FileRepo{}
}

// Create inserts a file row for a user
func (r *FileRepo) Create(file *models.File) error {
	result, err := DB.Exec(`
		INSERT INTO files (user_id, name, size, mime_type)
		VALUES (?, ?, ?, ?)
	`, file.UserID, file.Name, file.Size, file.MimeType)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	file.ID = id

	return nil
}

// ListByUser returns the files owned by a user, newest first.
func (r *FileRepo) ListByUser(userID int64, limit int) ([]*models.File, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := DB.Query(`
		SELECT id, user_id, name, size, mime_type, created_at
		FROM files WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		file := &models.File{}
		var mimeType sql.NullString
		err := rows.Scan(&file.ID, &file.UserID, &file.Name, &file.Size, &mimeType, &file.CreatedAt)
		if err != nil {
			return nil, err
		}
		file.MimeType = mimeType.String
		files = append(files, file)
	}

	return files, rows.Err()
}

// GetByIDAndUser retrieves a file only if it belongs to the given user.
func (r *FileRepo) GetByIDAndUser(id, userID int64) (*models.File, error) {
	file := &models.File{}
	var mimeType sql.NullString

	err := DB.QueryRow(`
		SELECT id, user_id, name, size, mime_type, created_at
		FROM files WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&file.ID, &file.UserID, &file.Name, &file.Size, &mimeType, &file.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	file.MimeType = mimeType.String
	return file, nil
}

// GetByNameAndUser retrieves a file by its on-disk name for a user.
func (r *FileRepo) GetByNameAndUser(name string, userID int64) (*models.File, error) {
	file := &models.File{}
	var mimeType sql.NullString

	err := DB.QueryRow(`
		SELECT id, user_id, name, size, mime_type, created_at
		FROM files WHERE name = ? AND user_id = ?
	`, name, userID).Scan(&file.ID, &file.UserID, &file.Name, &file.Size, &mimeType, &file.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	file.MimeType = mimeType.String
	return file, nil
}

// DeleteByIDAndUser deletes a file row owned by the given user.
func (r *FileRepo) DeleteByIDAndUser(id, userID int64) error {
	result, err := DB.Exec("DELETE FROM files WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
