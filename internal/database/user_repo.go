package database

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fileshare-backend/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

const userColumns = `id, username, display_name, password_hash, auth_type, oidc_subject,
       created_at, updated_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var passwordHash, oidcSubject sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.Username, &user.DisplayName, &passwordHash,
		&user.AuthType, &oidcSubject,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	user.OIDCSubject = oidcSubject.String
	if lastLogin.Valid {
		user.LastLogin = lastLogin.Time
	}

	return user, nil
}

// Create creates a new user
func (r *UserRepo) Create(user *models.User) error {
	result, err := DB.Exec(`
		INSERT INTO users (username, display_name, password_hash, auth_type, oidc_subject)
		VALUES (?, ?, ?, ?, ?)
	`, user.Username, user.DisplayName, user.PasswordHash, user.AuthType, user.OIDCSubject)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	return scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepo) GetByUsername(username string) (*models.User, error) {
	return scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// GetByOIDCSubject retrieves a user by its OIDC subject claim
func (r *UserRepo) GetByOIDCSubject(subject string) (*models.User, error) {
	return scanUser(DB.QueryRow(`SELECT `+userColumns+` FROM users WHERE oidc_subject = ?`, subject))
}

// FindByCredentials verifies a username/password pair against the stored
// bcrypt digest. Unknown users and wrong passwords both return
// ErrInvalidCredentials so callers cannot distinguish the two.
func (r *UserRepo) FindByCredentials(username, password string) (*models.User, error) {
	user, err := r.GetByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.AuthType != models.AuthTypeLocal || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateLastLogin updates the user's last login timestamp
func (r *UserRepo) UpdateLastLogin(id int64) error {
	_, err := DB.Exec("UPDATE users SET last_login = ? WHERE id = ?", time.Now(), id)
	return err
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
