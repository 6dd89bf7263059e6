package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// UserRepository persists [models.User] records.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID.
// The caller supplies an already-hashed password.
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = shared.GenerateID()
	}
	now := time.Now().UTC()
	user.Created = now
	user.Updated = now

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, username, password_hash, is_admin, library_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, user.ID, user.Username, user.PasswordHash, user.IsAdmin, user.LibraryPath, user.Created, user.Updated)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s", shared.ErrConflict, user.Username)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(id string) (*models.User, error) {
	return r.getBy("id", id)
}

// GetByUsername retrieves a user by their unique username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy("username", username)
}

func (r *UserRepository) getBy(column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, is_admin, library_path, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, column)

	var (
		user        models.User
		libraryPath sql.NullString
	)

	err := r.db.QueryRow(query, value).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin,
		&libraryPath, &user.Created, &user.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.LibraryPath = nullString(libraryPath)
	return &user, nil
}

// Update modifies an existing user's mutable fields.
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	user.Updated = now

	query := `
		UPDATE users
		SET username = ?, password_hash = ?, is_admin = ?, library_path = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, user.Username, user.PasswordHash, user.IsAdmin, user.LibraryPath, now, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireRow(result, user.ID)
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	result, err := r.db.Exec(
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(result, id)
}

// UpdateUsername renames a user's account.
func (r *UserRepository) UpdateUsername(id, username string) error {
	result, err := r.db.Exec(
		"UPDATE users SET username = ?, updated_at = ? WHERE id = ?",
		username, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s", shared.ErrConflict, username)
		}
		return fmt.Errorf("failed to update username: %w", err)
	}
	return requireRow(result, id)
}

// UpdateLibraryPath points a user at a different library root.
func (r *UserRepository) UpdateLibraryPath(id, libraryPath string) error {
	result, err := r.db.Exec(
		"UPDATE users SET library_path = ?, updated_at = ? WHERE id = ?",
		libraryPath, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update library path: %w", err)
	}
	return requireRow(result, id)
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(result, id)
}

// List retrieves all users, newest first.
func (r *UserRepository) List() ([]*models.User, error) {
	query := `
		SELECT id, username, password_hash, is_admin, library_path, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var (
			user        models.User
			libraryPath sql.NullString
		)

		err := rows.Scan(
			&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin,
			&libraryPath, &user.Created, &user.Updated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user.LibraryPath = nullString(libraryPath)
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// Count returns the number of accounts; used for first-run admin seeding.
func (r *UserRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// requireRow converts a zero-row update into a not-found error.
func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	return nil
}
