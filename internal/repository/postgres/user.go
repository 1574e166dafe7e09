package postgres

import (
	"database/sql"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureUserExists creates user if not exists
func (r *UserRepo) EnsureUserExists(userID int64) error {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(query, userID)
	return err
}

// UserIDByToken resolves a bearer token to a user ID.
// Returns 0 with no error when the token is unknown; the caller decides
// how to treat an unresolved credential.
func (r *UserRepo) UserIDByToken(token string) (int64, error) {
	var userID int64
	query := `SELECT user_id FROM users WHERE api_token = $1`
	err := r.db.QueryRow(query, token).Scan(&userID)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return userID, nil
}
