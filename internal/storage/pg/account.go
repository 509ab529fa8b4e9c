package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/impservers/impchat/internal/domain"
	internal_errors "github.com/impservers/impchat/internal/errors"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// SaveUser inserts a new account and returns its id. A taken name is a
// conflict, not an internal failure.
func (s *Storage) SaveUser(name string, passHash []byte, role domain.Role) (domain.UserId, error) {
	var id domain.UserId
	err := s.db.QueryRow(`
	INSERT INTO users(name, pass_hash, role)
	VALUES($1, $2, $3)
	RETURNING id`, name, string(passHash), string(role)).Scan(&id)
	if isUniqueViolation(err) {
		return 0, internal_errors.NewConflict(fmt.Sprintf("Name %q is already taken", name))
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// User fetches an account by name.
func (s *Storage) User(name string) (*domain.User, error) {
	var user domain.User
	var role string
	err := s.db.QueryRow(`
	SELECT id, name, pass_hash, role, created
	FROM users
	WHERE name = $1`, name).Scan(&user.Id, &user.Name, &user.PassHash, &role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal_errors.NewNotFound(fmt.Sprintf("No such user: %s", name))
	}
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// Users lists every account, oldest first.
func (s *Storage) Users() ([]domain.User, error) {
	rows, err := s.db.Query(`SELECT id, name, pass_hash, role, created FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		var role string
		if err := rows.Scan(&user.Id, &user.Name, &user.PassHash, &role, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Role = domain.Role(role)
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUserRole changes an account's role. Messages already sent keep the
// role snapshot taken at send time.
func (s *Storage) UpdateUserRole(name string, role domain.Role) error {
	return s.mustAffectOne(
		`UPDATE users SET role = $2 WHERE name = $1`,
		fmt.Sprintf("No such user: %s", name), name, string(role))
}

// UpdateUserPassword replaces an account's password hash.
func (s *Storage) UpdateUserPassword(name string, passHash []byte) error {
	return s.mustAffectOne(
		`UPDATE users SET pass_hash = $2 WHERE name = $1`,
		fmt.Sprintf("No such user: %s", name), name, string(passHash))
}

// DeleteUser removes an account. Its messages stay in the log under the
// snapshotted name.
func (s *Storage) DeleteUser(name string) error {
	return s.mustAffectOne(
		`DELETE FROM users WHERE name = $1`,
		fmt.Sprintf("No such user: %s", name), name)
}

func (s *Storage) mustAffectOne(query, notFoundMsg string, args ...interface{}) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return internal_errors.NewNotFound(notFoundMsg)
	}
	return nil
}
