package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/gracechapel/shepherd/internal/model"
	"github.com/gracechapel/shepherd/internal/store"
)

const userCols = `id, name, role, COALESCE(care_group_id, ''), password, password_hash`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name, &u.Role, &u.CareGroupID, &u.Password, &u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) listUsersWhere(where string, args ...any) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT `+userCols+` FROM users `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) ListUsers() ([]model.User, error) {
	return s.listUsersWhere(`ORDER BY name`)
}

func (s *Store) ListLeaders() ([]model.User, error) {
	return s.listUsersWhere(`WHERE role = 'leader' ORDER BY name`)
}

func (s *Store) ListAdmins() ([]model.User, error) {
	return s.listUsersWhere(`WHERE role = 'admin' ORDER BY name`)
}

func (s *Store) GetUserByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByName(name string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE name = ? LIMIT 1`, name)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return u, nil
}

func (s *Store) CreateUser(u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = model.NewID(string(u.Role))
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, role, care_group_id, password, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Role, nullable(u.CareGroupID), u.Password, u.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByID(u.ID)
}

func (s *Store) UpdateUserPassword(userID, passwordHash string) error {
	_, err := s.db.Exec(
		`UPDATE users SET password = '', password_hash = ? WHERE id = ?`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(userID string) error {
	u, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	if u.Role == model.RoleAdmin {
		var admins int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins); err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return store.ErrLastAdmin
		}
	}
	if _, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
