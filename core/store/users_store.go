package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type User struct {
	ID              int64     `json:"id"`
	Pseudonym       string    `json:"pseudonym"`
	CampusDept      string    `json:"campusDept,omitempty"`
	OptionalContact string    `json:"optionalContact,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

type UsersStore interface {
	CreateUser(ctx context.Context, user *User) (int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

func (s *usersStore) CreateUser(ctx context.Context, user *User) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users(pseudonym, campus_dept, optional_contact, is_active, created_at)
		VALUES(?,?,?,?,?)`,
		strings.TrimSpace(user.Pseudonym), strings.TrimSpace(user.CampusDept), strings.TrimSpace(user.OptionalContact), boolToInt(user.IsActive), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	user.ID = id
	user.CreatedAt = now
	return id, nil
}

func (s *usersStore) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, pseudonym, campus_dept, optional_contact, is_active, created_at FROM users WHERE id=?`, id)
	var u User
	var active int
	if err := row.Scan(&u.ID, &u.Pseudonym, &u.CampusDept, &u.OptionalContact, &active, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.IsActive = active == 1
	return &u, nil
}

func (s *usersStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pseudonym, campus_dept, optional_contact, is_active, created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		var u User
		var active int
		if err := rows.Scan(&u.ID, &u.Pseudonym, &u.CampusDept, &u.OptionalContact, &active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.IsActive = active == 1
		res = append(res, u)
	}
	return res, rows.Err()
}
