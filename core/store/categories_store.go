package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ContactInfo string    `json:"contactInfo"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CategoriesStore interface {
	CreateCategory(ctx context.Context, category *Category) (int64, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type categoriesStore struct {
	db *sql.DB
}

func NewCategoriesStore(db *sql.DB) CategoriesStore {
	return &categoriesStore{db: db}
}

func (s *categoriesStore) CreateCategory(ctx context.Context, category *Category) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories(name, role, contact_info, created_at) VALUES(?,?,?,?)`,
		strings.TrimSpace(category.Name), strings.TrimSpace(category.Role), strings.TrimSpace(category.ContactInfo), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	category.ID = id
	category.CreatedAt = now
	return id, nil
}

func (s *categoriesStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, role, contact_info, created_at FROM categories WHERE id=?`, id)
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Role, &c.ContactInfo, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *categoriesStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, role, contact_info, created_at FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.ContactInfo, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
