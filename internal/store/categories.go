package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		c.Description = stringPtr(description)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, name string, description *string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO categories (name, description) VALUES (?, ?)", name, nullableString(description))
	if err != nil {
		if mapped := classify(err); mapped != nil {
			return 0, fmt.Errorf("failed to insert category %q: %w", name, mapped)
		}
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read category id: %w", err)
	}
	return id, nil
}
