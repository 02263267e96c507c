package catalog

import (
	"context"
	"database/sql"
	"time"
)

// SQLiteCacheRepository stores the catalog mirror in the local sqlite
// database. The sync engine is its only writer.
type SQLiteCacheRepository struct {
	db *sql.DB
}

func NewSQLiteCacheRepository(db *sql.DB) *SQLiteCacheRepository {
	return &SQLiteCacheRepository{db: db}
}

func (r *SQLiteCacheRepository) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ReplaceCategories converges the cached category set to exactly the given
// one. Delete-all plus insert-all runs in a single transaction so readers
// never observe the gap in between.
func (r *SQLiteCacheRepository) ReplaceCategories(ctx context.Context, categories []Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, c := range categories {
		var description interface{}
		if c.Description != "" {
			description = c.Description
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
			c.ID, c.Name, description); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteCacheRepository) WasteTypes(ctx context.Context) ([]WasteType, error) {
	return r.queryWasteTypes(ctx, `SELECT id, name, category_id FROM waste_types ORDER BY id`)
}

func (r *SQLiteCacheRepository) WasteTypesByCategory(ctx context.Context, categoryID int64) ([]WasteType, error) {
	return r.queryWasteTypes(ctx, `SELECT id, name, category_id FROM waste_types WHERE category_id = ? ORDER BY id`, categoryID)
}

func (r *SQLiteCacheRepository) queryWasteTypes(ctx context.Context, query string, args ...interface{}) ([]WasteType, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []WasteType
	for rows.Next() {
		var t WasteType
		if err := rows.Scan(&t.ID, &t.Name, &t.CategoryID); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ReplaceWasteTypes is the full-fetch write path: the cache converges to
// exactly the given set, which is how server-side deletions propagate.
func (r *SQLiteCacheRepository) ReplaceWasteTypes(ctx context.Context, types []WasteType) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM waste_types`); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, t := range types {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO waste_types (id, name, category_id) VALUES (?, ?, ?)`,
			t.ID, t.Name, t.CategoryID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// UpsertWasteTypes is the per-category write path: insert-or-replace by id,
// rows belonging to other categories stay untouched.
func (r *SQLiteCacheRepository) UpsertWasteTypes(ctx context.Context, types []WasteType) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, t := range types {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO waste_types (id, name, category_id) VALUES (?, ?, ?)`,
			t.ID, t.Name, t.CategoryID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
