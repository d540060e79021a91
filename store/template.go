package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Template is stored markup and the YAML rule set applied to it.
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HTML      string `json:"html"`
	Rules     string `json:"rules"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Put inserts the template or replaces the markup and rules of the one
// with the same name. It returns the stored row.
func (s *Store) Put(ctx context.Context, name, html, rules string) (*Template, error) {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO templates (id, name, html, rules, created_at, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			html = excluded.html,
			rules = excluded.rules,
			updated_at = excluded.updated_at`,
		s.newID(), name, html, rules, now, now,
	)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, name)
}

// Get returns the named template, or nil if there is none.
func (s *Store) Get(ctx context.Context, name string) (*Template, error) {
	t := &Template{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, html, rules, created_at, updated_at
		FROM templates WHERE name = ?`, name).Scan(
		&t.ID, &t.Name, &t.HTML, &t.Rules, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns every template, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Template, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, html, rules, created_at, updated_at
		FROM templates ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Template
	for rows.Next() {
		t := &Template{}
		if err := rows.Scan(&t.ID, &t.Name, &t.HTML, &t.Rules, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the named template. It reports whether a row existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
