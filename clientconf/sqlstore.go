package clientconf

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/zeptools/docforge/db/sqldb"
)

// SQLStore keeps configurations in a single table with the placement list
// serialized as JSON. Works against both supported dialects; the upsert
// statement is picked by Client.Dialect.
type SQLStore struct {
	db sqldb.Client
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db sqldb.Client) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the client_configurations table if missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS "client_configurations" (
		"name" VARCHAR(255) NOT NULL PRIMARY KEY,
		"template_filename" VARCHAR(255) NOT NULL,
		"placements" TEXT NOT NULL,
		"updated_at" TIMESTAMP NOT NULL
	)`
	return s.db.Exec(ctx, ddl)
}

func (s *SQLStore) Upsert(ctx context.Context, cfg *ClientConfiguration) error {
	pls, err := json.Marshal(cfg.Placements)
	if err != nil {
		return fmt.Errorf("clientconf: encoding placements for %q: %w", cfg.Name, err)
	}
	var query string
	switch s.db.Dialect() {
	case "mysql":
		query = `INSERT INTO "client_configurations" ("name", "template_filename", "placements", "updated_at")
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				"template_filename" = VALUES("template_filename"),
				"placements" = VALUES("placements"),
				"updated_at" = VALUES("updated_at")`
	case "pgsql":
		query = `INSERT INTO "client_configurations" ("name", "template_filename", "placements", "updated_at")
			VALUES ($1, $2, $3, $4)
			ON CONFLICT ("name") DO UPDATE SET
				"template_filename" = EXCLUDED."template_filename",
				"placements" = EXCLUDED."placements",
				"updated_at" = EXCLUDED."updated_at"`
	default:
		return fmt.Errorf("clientconf: unsupported dialect: %s", s.db.Dialect())
	}
	return s.db.Exec(ctx, query, cfg.Name, cfg.TemplateFilename, string(pls), cfg.UpdatedAt)
}

func (s *SQLStore) Get(ctx context.Context, name string) (*ClientConfiguration, error) {
	var query string
	switch s.db.Dialect() {
	case "mysql":
		query = `SELECT "template_filename", "placements", "updated_at" FROM "client_configurations" WHERE "name" = ?`
	case "pgsql":
		query = `SELECT "template_filename", "placements", "updated_at" FROM "client_configurations" WHERE "name" = $1`
	default:
		return nil, fmt.Errorf("clientconf: unsupported dialect: %s", s.db.Dialect())
	}
	cfg := ClientConfiguration{Name: name}
	var plsJSON string
	err := s.db.QueryRow(ctx, query, name).Scan(&cfg.TemplateFilename, &plsJSON, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(plsJSON), &cfg.Placements); err != nil {
		return nil, fmt.Errorf("clientconf: decoding placements for %q: %w", name, err)
	}
	return &cfg, nil
}

func (s *SQLStore) Delete(ctx context.Context, name string) error {
	// existence check first; Exec does not report affected rows across
	// both drivers
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}
	var query string
	switch s.db.Dialect() {
	case "mysql":
		query = `DELETE FROM "client_configurations" WHERE "name" = ?`
	case "pgsql":
		query = `DELETE FROM "client_configurations" WHERE "name" = $1`
	default:
		return fmt.Errorf("clientconf: unsupported dialect: %s", s.db.Dialect())
	}
	return s.db.Exec(ctx, query, name)
}

func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT "name" FROM "client_configurations" ORDER BY "name"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
