package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scan-io-git/portal-lens/internal/findings"
)

// Keys of the per-workspace entries.
const (
	KeyRepositoryURL = "repositoryUrl"
	KeyAssetList     = "assetList"
	KeyFindingList   = "findingList"
	KeyFindingsCount = "findingsCount"
)

const privateDirPerm = 0o700

// Store is a key-value store scoped to one workspace, persisted in SQLite.
// Values are stored as JSON.
type Store struct {
	db        *sql.DB
	workspace string
}

// Open opens (or creates) the state database at path and scopes it to workspace.
func Open(path, workspace string) (*Store, error) {
	path = filepath.Clean(path)
	if strings.TrimSpace(path) == "" || path == "." {
		return nil, fmt.Errorf("state path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), privateDirPerm); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	if abs, err := filepath.Abs(workspace); err == nil && workspace != "" {
		workspace = abs
	}

	dsn := path + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, workspace: workspace}
	if err := s.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("close state db after schema init failure: %w", closeErr))
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workspace_state (
		workspace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (workspace, key)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init state schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Workspace returns the workspace the store is scoped to.
func (s *Store) Workspace() string {
	return s.workspace
}

// Get decodes the value of key into v. It reports false when the key is not set.
func (s *Store) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM workspace_state WHERE workspace = ? AND key = ?`,
		s.workspace, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read state %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode state %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key.
func (s *Store) Set(ctx context.Context, key string, v interface{}) error {
	return s.SetMany(ctx, map[string]interface{}{key: v})
}

// SetMany stores several keys in one transaction. A nil value deletes the key.
func (s *Store) SetMany(ctx context.Context, values map[string]interface{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Unix()
	for key, v := range values {
		if v == nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM workspace_state WHERE workspace = ? AND key = ?`,
				s.workspace, key,
			); err != nil {
				return fmt.Errorf("delete state %q: %w", key, err)
			}
			continue
		}

		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode state %q: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workspace_state (workspace, key, value, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(workspace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			s.workspace, key, string(raw), now,
		); err != nil {
			return fmt.Errorf("write state %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.SetMany(ctx, map[string]interface{}{key: nil})
}

// RepositoryURL returns the last resolved remote URL.
func (s *Store) RepositoryURL(ctx context.Context) (string, error) {
	var v string
	_, err := s.Get(ctx, KeyRepositoryURL, &v)
	return v, err
}

func (s *Store) SetRepositoryURL(ctx context.Context, v string) error {
	return s.Set(ctx, KeyRepositoryURL, v)
}

// Assets returns the last matched assets, primary first.
func (s *Store) Assets(ctx context.Context) ([]findings.Asset, error) {
	var v []findings.Asset
	_, err := s.Get(ctx, KeyAssetList, &v)
	return v, err
}

func (s *Store) SetAssets(ctx context.Context, v []findings.Asset) error {
	return s.Set(ctx, KeyAssetList, v)
}

// Findings returns the last reconciled finding list and the total count the portal reported.
func (s *Store) Findings(ctx context.Context) ([]findings.Finding, int, error) {
	var list []findings.Finding
	if _, err := s.Get(ctx, KeyFindingList, &list); err != nil {
		return nil, 0, err
	}
	var count int
	if _, err := s.Get(ctx, KeyFindingsCount, &count); err != nil {
		return nil, 0, err
	}
	return list, count, nil
}

// SetFindings writes the finding list and count together.
func (s *Store) SetFindings(ctx context.Context, list []findings.Finding, count int) error {
	if list == nil {
		list = []findings.Finding{}
	}
	return s.SetMany(ctx, map[string]interface{}{
		KeyFindingList:   list,
		KeyFindingsCount: count,
	})
}
