package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"

	_ "modernc.org/sqlite"
)

const backendSQLite = "sqlite"

//go:embed schema.sql
var schema string

// SQLiteStore keeps one JSON document per report in a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	node *snowflake.Node

	// mu orders writes with their snapshots.
	mu  sync.Mutex
	hub *hub
	cfg settings
}

// NewSQLiteStore opens or creates the database at path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	cfg := newSettings(opts)
	node, err := cfg.snowflakeNode()
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}

	return &SQLiteStore{
		db:   db,
		node: node,
		hub:  newHub(cfg.logger.Named("sqlite-repository")),
		cfg:  cfg,
	}, nil
}

// Create inserts a new report.
func (s *SQLiteStore) Create(ctx context.Context, e model.Evaluation) (string, error) {
	defer observe(backendSQLite, "create", time.Now())

	id := s.node.Generate().String()
	now := s.cfg.now().Unix()
	doc, err := model.EncodeDocument(e, now)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, document, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, string(doc), now, now,
	); err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}
	s.publishLocked(ctx)
	return id, nil
}

// Update rewrites the document of an existing report.
func (s *SQLiteStore) Update(ctx context.Context, id string, e model.Evaluation) error {
	defer observe(backendSQLite, "update", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	var createdAt int64
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM reports WHERE id = ?`, id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load report %s: %w", id, err)
	}

	doc, err := model.EncodeDocument(e, createdAt)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE reports SET document = ?, updated_at = ? WHERE id = ?`,
		string(doc), s.cfg.now().Unix(), id,
	); err != nil {
		return fmt.Errorf("update report %s: %w", id, err)
	}
	s.publishLocked(ctx)
	return nil
}

// Delete removes a report if present.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	defer observe(backendSQLite, "delete", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	s.publishLocked(ctx)
	return nil
}

// Subscribe streams snapshots until unsubscribed, ctx ends or the store closes.
func (s *SQLiteStore) Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := event{}
	reports, err := s.load(ctx)
	if err != nil {
		first.err = err
	} else {
		first.reports = reports
	}
	id, _ := s.hub.add(ctx, first, onSnapshot, onError)
	return func() { s.hub.remove(id) }
}

// Close ends all subscriptions and closes the database.
func (s *SQLiteStore) Close() error {
	s.hub.close()
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context) ([]model.Report, error) {
	defer observe(backendSQLite, "load", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM reports`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r, err := model.DecodeDocument(id, []byte(doc))
		if err != nil {
			s.cfg.logger.Warn(ctx, "skipping unreadable report", logger.String("id", id), logger.Error(err))
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	sortReports(out)
	return out, nil
}

func (s *SQLiteStore) publishLocked(ctx context.Context) {
	if s.hub.size() == 0 {
		return
	}
	reports, err := s.load(ctx)
	if err != nil {
		s.hub.fail(err)
		return
	}
	s.hub.publish(reports)
}
