package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	// Import the Postgres driver.
	_ "github.com/lib/pq"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/pricofy/omnicode/internal/domain"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		source_language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		source_code TEXT NOT NULL,
		target_code TEXT NOT NULL,
		error_context TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversions_user_created ON conversions (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS app_state (
		user_id TEXT PRIMARY KEY,
		source_code TEXT NOT NULL,
		target_code TEXT NOT NULL,
		source_language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

// SQLStore is a Store backed by SQLite (local) or Postgres (hosted).
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// OpenSQL opens and migrates a SQL store.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	s := &SQLStore{db: db, driver: driver, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteDSN appends the connection pragmas, keeping any query the DSN
// already carries. Each pragma must be prefixed with `_pragma=` for
// modernc.org/sqlite.
func sqliteDSN(dsn string) string {
	const pragmas = "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + pragmas
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate")
		}
	}
	return nil
}

// rebind converts ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLStore) GetHistory(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, source_language, target_language, source_code, target_code, error_context, created_at
		FROM conversions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`), userID, HistoryLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer rows.Close()

	list := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.SourceLang, &entry.TargetLang, &entry.SourceCode, &entry.TargetCode, &entry.ErrorContext, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan history")
		}
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read history")
	}
	return list, nil
}

func (s *SQLStore) SaveConversion(ctx context.Context, userID string, entry domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO conversions (id, user_id, source_language, target_language, source_code, target_code, error_context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, userID, entry.SourceLang, entry.TargetLang, entry.SourceCode, entry.TargetCode, entry.ErrorContext, entry.CreatedAt.UnixNano())
	if err != nil {
		return errors.Wrap(err, "failed to save conversion")
	}
	return nil
}

func (s *SQLStore) DeleteHistory(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM conversions WHERE user_id = ?`), userID); err != nil {
		return errors.Wrap(err, "failed to delete history")
	}
	return nil
}

func (s *SQLStore) SaveState(ctx context.Context, userID string, state domain.EditorState) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO app_state (user_id, source_code, target_code, source_language, target_language, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			source_code = excluded.source_code,
			target_code = excluded.target_code,
			source_language = excluded.source_language,
			target_language = excluded.target_language,
			updated_at = excluded.updated_at`),
		userID, state.SourceCode, state.TargetCode, state.SourceLang, state.TargetLang, s.now().UnixNano())
	if err != nil {
		return errors.Wrap(err, "failed to save state")
	}
	return nil
}

func (s *SQLStore) GetState(ctx context.Context, userID string) (*domain.EditorState, error) {
	var state domain.EditorState
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT source_code, target_code, source_language, target_language
		FROM app_state
		WHERE user_id = ?`), userID).
		Scan(&state.SourceCode, &state.TargetCode, &state.SourceLang, &state.TargetLang)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get state")
	}
	return &state, nil
}

func (s *SQLStore) Configured() bool { return true }

func (s *SQLStore) Close() error {
	return s.db.Close()
}
