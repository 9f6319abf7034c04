package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-skillsprint"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateClientSession = `CREATE TABLE IF NOT EXISTS client_session (
    name TEXT NOT NULL PRIMARY KEY,
    value TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SessionEntryModel is the Bun model for one persisted session field.
type SessionEntryModel struct {
	bun.BaseModel `bun:"table:client_session"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,default:current_timestamp"`
}

var _ skillsprint.Store = (*SessionStore)(nil)

// SessionStore implements skillsprint.Store on the local profile database.
type SessionStore struct {
	db *bun.DB
}

// NewSessionStore creates a new store. Call EnsureSchema before first use.
func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Open connects to a SQLite profile database
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	// a single writer keeps in-memory databases shared across calls
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// EnsureSchema creates the session table if missing
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteCreateClientSession)
	return err
}

// Get implements skillsprint.Store. Missing keys read as empty.
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	var model SessionEntryModel
	err := s.db.NewSelect().
		Model(&model).
		Where("name = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return model.Value, nil
}

// Set implements skillsprint.Store.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	model := &SessionEntryModel{
		Name:      key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Clear implements skillsprint.Store. The three session keys go in one
// statement so a reader never sees a partial session.
func (s *SessionStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*SessionEntryModel)(nil)).
		Where("name IN (?)", bun.In(skillsprint.SessionKeys)).
		Exec(ctx)
	return err
}
