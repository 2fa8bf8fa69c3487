package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/faeln1/alerta-roja/internal/domain/community"
	"github.com/lib/pq"
)

// Dialect selects the DDL flavour of the SQL community repository. Queries
// use $n placeholders, which both postgres and sqlite accept.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type sqlCommunityRepo struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLCommunityRepo builds a community repository on top of an open
// database handle. Members are stored as one JSON document per community.
func NewSQLCommunityRepo(db *sql.DB, dialect Dialect) (CommunityRepository, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}
	repo := &sqlCommunityRepo{db: db, dialect: dialect}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *sqlCommunityRepo) ensureSchema() error {
	var createTable string
	switch r.dialect {
	case DialectPostgres:
		createTable = `
        CREATE TABLE IF NOT EXISTS communities (
            name TEXT PRIMARY KEY,
            chat_id TEXT NOT NULL DEFAULT '',
            members JSONB NOT NULL DEFAULT '[]'::jsonb,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	case DialectSQLite:
		createTable = `
        CREATE TABLE IF NOT EXISTS communities (
            name TEXT PRIMARY KEY,
            chat_id TEXT NOT NULL DEFAULT '',
            members TEXT NOT NULL DEFAULT '[]',
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`
	default:
		return fmt.Errorf("unsupported dialect %q", r.dialect)
	}
	_, err := r.db.Exec(createTable)
	return err
}

func (r *sqlCommunityRepo) Get(ctx context.Context, name string) (*community.Community, error) {
	key, err := normalizeKey(name)
	if err != nil {
		return nil, err
	}
	const query = `SELECT chat_id, members FROM communities WHERE name = $1`
	var (
		chatID  string
		members []byte
	)
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&chatID, &members); err != nil {
		return nil, r.mapError(err)
	}
	c := &community.Community{Name: key, ChatID: community.TelegramID(chatID)}
	if err := json.Unmarshal(members, &c.Miembros); err != nil {
		return nil, fmt.Errorf("decode members of %s: %w", key, err)
	}
	if c.Miembros == nil {
		c.Miembros = []community.Member{}
	}
	return c, nil
}

func (r *sqlCommunityRepo) Save(ctx context.Context, c *community.Community) error {
	key, err := normalizeKey(c.Name)
	if err != nil {
		return err
	}
	members := c.Miembros
	if members == nil {
		members = []community.Member{}
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO communities (name, chat_id, members, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name)
        DO UPDATE SET chat_id = EXCLUDED.chat_id,
                      members = EXCLUDED.members,
                      updated_at = EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, query, key, c.ChatID.String(), string(membersJSON), time.Now().UTC())
	return r.mapError(err)
}

func (r *sqlCommunityRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM communities ORDER BY name`)
	if err != nil {
		return nil, r.mapError(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *sqlCommunityRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCommunityNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrCommunityConflict
		case "22P02", "23502":
			return fmt.Errorf("%w: %s", ErrInvalidCommunityName, pqErr.Message)
		}
	}
	return err
}
