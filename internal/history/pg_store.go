package history

import (
	"context"
	"fmt"

	"locmerge/internal/review"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schema = `CREATE TABLE IF NOT EXISTS review_decisions (
	id          BIGSERIAL PRIMARY KEY,
	entry_id    TEXT NOT NULL,
	search      TEXT NOT NULL,
	replacement TEXT NOT NULL,
	before_text TEXT NOT NULL,
	after_text  TEXT NOT NULL,
	decision    TEXT NOT NULL,
	automatic   BOOLEAN NOT NULL DEFAULT FALSE,
	work_file   TEXT NOT NULL,
	decided_at  TIMESTAMPTZ NOT NULL
)`

// PGStore keeps the decision log in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to databaseURL and ensures the table exists.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create review_decisions: %w", err)
	}

	log.Debug().Msg("Connected to PostgreSQL")
	return &PGStore{pool: pool}, nil
}

// Append inserts all entries in one transaction.
func (s *PGStore) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO review_decisions
			(entry_id, search, replacement, before_text, after_text, decision, automatic, work_file, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.Search, e.Replacement, e.Before, e.After, string(e.Decision), e.Automatic, e.WorkFile, e.At)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert review decisions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review decisions: %w", err)
	}

	log.Debug().Int("entries", len(entries)).Msg("Stored review decisions")
	return nil
}

// List returns every stored decision, oldest first.
func (s *PGStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT entry_id, search, replacement, before_text, after_text,
		decision, automatic, work_file, decided_at
		FROM review_decisions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query review decisions: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var decision string
		err := row.Scan(&e.ID, &e.Search, &e.Replacement, &e.Before, &e.After,
			&decision, &e.Automatic, &e.WorkFile, &e.At)
		e.Decision = review.Decision(decision)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan review decisions: %w", err)
	}
	return entries, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}
