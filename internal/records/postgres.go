package records

import (
	"context"
	"database/sql"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/nguyentantai21042004/lecture-recap/internal/apperr"
)

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "0001_summary_records",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS summary_records (
					id            BIGSERIAL PRIMARY KEY,
					summary_id    TEXT NOT NULL,
					document_name TEXT NOT NULL,
					created_at    TIMESTAMPTZ NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS summary_records_summary_id_idx ON summary_records (summary_id)`,
			},
			Down: []string{`DROP TABLE IF EXISTS summary_records`},
		},
	},
}

type implPostgres struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and applies pending migrations.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if _, err := migrate.Exec(db, "postgres", migrations, migrate.Up); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return db, nil
}

// NewPostgres creates a Store appending rows to summary_records.
// Every fetch appends a row, matching the item-per-fetch DynamoDB behavior.
func NewPostgres(db *sql.DB) Store {
	return &implPostgres{db: db}
}

func (s *implPostgres) Put(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO summary_records (summary_id, document_name, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.db.ExecContext(ctx, query, rec.SummaryID, rec.DocumentName, rec.CreatedAt); err != nil {
		return apperr.New(apperr.KindStorage, "records put", fmt.Errorf("inserting summary record: %w", err))
	}
	return nil
}
