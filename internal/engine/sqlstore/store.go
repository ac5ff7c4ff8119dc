// Package sqlstore implements the query engine on top of a relational
// triples table, using SQLite or PostgreSQL through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/sparql"
)

// schema is applied statement by statement; both dialects accept it
var schema = []string{
	`CREATE TABLE IF NOT EXISTS triples (
	graph TEXT NOT NULL,
	seq BIGINT NOT NULL,
	subject TEXT NOT NULL,
	subject_value TEXT NOT NULL,
	predicate TEXT NOT NULL,
	predicate_value TEXT NOT NULL,
	object TEXT NOT NULL,
	object_value TEXT NOT NULL,
	kind TEXT NOT NULL,
	lang TEXT NOT NULL,
	datatype TEXT NOT NULL,
	PRIMARY KEY (graph, seq)
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_triples_spo ON triples (graph, subject, predicate, object)`,
	`CREATE INDEX IF NOT EXISTS idx_triples_po ON triples (graph, predicate, object)`,
}

// Store is a triple store backed by a SQL database. It is safe for
// concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// Open connects to the database, verifies the connection and creates the
// schema
func Open(ctx context.Context, dialect Dialect, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	s := New(db, dialect, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool. The schema is not touched.
func New(db *sql.DB, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Migrate creates the triples table and its indexes if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize triples table: %w", err)
		}
	}
	return nil
}

// Load replaces the contents of the named graph in one transaction.
// Duplicate triples in the input are stored once.
func (s *Store) Load(ctx context.Context, graph string, triples []rdf.Triple) (err error) {
	if graph == "" {
		return fmt.Errorf("graph name must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	deleteQuery := fmt.Sprintf("DELETE FROM triples WHERE graph = %s", s.dialect.placeholder(1))
	res, err := tx.ExecContext(ctx, deleteQuery, graph)
	if err != nil {
		return fmt.Errorf("failed to clear graph <%s>: %w", graph, err)
	}
	replaced, _ := res.RowsAffected()

	var next int64

	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range triples {
		res, execErr := stmt.ExecContext(ctx,
			graph, next,
			t.Subject.String(), t.Subject.Value,
			t.Predicate.String(), t.Predicate.Value,
			t.Object.String(), t.Object.Value,
			t.Object.Kind.String(), t.Object.Lang, t.Object.Datatype,
		)
		if execErr != nil {
			err = fmt.Errorf("failed to insert triple %s: %w", t, execErr)
			return err
		}
		next++
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit graph <%s>: %w", graph, err)
	}

	s.logger.Debug("graph loaded",
		zap.String("graph", graph),
		zap.String("dialect", s.dialect.String()),
		zap.Int("triples", len(triples)),
		zap.Int("inserted", inserted),
		zap.Int64("replaced", replaced),
	)
	return nil
}

func (s *Store) insertSQL() string {
	ph := make([]interface{}, 11)
	for i := range ph {
		ph[i] = s.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf(`INSERT INTO triples (graph, seq, subject, subject_value, predicate, predicate_value, object, object_value, kind, lang, datatype) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s) ON CONFLICT DO NOTHING`, ph...)
}

// Execute parses query, compiles it to SQL and returns the selected values
// in evaluation order
func (s *Store) Execute(ctx context.Context, query string, graph string) ([]string, error) {
	q, err := sparql.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	from, err := q.GraphIRI()
	if err != nil {
		return nil, err
	}
	if from != graph {
		return nil, fmt.Errorf("query targets graph <%s> but <%s> was requested", from, graph)
	}

	sqlText, args, ok, err := compile(s.dialect, q, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var value, term string
		if err := rows.Scan(&value, &term); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if q.Distinct {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	s.logger.Debug("sql query executed",
		zap.String("graph", graph),
		zap.Int("rows", len(out)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// Graphs returns the names of the graphs in the store
func (s *Store) Graphs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT graph FROM triples ORDER BY graph")
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	graphs := make([]string, 0)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}
