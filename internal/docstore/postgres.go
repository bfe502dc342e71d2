package docstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmhub-backend/internal/logger"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// PostgresStore keeps every collection in one JSONB table. Conditional
// writes are UPDATE ... WHERE doc @> expect, so the precondition is
// evaluated against the row version the update actually lands on.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	getQuery    = `SELECT doc FROM documents WHERE collection = $1 AND id = $2`
	upsertQuery = `INSERT INTO documents (collection, id, doc, updated_on) VALUES ($1, $2, $3::jsonb, $4)
	               ON CONFLICT (collection, id) DO UPDATE SET doc = documents.doc || EXCLUDED.doc, updated_on = EXCLUDED.updated_on`
	createQuery = `INSERT INTO documents (collection, id, doc, updated_on) VALUES ($1, $2, $3::jsonb, $4)
	               ON CONFLICT (collection, id) DO NOTHING`
	updateQuery = `UPDATE documents SET doc = doc || $3::jsonb, updated_on = $4
	               WHERE collection = $1 AND id = $2 AND doc @> $5::jsonb`
	queryQuery  = `SELECT id, doc FROM documents WHERE collection = $1 AND doc @> $2::jsonb ORDER BY id`
	deleteQuery = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	logger.StoreCall("get", collection, "id", id)
	var raw []byte
	err := s.db.QueryRowContext(ctx, getQuery, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.StoreResult("get", collection, err)
		return nil, err
	}
	fields, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	return s.Apply(ctx, SetOp(collection, id, fields))
}

func (s *PostgresStore) Apply(ctx context.Context, ops ...Op) error {
	logger.StoreCall("apply", "", "ops", len(ops))
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i, op := range ops {
		doc, err := json.Marshal(op.Fields)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", op.Collection, op.ID, err)
		}

		var res sql.Result
		switch {
		case op.Create:
			res, err = tx.ExecContext(ctx, createQuery, op.Collection, op.ID, string(doc), now)
		case op.Expect != nil:
			expect, encErr := json.Marshal(op.Expect)
			if encErr != nil {
				return fmt.Errorf("encode precondition %s/%s: %w", op.Collection, op.ID, encErr)
			}
			res, err = tx.ExecContext(ctx, updateQuery, op.Collection, op.ID, string(doc), now, string(expect))
		default:
			_, err = tx.ExecContext(ctx, upsertQuery, op.Collection, op.ID, string(doc), now)
		}
		if err != nil {
			logger.StoreResult("apply", op.Collection, err, "id", op.ID)
			return err
		}
		if res == nil {
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &PreconditionError{Index: i, Collection: op.Collection, ID: op.ID}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	logger.StoreResult("apply", "", nil, "ops", len(ops))
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	cond := make(Fields, len(filters))
	for _, f := range filters {
		cond[f.Field] = f.Value
	}
	filter, err := json.Marshal(cond)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	logger.StoreCall("query", collection, "filter", string(filter))
	rows, err := s.db.QueryContext(ctx, queryQuery, collection, string(filter))
	if err != nil {
		logger.StoreResult("query", collection, err)
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields, err := decode(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	logger.StoreCall("delete", collection, "id", id)
	res, err := s.db.ExecContext(ctx, deleteQuery, collection, id)
	if err != nil {
		logger.StoreResult("delete", collection, err, "id", id)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decode(raw []byte) (Fields, error) {
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return f, nil
}
