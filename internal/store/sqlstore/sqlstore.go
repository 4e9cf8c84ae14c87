// Package sqlstore persists store change sets in a single entities table.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"fixture-graph/internal/db"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/store"

	"go.uber.org/zap"
)

var _ store.Backend = (*Backend)(nil)

type Backend struct {
	conn    *sql.DB
	dialect db.Dialect
}

func New(conn *sql.DB, d db.Dialect) *Backend {
	return &Backend{conn: conn, dialect: d}
}

// Load returns every stored entity ordered by insertion sequence.
func (b *Backend) Load(ctx context.Context) ([]store.Record, error) {
	rows, err := b.conn.QueryContext(ctx, `SELECT kind, id, seq, body FROM entities ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var (
			rec  store.Record
			kind string
			body string
		)
		if err := rows.Scan(&kind, &rec.ID, &rec.Seq, &body); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		rec.Kind = store.Kind(kind)
		rec.Body = []byte(body)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return out, nil
}

// Commit writes the whole change set in one SQL transaction.
func (b *Backend) Commit(ctx context.Context, changes []store.Change) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "sqlstore"),
		zap.Int("changes", len(changes)),
	)

	tx, err := b.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		if err := b.apply(ctx, tx, c); err != nil {
			log.Error("commit failed",
				zap.String("op", c.Op.String()),
				zap.String("kind", string(c.Kind)),
				zap.String("id", c.ID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debug("change set committed")
	return nil
}

func (b *Backend) apply(ctx context.Context, tx *sql.Tx, c store.Change) error {
	switch c.Op {
	case store.OpInsert:
		body, err := store.Encode(c.Entity)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", c.Kind, c.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			b.dialect.Rebind(`INSERT INTO entities (kind, id, seq, body) VALUES (?, ?, ?, ?)`),
			string(c.Kind), c.ID, c.Seq, string(body),
		)
		if err != nil {
			return fmt.Errorf("insert %s %s: %w", c.Kind, c.ID, err)
		}
		return nil

	case store.OpReplace:
		body, err := store.Encode(c.Entity)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", c.Kind, c.ID, err)
		}
		res, err := tx.ExecContext(ctx,
			b.dialect.Rebind(`UPDATE entities SET body = ? WHERE kind = ? AND id = ?`),
			string(body), string(c.Kind), c.ID,
		)
		if err != nil {
			return fmt.Errorf("update %s %s: %w", c.Kind, c.ID, err)
		}
		return expectOne(res, c)

	case store.OpRemove:
		res, err := tx.ExecContext(ctx,
			b.dialect.Rebind(`DELETE FROM entities WHERE kind = ? AND id = ?`),
			string(c.Kind), c.ID,
		)
		if err != nil {
			return fmt.Errorf("delete %s %s: %w", c.Kind, c.ID, err)
		}
		return expectOne(res, c)

	default:
		return fmt.Errorf("unknown change op %v", c.Op)
	}
}

func expectOne(res sql.Result, c store.Change) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", c.Op, c.Kind, c.ID, err)
	}
	if n != 1 {
		return fmt.Errorf("%s %s %s: affected %d rows, want 1", c.Op, c.Kind, c.ID, n)
	}
	return nil
}
