package sqlstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/db"
	"fixture-graph/internal/store"
)

const kindNote store.Kind = "test.note"

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (n note) EntityID() string { return n.ID }

func TestLoad(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	rows := sqlmock.NewRows([]string{"kind", "id", "seq", "body"}).
		AddRow("test.note", "n2", 1, `{"id":"n2","text":"b"}`).
		AddRow("test.note", "n1", 2, `{"id":"n1","text":"a"}`)
	mock.ExpectQuery("SELECT kind, id, seq, body FROM entities ORDER BY seq").
		WillReturnRows(rows)

	recs, err := New(conn, db.SQLite).Load(context.Background())
	require.NoError(t, err)

	want := []store.Record{
		{Kind: kindNote, ID: "n2", Seq: 1, Body: []byte(`{"id":"n2","text":"b"}`)},
		{Kind: kindNote, ID: "n1", Seq: 2, Body: []byte(`{"id":"n1","text":"a"}`)},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO entities \(kind, id, seq, body\) VALUES \(\$1, \$2, \$3, \$4\)`).
			WithArgs("test.note", "n1", int64(3), `{"id":"n1","text":"hello"}`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE entities SET body = \$1 WHERE kind = \$2 AND id = \$3`).
			WithArgs(`{"id":"n0","text":"edited"}`, "test.note", "n0").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM entities WHERE kind = \$1 AND id = \$2`).
			WithArgs("test.note", "old").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = New(conn, db.Postgres).Commit(context.Background(), []store.Change{
			{Op: store.OpInsert, Kind: kindNote, ID: "n1", Seq: 3, Entity: note{ID: "n1", Text: "hello"}},
			{Op: store.OpReplace, Kind: kindNote, ID: "n0", Seq: 1, Entity: note{ID: "n0", Text: "edited"}},
			{Op: store.OpRemove, Kind: kindNote, ID: "old"},
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExecErrorRollsBack", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO entities").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = New(conn, db.SQLite).Commit(context.Background(), []store.Change{
			{Op: store.OpInsert, Kind: kindNote, ID: "n1", Seq: 1, Entity: note{ID: "n1"}},
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowRollsBack", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM entities").
			WithArgs("test.note", "ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = New(conn, db.SQLite).Commit(context.Background(), []store.Change{
			{Op: store.OpRemove, Kind: kindNote, ID: "ghost"},
		})
		assert.ErrorContains(t, err, "affected 0 rows")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStoreRoundTrip(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT kind, id, seq, body FROM entities").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "seq", "body"}).
			AddRow("test.note", "n1", 4, `{"id":"n1","text":"kept"}`))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO entities").
		WithArgs("test.note", "n2", int64(5), `{"id":"n2","text":"new"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	codec := store.Codec{}
	store.Register[note](codec, kindNote)

	s, err := store.Open(context.Background(), codec, store.WithBackend(New(conn, db.SQLite)))
	require.NoError(t, err)

	_, err = s.Update(context.Background(), func(tx *store.Tx) error {
		return tx.Insert(kindNote, note{ID: "n2", Text: "new"})
	})
	require.NoError(t, err)

	got := store.List[note](s.Snapshot(), kindNote)
	assert.Equal(t, []note{{ID: "n1", Text: "kept"}, {ID: "n2", Text: "new"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
