package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier hands out scripted rows in call order and records the SQL it
// was asked to run.
type fakeQuerier struct {
	rows      []pgx.Row
	queryRows pgx.Rows
	queries   []string
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return f.queryRows, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type aggRow struct {
	category string
	count    int
	minutes  int
}

// fakeAggRows yields scripted category aggregates, then surfaces err from
// Err() the way a broken connection does mid-iteration.
type fakeAggRows struct {
	rows []aggRow
	err  error
	pos  int
}

func (r *fakeAggRows) Next() bool {
	if r.pos < len(r.rows) {
		r.pos++
		return true
	}
	return false
}

func (r *fakeAggRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	*(dest[0].(*string)) = row.category
	*(dest[1].(*int)) = row.count
	*(dest[2].(*int)) = row.minutes
	return nil
}

func (r *fakeAggRows) Err() error                                   { return r.err }
func (r *fakeAggRows) Close()                                       {}
func (r *fakeAggRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeAggRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeAggRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeAggRows) RawValues() [][]byte                          { return nil }
func (r *fakeAggRows) Conn() *pgx.Conn                              { return nil }
