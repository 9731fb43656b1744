package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"crowdfund/internal/infra"
)

// call records one statement issued against fakeSQL.
type call struct {
	query string
	args  []any
}

// fakeSQL answers statements from canned results keyed by the inline
// query constant. Each queued result is consumed once.
type fakeSQL struct {
	rows   map[string][][][]any // query -> queue of row sets
	errs   map[string]error
	tags   map[string]int64
	calls  []call
	txRuns int
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{
		rows: make(map[string][][][]any),
		errs: make(map[string]error),
		tags: make(map[string]int64),
	}
}

func (f *fakeSQL) on(query string, rows ...[]any) *fakeSQL {
	f.rows[query] = append(f.rows[query], rows)
	return f
}

func (f *fakeSQL) next(query string) [][]any {
	q := f.rows[query]
	if len(q) == 0 {
		return nil
	}
	f.rows[query] = q[1:]
	return q[0]
}

func (f *fakeSQL) record(query string, args []any) {
	f.calls = append(f.calls, call{query: query, args: args})
}

func (f *fakeSQL) called(query string) (call, bool) {
	for _, c := range f.calls {
		if c.query == query {
			return c, true
		}
	}
	return call{}, false
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query, args)
	if err := f.errs[query]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", f.tags[query])), nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query, args)
	if err := f.errs[query]; err != nil {
		return valuesRow{err: err}
	}
	rows := f.next(query)
	if len(rows) == 0 {
		return valuesRow{err: pgx.ErrNoRows}
	}
	return valuesRow{values: rows[0]}
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return &valuesRows{rows: f.next(query)}, nil
}

func (f *fakeSQL) InTx(_ context.Context, fn func(infra.SQLExecutor) error) error {
	f.txRuns++
	return fn(f)
}

type valuesRow struct {
	values []any
	err    error
}

func (r valuesRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

// assign copies canned values into scan targets. A nil value leaves the
// target zeroed, which mirrors SQL NULL for pointer targets.
func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: have %d values, %d targets", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		val := reflect.ValueOf(v)
		switch {
		case val.Type().AssignableTo(target.Type()):
			target.Set(val)
		case target.Kind() == reflect.Pointer && val.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(val)
			target.Set(p)
		case val.Type().ConvertibleTo(target.Type()):
			target.Set(val.Convert(target.Type()))
		default:
			return fmt.Errorf("scan: column %d: cannot assign %T to %s", i, v, target.Type())
		}
	}
	return nil
}

type valuesRows struct {
	rows [][]any
	idx  int
}

func (r *valuesRows) Close()                                       {}
func (r *valuesRows) Err() error                                   { return nil }
func (r *valuesRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *valuesRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *valuesRows) RawValues() [][]byte                          { return nil }
func (r *valuesRows) Conn() *pgx.Conn                              { return nil }

func (r *valuesRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *valuesRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *valuesRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return pgx.ErrNoRows
	}
	return assign(r.rows[r.idx-1], dest)
}
