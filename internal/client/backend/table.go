package backend

import (
	"context"
	"net/http"
	"net/url"
	"sort"
)

const restPrefix = "/rest/v1/"

// Table addresses one table of the REST API.
type Table struct {
	c    *Client
	name string
}

// From selects the table to operate on.
func (c *Client) From(name string) *Table {
	return &Table{c: c, name: name}
}

// SelectQuery reads rows from a table.
type SelectQuery struct {
	t     *Table
	query url.Values
}

// Select starts a read of the given comma-separated columns ("*" for all).
func (t *Table) Select(columns string) *SelectQuery {
	return &SelectQuery{t: t, query: url.Values{"select": {columns}}}
}

// Order sorts the result by column.
func (q *SelectQuery) Order(column string, ascending bool) *SelectQuery {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.query.Add("order", column+"."+dir)
	return q
}

// Execute runs the query and decodes the rows into dst, which must be a
// pointer to a slice.
func (q *SelectQuery) Execute(ctx context.Context, dst any) error {
	return q.t.c.do(ctx, request{
		method: http.MethodGet,
		path:   restPrefix + q.t.name,
		query:  q.query,
		token:  q.t.c.accessToken(ctx),
	}, dst)
}

// Insert adds row to the table.
func (t *Table) Insert(ctx context.Context, row any) error {
	return t.c.do(ctx, request{
		method: http.MethodPost,
		path:   restPrefix + t.name,
		body:   row,
		token:  t.c.accessToken(ctx),
		header: http.Header{"Prefer": {"return=minimal"}},
	}, nil)
}

// DeleteQuery removes rows from a table.
type DeleteQuery struct {
	t     *Table
	query url.Values
}

// Delete starts a delete. Without a filter the service rejects it.
func (t *Table) Delete() *DeleteQuery {
	return &DeleteQuery{t: t, query: url.Values{}}
}

// Match restricts the delete to rows whose columns equal the given values.
func (q *DeleteQuery) Match(values map[string]string) *DeleteQuery {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		q.query.Add(col, "eq."+values[col])
	}
	return q
}

// Execute runs the delete.
func (q *DeleteQuery) Execute(ctx context.Context) error {
	return q.t.c.do(ctx, request{
		method: http.MethodDelete,
		path:   restPrefix + q.t.name,
		query:  q.query,
		token:  q.t.c.accessToken(ctx),
	}, nil)
}
