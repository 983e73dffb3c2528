package datastore

// BookFilter is the request-scoped set of optional search constraints.
// A zero-valued field contributes no clause.
type BookFilter struct {
	ID      *int64
	Title   string
	Author  string // author name, resolved to an author id inside the query
	Genre   string
	PubYear string
}

const baseBookQuery = `SELECT id, author_id, title, pub_year, genre FROM books`

// buildBookQuery turns a filter into a single parameterized query plus its
// ordered argument list. An id constraint wins outright: every other filter
// is ignored so lookups by identity stay exact. The remaining filters are
// ANDed in a fixed order (title, author, genre, pub_year) to keep the
// generated SQL deterministic. Filter values never appear in the query text;
// they only ever travel as bound parameters.
func buildBookQuery(filter BookFilter) (string, []any) {
	if filter.ID != nil {
		return baseBookQuery + " WHERE id = ?", []any{*filter.ID}
	}

	query := baseBookQuery
	var args []any

	addClause := func(clause string, value any) {
		if len(args) == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
		args = append(args, value)
	}

	if filter.Title != "" {
		addClause("title = ?", filter.Title)
	}
	if filter.Author != "" {
		addClause("author_id = (SELECT id FROM authors WHERE name = ?)", filter.Author)
	}
	if filter.Genre != "" {
		addClause("genre = ?", filter.Genre)
	}
	if filter.PubYear != "" {
		addClause("pub_year = ?", filter.PubYear)
	}

	return query, args
}
