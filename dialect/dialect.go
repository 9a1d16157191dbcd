// Package dialect papers over the placeholder differences between the SQL
// backends the ledger runs on.
package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func Parse(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(s)) {
	case SQLite, "sqlite3", "":
		return SQLite, nil
	case Postgres, "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("unknown store driver %q", s)
}

// Rebind rewrites '?' placeholders to '$n' for postgres. Queries in this repo
// never contain a literal '?'.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GooseDialect is the name goose uses for this backend.
func (d Dialect) GooseDialect() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// DriverName is the database/sql driver registered for this backend.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}
