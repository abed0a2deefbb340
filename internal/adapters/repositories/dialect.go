package repositories

import (
	"delivery-allocation-service/internal/platform/db"
	"strconv"
	"strings"
)

// Dialect adapts portable queries written with "?" placeholders to a driver.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// DialectFor returns the dialect for a driver name accepted by db.Open.
func DialectFor(driver string) Dialect {
	if db.NormalizeDriver(driver) == db.DriverPostgres {
		return DialectPostgres
	}
	return DialectSQLite
}

// Rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
// Queries must not contain a literal "?".
func (d Dialect) Rebind(q string) string {
	if d != DialectPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
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

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}
