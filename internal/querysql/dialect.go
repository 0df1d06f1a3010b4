package querysql

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect selects placeholder style and dialect-specific operators.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ValidDialects lists the supported dialects in display order.
var ValidDialects = []string{string(DialectSQLite), string(DialectPostgres), string(DialectMySQL)}

// ParseDialect validates a dialect name. The empty string means SQLite.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(name)); d {
	case "":
		return DialectSQLite, nil
	case DialectSQLite, DialectPostgres, DialectMySQL:
		return d, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (valid: %s)", name, strings.Join(ValidDialects, ", "))
	}
}

// statementBuilder returns a squirrel builder with the dialect's placeholders.
func (d Dialect) statementBuilder() squirrel.StatementBuilderType {
	switch d {
	case DialectPostgres:
		// PostgreSQL uses $1, $2, ... placeholders
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	default:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	}
}

// caseInsensitiveLike renders ILIKE natively on PostgreSQL and as an UPPER()
// comparison elsewhere.
func (d Dialect) caseInsensitiveLike(field string, pattern string) squirrel.Sqlizer {
	if d == DialectPostgres {
		return squirrel.ILike{field: pattern}
	}
	return squirrel.Like{"UPPER(" + field + ")": strings.ToUpper(pattern)}
}

// columnLike is caseInsensitiveLike for two columns.
func (d Dialect) columnLike(field, column string) squirrel.Sqlizer {
	if d == DialectPostgres {
		return squirrel.Expr(field + " ILIKE " + column)
	}
	return squirrel.Expr("UPPER(" + field + ") LIKE UPPER(" + column + ")")
}
