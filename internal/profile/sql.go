package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bronze/internal/failure"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuoteIdent quotes a single identifier with double quotes, doubling any
// embedded quote. Column names from a source file are never spliced into SQL
// any other way.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BuildStatsQuery renders one aggregated query returning the row count followed
// by a (null_count, distinct_count) pair per column:
//
//	SELECT COUNT(*),
//	  SUM(CASE WHEN "a" IS NULL THEN 1 ELSE 0 END), COUNT(DISTINCT "a"),
//	  ...
//	FROM "t"
func BuildStatsQuery(table string, columns []string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("stats query: table must not be empty")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("stats query: at least one column is required")
	}

	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*)")
	for _, c := range columns {
		q := QuoteIdent(c)
		fmt.Fprintf(&sb, ",\n  SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END), COUNT(DISTINCT %s)", q, q)
	}
	sb.WriteString("\nFROM ")
	sb.WriteString(QuoteIdent(table))
	return sb.String(), nil
}

// SQL profiles columns of table with a single query.
func SQL(ctx context.Context, q Querier, table string, columns []string) ([]ColumnStat, error) {
	query, err := BuildStatsQuery(table, columns)
	if err != nil {
		return nil, err
	}

	var rows sql.NullInt64
	counts := make([]sql.NullInt64, 2*len(columns))
	dest := make([]any, 0, len(counts)+1)
	dest = append(dest, &rows)
	for i := range counts {
		dest = append(dest, &counts[i])
	}

	if err := q.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		return nil, fmt.Errorf("stats query: %w", err)
	}
	if rows.Int64 == 0 {
		return nil, failure.Arithmetic("source has zero rows; null and distinct fractions are undefined")
	}

	stats := make([]ColumnStat, len(columns))
	for i, name := range columns {
		s, err := NewColumnStat(name, counts[2*i].Int64, counts[2*i+1].Int64, rows.Int64)
		if err != nil {
			return nil, err
		}
		stats[i] = s
	}
	return stats, nil
}
