package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":                    `"plain"`,
		"with space":               `"with space"`,
		`we"ird; DROP TABLE x; --`: `"we""ird; DROP TABLE x; --"`,
		`""`:                       `""""""`,
		"":                         `""`,
	}
	for in, want := range tests {
		require.Equal(t, want, QuoteIdent(in), "QuoteIdent(%q)", in)
	}
}

func TestBuildStatsQuery(t *testing.T) {
	t.Parallel()

	got, err := BuildStatsQuery("stage", []string{"a", `b"c`})
	require.NoError(t, err)
	want := "SELECT COUNT(*),\n" +
		`  SUM(CASE WHEN "a" IS NULL THEN 1 ELSE 0 END), COUNT(DISTINCT "a"),` + "\n" +
		`  SUM(CASE WHEN "b""c" IS NULL THEN 1 ELSE 0 END), COUNT(DISTINCT "b""c")` + "\n" +
		`FROM "stage"`
	require.Equal(t, want, got)
}

func TestBuildStatsQuery_OneStatementForAllColumns(t *testing.T) {
	t.Parallel()

	cols := make([]string, 50)
	for i := range cols {
		cols[i] = strings.Repeat("x", i+1)
	}
	q, err := BuildStatsQuery("t", cols)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(q, "SELECT"))
	require.Equal(t, 50, strings.Count(q, "COUNT(DISTINCT"))
}

func TestBuildStatsQuery_Errors(t *testing.T) {
	t.Parallel()

	_, err := BuildStatsQuery(" ", []string{"a"})
	require.Error(t, err)
	_, err = BuildStatsQuery("t", nil)
	require.Error(t, err)
}
