package ddl

import (
	"fmt"
	"sort"
	"strings"
)

// Style holds the per-dialect choices for rendering a CREATE TABLE body.
type Style struct {
	// Dialect prefixes error messages, e.g. "sqlite ddl".
	Dialect string
	// Quote quotes a single identifier segment.
	Quote func(string) string
	// KeyNotNull forces NOT NULL on primary-key columns.
	KeyNotNull bool
	// SortKey lists PRIMARY KEY columns alphabetically.
	SortKey bool
}

// QuoteFQN quotes each dot-separated segment of fqn. Blank segments are
// dropped, so " main . t" and "main.t" render the same.
func (s Style) QuoteFQN(fqn string) string {
	var out []string
	for _, p := range strings.Split(fqn, ".") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, s.Quote(p))
		}
	}
	return strings.Join(out, ".")
}

// Lines validates t and returns its quoted FQN and one definition line per
// column, followed by a PRIMARY KEY constraint when any column is a key:
//
//	"col" TYPE [NOT NULL] [DEFAULT expr]
func (s Style) Lines(t TableDef) (string, []string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", nil, fmt.Errorf("%s: table FQN must not be empty", s.Dialect)
	}
	if len(t.Columns) == 0 {
		return "", nil, fmt.Errorf("%s: at least one column is required", s.Dialect)
	}

	lines := make([]string, 0, len(t.Columns)+1)
	var keys []string
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", nil, fmt.Errorf("%s: column with empty name in table %s", s.Dialect, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", nil, fmt.Errorf("%s: column %s missing SQLType", s.Dialect, c.Name)
		}

		name := s.Quote(c.Name)
		line := name + " " + typ
		if !c.Nullable || (c.PrimaryKey && s.KeyNotNull) {
			line += " NOT NULL"
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			line += " DEFAULT " + def
		}
		lines = append(lines, line)
		if c.PrimaryKey {
			keys = append(keys, name)
		}
	}

	if len(keys) > 0 {
		if s.SortKey {
			sort.Strings(keys)
		}
		lines = append(lines, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}
	return s.QuoteFQN(fqn), lines, nil
}

// CreateIfNotExists renders the portable CREATE TABLE IF NOT EXISTS form used
// by every dialect that supports it.
func (s Style) CreateIfNotExists(t TableDef) (string, error) {
	fqn, lines, err := s.Lines(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", fqn, strings.Join(lines, ",\n  ")), nil
}
