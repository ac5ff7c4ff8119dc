package sqlstore

import (
	"fmt"
	"strings"

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/sparql"
)

// Dialect selects the SQL flavour and database/sql driver
type Dialect int

const (
	// SQLite uses github.com/mattn/go-sqlite3 and '?' placeholders
	SQLite Dialect = iota
	// Postgres uses github.com/jackc/pgx/v5/stdlib and '$n' placeholders
	Postgres
)

// String returns the dialect name
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Driver returns the database/sql driver name for the dialect
func (d Dialect) Driver() string {
	switch d {
	case Postgres:
		return "pgx"
	default:
		return "sqlite3"
	}
}

// ParseDialect maps a configuration value to a Dialect
func ParseDialect(kind string) (Dialect, error) {
	switch strings.ToLower(kind) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unknown SQL dialect %q", kind)
	}
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// positions of a triple pattern and the columns holding their key and value
var (
	keyColumns   = [3]string{"subject", "predicate", "object"}
	valueColumns = [3]string{"subject_value", "predicate_value", "object_value"}
)

type binding struct {
	key   string
	value string
}

// compiler turns a parsed query into one SQL statement. Every UNION
// alternative becomes a conjunctive SELECT over self-joined triples; the
// alternatives are combined with UNION ALL and ordered so that rows come
// back in the order the in-memory evaluator would produce them. DISTINCT is
// applied by the caller on the returned term keys.
type compiler struct {
	dialect Dialect
	query   *sparql.Query
	ns      *rdf.Namespaces
	args    []interface{}
}

func (c *compiler) bind(v interface{}) string {
	c.args = append(c.args, v)
	return c.dialect.placeholder(len(c.args))
}

// compile returns the SQL text and arguments for q against graph. ok is
// false when no alternative can bind the selected variable.
func compile(d Dialect, q *sparql.Query, graph string) (query string, args []interface{}, ok bool, err error) {
	c := &compiler{dialect: d, query: q, ns: q.Namespaces(), args: make([]interface{}, 0)}

	alternatives := make([][]sparql.TriplePattern, 0)
	width := 0
	for _, conj := range conjunctions(q.Where) {
		if !mentions(conj, q.Variable) {
			continue
		}
		alternatives = append(alternatives, conj)
		if len(conj) > width {
			width = len(conj)
		}
	}
	if len(alternatives) == 0 {
		return "", nil, false, nil
	}

	parts := make([]string, 0, len(alternatives))
	for i, conj := range alternatives {
		part, err := c.conjunction(i, conj, q.Variable, graph, width)
		if err != nil {
			return "", nil, false, err
		}
		parts = append(parts, part)
	}

	var sql strings.Builder
	sql.WriteString("SELECT value, term FROM (\n")
	sql.WriteString(strings.Join(parts, "\nUNION ALL\n"))
	sql.WriteString("\n) r ORDER BY part")
	for i := 0; i < width; i++ {
		fmt.Fprintf(&sql, ", o%d", i)
	}
	return sql.String(), c.args, true, nil
}

func (c *compiler) conjunction(part int, patterns []sparql.TriplePattern, variable, graph string, width int) (string, error) {
	vars := make(map[string]binding)
	from := make([]string, 0, len(patterns))
	where := make([]string, 0, len(patterns)*4)

	for i, tp := range patterns {
		alias := fmt.Sprintf("t%d", i)
		from = append(from, "triples "+alias)
		where = append(where, fmt.Sprintf("%s.graph = %s", alias, c.bind(graph)))

		for pos, n := range tp.Nodes() {
			key := alias + "." + keyColumns[pos]
			if n.IsVar() {
				if prev, ok := vars[n.Value]; ok {
					where = append(where, fmt.Sprintf("%s = %s", key, prev.key))
					continue
				}
				vars[n.Value] = binding{key: key, value: alias + "." + valueColumns[pos]}
				continue
			}

			term, err := c.query.ResolveNode(c.ns, n)
			if err != nil {
				return "", err
			}
			if term.IsLiteral() {
				where = append(where, c.literal(alias, term))
				continue
			}
			where = append(where, fmt.Sprintf("%s = %s", key, c.bind(term.String())))
		}
	}

	selected := vars[variable]
	cols := []string{
		selected.value + " AS value",
		selected.key + " AS term",
		fmt.Sprintf("%d AS part", part),
	}
	for i := 0; i < width; i++ {
		if i < len(patterns) {
			cols = append(cols, fmt.Sprintf("t%d.seq AS o%d", i, i))
		} else {
			cols = append(cols, fmt.Sprintf("0 AS o%d", i))
		}
	}

	return fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(cols, ", "),
		strings.Join(from, ", "),
		strings.Join(where, " AND "),
	), nil
}

// literal matches value and language; a datatype only constrains rows that
// declare one
func (c *compiler) literal(alias string, t rdf.Term) string {
	conds := []string{
		fmt.Sprintf("%s.object_value = %s", alias, c.bind(t.Value)),
		fmt.Sprintf("%s.kind = %s", alias, c.bind(rdf.KindLiteral.String())),
		fmt.Sprintf("%s.lang = %s", alias, c.bind(t.Lang)),
	}
	if t.Datatype != "" {
		conds = append(conds, fmt.Sprintf("(%s.datatype = %s OR %s.datatype = '')", alias, c.bind(t.Datatype), alias))
	}
	return strings.Join(conds, " AND ")
}

// conjunctions flattens a group into its UNION alternatives in evaluation
// order
func conjunctions(g sparql.Group) [][]sparql.TriplePattern {
	if len(g.Union) == 0 {
		return [][]sparql.TriplePattern{g.Patterns}
	}
	out := make([][]sparql.TriplePattern, 0)
	for _, branch := range g.Union {
		for _, rest := range conjunctions(branch) {
			conj := make([]sparql.TriplePattern, 0, len(g.Patterns)+len(rest))
			conj = append(conj, g.Patterns...)
			conj = append(conj, rest...)
			out = append(out, conj)
		}
	}
	return out
}

func mentions(patterns []sparql.TriplePattern, variable string) bool {
	for _, tp := range patterns {
		for _, n := range tp.Nodes() {
			if n.IsVar() && n.Value == variable {
				return true
			}
		}
	}
	return false
}
