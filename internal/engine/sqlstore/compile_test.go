package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lv2meta/lv2meta/internal/rdf"
	"github.com/lv2meta/lv2meta/internal/sparql"
)

const (
	plugin = "http://example.org/plugins/gain"
	graph  = "file:///lv2/gain.lv2/gain.ttl"
	lv2NS  = "http://lv2plug.in/ns/lv2core#"
	doapNS = "http://usefulinc.com/ns/doap#"
)

func queryContext() sparql.QueryContext {
	return sparql.QueryContext{
		Subject: plugin,
		Graph:   graph,
		Namespaces: []rdf.Binding{
			{Prefix: "lv2", Namespace: lv2NS},
			{Prefix: "doap", Namespace: doapNS},
		},
	}
}

func TestCompileObjects(t *testing.T) {
	q, err := sparql.Objects(queryContext(), "doap:name")
	require.NoError(t, err)

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{SQLite, "SELECT value, term FROM (\n" +
			"SELECT t0.object_value AS value, t0.object AS term, 0 AS part, t0.seq AS o0 FROM triples t0 " +
			"WHERE t0.graph = ? AND t0.subject = ? AND t0.predicate = ?" +
			"\n) r ORDER BY part, o0"},
		{Postgres, "SELECT value, term FROM (\n" +
			"SELECT t0.object_value AS value, t0.object AS term, 0 AS part, t0.seq AS o0 FROM triples t0 " +
			"WHERE t0.graph = $1 AND t0.subject = $2 AND t0.predicate = $3" +
			"\n) r ORDER BY part, o0"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			sql, args, ok, err := compile(tt.dialect, q, graph)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []interface{}{graph, "<" + plugin + ">", "<" + doapNS + "name>"}, args)
		})
	}
}

func TestCompileUnion(t *testing.T) {
	q, err := sparql.UnionObjects(queryContext(), "feature", "lv2:optionalHostFeature", "lv2:requiredHostFeature")
	require.NoError(t, err)

	sql, args, ok, err := compile(Postgres, q, graph)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, sql, "0 AS part")
	assert.Contains(t, sql, "\nUNION ALL\n")
	assert.Contains(t, sql, "1 AS part")
	assert.Contains(t, sql, "t0.predicate = $6")
	assert.Len(t, args, 6)
}

func TestCompileJoin(t *testing.T) {
	q, err := sparql.ViaList(queryContext(), "lv2:port", "lv2:index", 1, "lv2:symbol")
	require.NoError(t, err)

	sql, args, ok, err := compile(SQLite, q, graph)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, sql, "FROM triples t0, triples t1, triples t2 WHERE")
	assert.Contains(t, sql, "t1.subject = t0.object")
	assert.Contains(t, sql, "t2.subject = t0.object")
	assert.Contains(t, sql, "t1.object_value = ? AND t1.kind = ? AND t1.lang = ? AND (t1.datatype = ? OR t1.datatype = '')")
	assert.Contains(t, sql, "t2.object_value AS value, t2.object AS term")
	assert.Contains(t, sql, "ORDER BY part, o0, o1, o2")
	assert.Contains(t, args, "1")
	assert.Contains(t, args, rdf.XSDInteger)
}

func TestCompileUnboundVariable(t *testing.T) {
	q, err := sparql.Parse("SELECT ?v FROM <file:///g> { { ?s <http://p> ?o } UNION { ?s <http://q> ?o } }")
	require.NoError(t, err)

	sql, args, ok, err := compile(SQLite, q, "file:///g")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sql)
	assert.Nil(t, args)
}

func TestConjunctions(t *testing.T) {
	p := func(pred string) sparql.TriplePattern {
		return sparql.Pattern(sparql.Var("s"), sparql.IRIRef(pred), sparql.Var("o"))
	}
	g := sparql.Group{
		Patterns: []sparql.TriplePattern{p("http://a")},
		Union: []sparql.Group{
			{Patterns: []sparql.TriplePattern{p("http://b")}},
			{Union: []sparql.Group{
				{Patterns: []sparql.TriplePattern{p("http://c")}},
				{Patterns: []sparql.TriplePattern{p("http://d")}},
			}},
		},
	}

	got := conjunctions(g)
	require.Len(t, got, 3)
	assert.Equal(t, []sparql.TriplePattern{p("http://a"), p("http://b")}, got[0])
	assert.Equal(t, []sparql.TriplePattern{p("http://a"), p("http://c")}, got[1])
	assert.Equal(t, []sparql.TriplePattern{p("http://a"), p("http://d")}, got[2])
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{"SQLite3", SQLite, false},
		{"postgres", Postgres, false},
		{"pgx", Postgres, false},
		{"mysql", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "sqlite3", SQLite.Driver())
	assert.Equal(t, "pgx", Postgres.Driver())
}
