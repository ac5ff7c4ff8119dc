package sparql

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

const (
	lv2NS  = "http://lv2plug.in/ns/lv2core#"
	doapNS = "http://usefulinc.com/ns/doap#"
	gain   = "http://example.org/plugins/gain"
	data   = "file:///lv2/gain.lv2/gain.ttl"
)

func testContext() QueryContext {
	return QueryContext{
		Subject: gain,
		Graph:   data,
		Namespaces: []rdf.Binding{
			{Prefix: "rdf", Namespace: rdf.RDFNamespace},
			{Prefix: "lv2", Namespace: lv2NS},
			{Prefix: "doap", Namespace: doapNS},
		},
	}
}

func TestObjects(t *testing.T) {
	q, err := Objects(testContext(), "doap:name")
	require.NoError(t, err)

	assert.True(t, q.Distinct)
	assert.Equal(t, "value", q.Variable)
	require.Len(t, q.Where.Patterns, 1)
	assert.Equal(t, Pattern(Prefixed("plugin:"), Prefixed("doap:name"), Var("value")), q.Where.Patterns[0])

	graph, err := q.GraphIRI()
	require.NoError(t, err)
	assert.Equal(t, data, graph)

	text := q.String()
	assert.True(t, strings.HasPrefix(text, "PREFIX plugin: <"+gain+">\nPREFIX data: <"+data+">\n"))
	assert.Contains(t, text, "SELECT DISTINCT ?value FROM data: WHERE {\nplugin: doap:name ?value .\n}\n")
}

func TestObjectsWithAbsolutePredicate(t *testing.T) {
	q, err := Objects(testContext(), "<"+doapNS+"name>")
	require.NoError(t, err)
	assert.Equal(t, IRIRef(doapNS+"name"), q.Where.Patterns[0].Predicate)
}

func TestUnionObjects(t *testing.T) {
	q, err := UnionObjects(testContext(), "feature", "lv2:optionalHostFeature", "lv2:requiredHostFeature")
	require.NoError(t, err)

	assert.Empty(t, q.Where.Patterns)
	require.Len(t, q.Where.Union, 2)
	assert.Equal(t, Prefixed("lv2:requiredHostFeature"), q.Where.Union[1].Patterns[0].Predicate)
	assert.Contains(t, q.String(), "\tUNION\n")
}

func TestViaList(t *testing.T) {
	q, err := ViaList(testContext(), "lv2:port", "lv2:index", 1, "lv2:symbol")
	require.NoError(t, err)

	require.Len(t, q.Where.Patterns, 3)
	assert.Equal(t, Integer(1), q.Where.Patterns[1].Object)
	assert.Equal(t, []string{"entity", "value"}, q.Where.Variables())
	assert.Contains(t, q.String(), `?entity lv2:index "1"^^<http://www.w3.org/2001/XMLSchema#integer> .`)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	subject := Prefixed("plugin:")

	tests := []struct {
		name  string
		build func() (*Query, error)
	}{
		{"empty predicate", func() (*Query, error) { return Objects(testContext(), "") }},
		{"predicate with spaces", func() (*Query, error) { return Objects(testContext(), "doap:name ?x . ?x") }},
		{"unbound prefix", func() (*Query, error) { return Objects(testContext(), "foaf:name") }},
		{"injected IRI", func() (*Query, error) { return Objects(testContext(), "<http://x> } DROP {") }},
		{"empty subject", func() (*Query, error) {
			qc := testContext()
			qc.Subject = ""
			return Objects(qc, "doap:name")
		}},
		{"empty graph", func() (*Query, error) {
			qc := testContext()
			qc.Graph = ""
			return Objects(qc, "doap:name")
		}},
		{"no patterns", func() (*Query, error) { return NewBuilder(testContext()).Select("v").Build() }},
		{"unused variable", func() (*Query, error) {
			return NewBuilder(testContext()).Select("other").Where(subject, Prefixed("doap:name"), Var("v")).Build()
		}},
		{"literal subject", func() (*Query, error) {
			return NewBuilder(testContext()).Select("v").Where(Literal("x"), Prefixed("doap:name"), Var("v")).Build()
		}},
		{"literal predicate", func() (*Query, error) {
			return NewBuilder(testContext()).Select("v").Where(subject, Literal("x"), Var("v")).Build()
		}},
		{"single branch union", func() (*Query, error) {
			return NewBuilder(testContext()).Select("v").
				Union([]TriplePattern{Pattern(subject, Prefixed("doap:name"), Var("v"))}).Build()
		}},
		{"bad language tag", func() (*Query, error) {
			return NewBuilder(testContext()).Select("v").
				Where(subject, Prefixed("doap:name"), Var("v")).
				Where(subject, Prefixed("doap:name"), Node{Kind: NodeLiteral, Value: "x", Lang: "en gb"}).Build()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.build()
			require.Error(t, err)
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, ErrInvalidTerm), "got %v", err)
		})
	}
}

func TestReservedPrefixesCannotBeOverridden(t *testing.T) {
	qc := testContext()
	qc.Namespaces = append(qc.Namespaces, rdf.Binding{Prefix: "plugin", Namespace: "http://evil/"})

	q, err := Objects(qc, "doap:name")
	require.NoError(t, err)
	ns, ok := q.Namespaces().Lookup("plugin")
	require.True(t, ok)
	assert.Equal(t, gain, ns)
}

func TestTerm(t *testing.T) {
	assert.Equal(t, Var("x"), Term("?x"))
	assert.Equal(t, IRIRef("http://a"), Term("<http://a>"))
	assert.Equal(t, Prefixed("lv2:port"), Term("lv2:port"))
	assert.Equal(t, Prefixed(""), Term(""))
}
