package rdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/"

func TestGraphAddIgnoresDuplicates(t *testing.T) {
	g := NewGraph()
	tr := NewTriple(IRI(ex+"s"), IRI(ex+"p"), Literal("o"))

	assert.True(t, g.Add(tr))
	assert.False(t, g.Add(tr))
	assert.Equal(t, 1, g.Len())
}

func TestGraphMatch(t *testing.T) {
	g := NewGraph()
	s := IRI(ex + "gain")
	name := IRI(ex + "name")
	port := IRI(ex + "port")
	g.AddAll([]Triple{
		NewTriple(s, name, LangLiteral("Gain", "en")),
		NewTriple(s, port, Blank("p0")),
		NewTriple(s, port, Blank("p1")),
		NewTriple(Blank("p1"), IRI(ex+"index"), TypedLiteral("1", XSDInteger)),
	})

	t.Run("by subject and predicate keeps order", func(t *testing.T) {
		objs := g.Objects(s, port)
		require.Len(t, objs, 2)
		assert.Equal(t, "p0", objs[0].Value)
		assert.Equal(t, "p1", objs[1].Value)
	})

	t.Run("by predicate only", func(t *testing.T) {
		p := IRI(ex + "index")
		assert.Len(t, g.Match(nil, &p, nil), 1)
	})

	t.Run("plain literal matches typed literal", func(t *testing.T) {
		p := IRI(ex + "index")
		o := Literal("1")
		subjects := g.Subjects(p, o)
		require.Len(t, subjects, 1)
		assert.Equal(t, Blank("p1"), subjects[0])
	})

	t.Run("language tag must agree", func(t *testing.T) {
		o := LangLiteral("Gain", "de")
		assert.Empty(t, g.Match(&s, &name, &o))
	})

	t.Run("wildcard", func(t *testing.T) {
		assert.Len(t, g.Match(nil, nil, nil), 4)
	})
}

func TestDataset(t *testing.T) {
	d := NewDataset()
	ctx := context.Background()

	require.NoError(t, d.Load(ctx, ex+"b", []Triple{NewTriple(IRI(ex+"s"), IRI(ex+"p"), Literal("x"))}))
	require.NoError(t, d.Load(ctx, ex+"a", nil))
	assert.Error(t, d.Load(ctx, "", nil))

	assert.Equal(t, []string{ex + "a", ex + "b"}, d.Names())

	err := d.View(ex+"b", func(g *Graph) error {
		assert.Equal(t, 1, g.Len())
		return nil
	})
	assert.NoError(t, err)
	assert.Error(t, d.View(ex+"missing", func(*Graph) error { return nil }))

	// reloading replaces the graph
	require.NoError(t, d.Load(ctx, ex+"b", []Triple{NewTriple(IRI(ex+"s"), IRI(ex+"q"), Literal("y"))}))
	old := IRI(ex + "p")
	err = d.View(ex+"b", func(g *Graph) error {
		assert.Equal(t, 1, g.Len())
		assert.Empty(t, g.Match(nil, &old, nil))
		return nil
	})
	assert.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, d.Load(cancelled, ex+"c", nil), context.Canceled)
}

func TestTermString(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{IRI(ex), "<http://example.org/>"},
		{Blank("b1"), "_:b1"},
		{Literal(`say "hi"`), `"say \"hi\""`},
		{LangLiteral("Gain", "EN"), `"Gain"@en`},
		{TypedLiteral("0.5", XSDDecimal), `"0.5"^^<http://www.w3.org/2001/XMLSchema#decimal>`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.term.String())
	}
}

func TestTermKindString(t *testing.T) {
	assert.Equal(t, "iri", KindIRI.String())
	assert.Equal(t, "blank", KindBlank.String())
	assert.Equal(t, "literal", KindLiteral.String())
	assert.Equal(t, "unknown", TermKind(9).String())
}

func TestNamespaces(t *testing.T) {
	ns := NewNamespaces(
		Binding{Prefix: "rdf", Namespace: RDFNamespace},
		Binding{Prefix: "ex", Namespace: ex},
		Binding{Prefix: "exp", Namespace: ex + "plugins/"},
	)

	iri, err := ns.Expand("rdf:type")
	require.NoError(t, err)
	assert.Equal(t, RDFType, iri)

	_, err = ns.Expand("nope:x")
	assert.Error(t, err)
	_, err = ns.Expand("noColon")
	assert.Error(t, err)

	assert.Equal(t, "exp:gain", ns.Compact(ex+"plugins/gain"))
	assert.Equal(t, "ex:other", ns.Compact(ex+"other"))
	assert.Equal(t, "urn:x", ns.Compact("urn:x"))

	ns.Bind("ex", "http://example.com/")
	assert.Equal(t, "ex", ns.Bindings()[1].Prefix)
	got, _ := ns.Lookup("ex")
	assert.Equal(t, "http://example.com/", got)

	clone := ns.Clone()
	clone.Bind("extra", "urn:extra:")
	_, ok := ns.Lookup("extra")
	assert.False(t, ok)
}
