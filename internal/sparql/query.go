// Package sparql provides a structured representation of the select
// queries issued against plugin data, a fluent builder for them, and the
// serializer/parser pair that converts to and from the engine's text form.
package sparql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

// Reserved prefixes bound per query
const (
	SubjectPrefix = "plugin"
	GraphPrefix   = "data"
)

// ErrInvalidTerm is returned when a query term is empty or malformed
var ErrInvalidTerm = errors.New("invalid query term")

// NodeKind identifies the kind of a pattern node
type NodeKind int

const (
	// NodeVar is a query variable such as ?value
	NodeVar NodeKind = iota
	// NodeIRI is an absolute IRI written as <...>
	NodeIRI
	// NodePrefixed is a prefixed name such as lv2:port
	NodePrefixed
	// NodeLiteral is a literal constant
	NodeLiteral
)

// String returns the string representation of the node kind
func (k NodeKind) String() string {
	switch k {
	case NodeVar:
		return "var"
	case NodeIRI:
		return "iri"
	case NodePrefixed:
		return "prefixed"
	case NodeLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Node is one position of a triple pattern
type Node struct {
	Kind     NodeKind
	Value    string
	Lang     string
	Datatype string // absolute datatype IRI
}

// Var returns a variable node; the leading '?' is optional
func Var(name string) Node {
	return Node{Kind: NodeVar, Value: strings.TrimPrefix(name, "?")}
}

// IRIRef returns an absolute IRI node
func IRIRef(iri string) Node {
	return Node{Kind: NodeIRI, Value: iri}
}

// Prefixed returns a prefixed-name node such as "doap:name"
func Prefixed(name string) Node {
	return Node{Kind: NodePrefixed, Value: name}
}

// Literal returns a plain literal node
func Literal(value string) Node {
	return Node{Kind: NodeLiteral, Value: value}
}

// Integer returns an xsd:integer literal node
func Integer(n int64) Node {
	return Node{Kind: NodeLiteral, Value: fmt.Sprintf("%d", n), Datatype: rdf.XSDInteger}
}

// Term interprets a caller-supplied string: "?x" is a variable, "<iri>" an
// absolute IRI, anything else a prefixed name. Validation happens in Build.
func Term(s string) Node {
	switch {
	case strings.HasPrefix(s, "?"):
		return Var(s)
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) >= 2:
		return IRIRef(s[1 : len(s)-1])
	default:
		return Prefixed(s)
	}
}

// IsVar reports whether the node is a variable
func (n Node) IsVar() bool { return n.Kind == NodeVar }

// String renders the node in query syntax
func (n Node) String() string {
	switch n.Kind {
	case NodeVar:
		return "?" + n.Value
	case NodeIRI:
		return "<" + n.Value + ">"
	case NodePrefixed:
		return n.Value
	case NodeLiteral:
		s := `"` + rdf.EscapeString(n.Value) + `"`
		if n.Lang != "" {
			return s + "@" + n.Lang
		}
		if n.Datatype != "" {
			return s + "^^<" + n.Datatype + ">"
		}
		return s
	default:
		return n.Value
	}
}

// TriplePattern is a (subject, predicate, object) pattern
type TriplePattern struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// Pattern creates a triple pattern
func Pattern(s, p, o Node) TriplePattern {
	return TriplePattern{Subject: s, Predicate: p, Object: o}
}

// Nodes returns the three nodes in order
func (tp TriplePattern) Nodes() [3]Node {
	return [3]Node{tp.Subject, tp.Predicate, tp.Object}
}

// String renders the pattern without the terminating dot
func (tp TriplePattern) String() string {
	return fmt.Sprintf("%s %s %s", tp.Subject, tp.Predicate, tp.Object)
}

// Group is a conjunction of patterns, optionally joined with one UNION
// block whose branches are alternatives
type Group struct {
	Patterns []TriplePattern
	Union    []Group
}

// Variables returns the variables mentioned in the group in first-seen order
func (g Group) Variables() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	var walk func(Group)
	walk = func(g Group) {
		for _, tp := range g.Patterns {
			for _, n := range tp.Nodes() {
				if n.IsVar() && !seen[n.Value] {
					seen[n.Value] = true
					out = append(out, n.Value)
				}
			}
		}
		for _, branch := range g.Union {
			walk(branch)
		}
	}
	walk(g)
	return out
}

// Query is a single-variable select query over one named graph
type Query struct {
	Prefixes []rdf.Binding
	Distinct bool
	Variable string
	From     Node
	Where    Group
}

// Namespaces returns the query's prefix table
func (q *Query) Namespaces() *rdf.Namespaces {
	return rdf.NewNamespaces(q.Prefixes...)
}

// GraphIRI resolves the FROM clause to an absolute IRI
func (q *Query) GraphIRI() (string, error) {
	switch q.From.Kind {
	case NodeIRI:
		return q.From.Value, nil
	case NodePrefixed:
		return q.Namespaces().Expand(q.From.Value)
	default:
		return "", fmt.Errorf("%w: FROM must be an IRI, got %s", ErrInvalidTerm, q.From.Kind)
	}
}

// ResolveNode converts a constant node to an RDF term. Variables are
// rejected.
func (q *Query) ResolveNode(ns *rdf.Namespaces, n Node) (rdf.Term, error) {
	switch n.Kind {
	case NodeIRI:
		return rdf.IRI(n.Value), nil
	case NodePrefixed:
		iri, err := ns.Expand(n.Value)
		if err != nil {
			return rdf.Term{}, fmt.Errorf("%w: %v", ErrInvalidTerm, err)
		}
		return rdf.IRI(iri), nil
	case NodeLiteral:
		return rdf.Term{Kind: rdf.KindLiteral, Value: n.Value, Lang: n.Lang, Datatype: n.Datatype}, nil
	default:
		return rdf.Term{}, fmt.Errorf("%w: variable ?%s is not a constant", ErrInvalidTerm, n.Value)
	}
}

// String serializes the query to its text form
func (q *Query) String() string {
	var b strings.Builder
	for _, p := range q.Prefixes {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", p.Prefix, p.Namespace)
	}
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	fmt.Fprintf(&b, "?%s FROM %s WHERE {\n", q.Variable, q.From)
	writeGroup(&b, q.Where, 0)
	b.WriteString("}\n")
	return b.String()
}

func writeGroup(b *strings.Builder, g Group, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, tp := range g.Patterns {
		fmt.Fprintf(b, "%s%s .\n", indent, tp)
	}
	for i, branch := range g.Union {
		if i > 0 {
			fmt.Fprintf(b, "%s\tUNION\n", indent)
		}
		fmt.Fprintf(b, "%s{\n", indent)
		writeGroup(b, branch, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	}
}
