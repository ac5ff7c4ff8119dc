package sparql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

var (
	varPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	prefixPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.-]*)?:([A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?)?$`)
	langPattern   = regexp.MustCompile(`^[A-Za-z]+(-[A-Za-z0-9]+)*$`)
)

// QueryContext carries the per-plugin bindings of a query: the subject
// bound to "plugin:" and the graph bound to "data:", plus the vocabulary
// prefixes available to predicates.
type QueryContext struct {
	Subject    string
	Graph      string
	Namespaces []rdf.Binding
}

// Builder provides a fluent API for building select queries.
//
// Nothing is validated until Build, so chained calls never fail midway.
type Builder struct {
	qc       QueryContext
	variable string
	distinct bool
	where    Group
}

// NewBuilder creates a builder bound to the given context
func NewBuilder(qc QueryContext) *Builder {
	return &Builder{
		qc: qc,
		where: Group{
			Patterns: make([]TriplePattern, 0),
		},
	}
}

// Select sets the projected variable
func (b *Builder) Select(variable string) *Builder {
	b.variable = strings.TrimPrefix(variable, "?")
	return b
}

// Distinct removes duplicate results
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// Where adds a triple pattern to the top-level group
func (b *Builder) Where(s, p, o Node) *Builder {
	b.where.Patterns = append(b.where.Patterns, Pattern(s, p, o))
	return b
}

// Union adds a UNION block; each branch is a conjunction of patterns
func (b *Builder) Union(branches ...[]TriplePattern) *Builder {
	for _, branch := range branches {
		patterns := make([]TriplePattern, len(branch))
		copy(patterns, branch)
		b.where.Union = append(b.where.Union, Group{Patterns: patterns})
	}
	return b
}

// Build validates the accumulated input and returns the query
func (b *Builder) Build() (*Query, error) {
	if b.qc.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject IRI", ErrInvalidTerm)
	}
	if err := validateIRI(b.qc.Subject); err != nil {
		return nil, err
	}
	if b.qc.Graph == "" {
		return nil, fmt.Errorf("%w: empty graph IRI", ErrInvalidTerm)
	}
	if err := validateIRI(b.qc.Graph); err != nil {
		return nil, err
	}

	prefixes := []rdf.Binding{
		{Prefix: SubjectPrefix, Namespace: b.qc.Subject},
		{Prefix: GraphPrefix, Namespace: b.qc.Graph},
	}
	for _, binding := range b.qc.Namespaces {
		if binding.Prefix == SubjectPrefix || binding.Prefix == GraphPrefix {
			continue
		}
		prefixes = append(prefixes, binding)
	}
	ns := rdf.NewNamespaces(prefixes...)

	if len(b.where.Patterns) == 0 && len(b.where.Union) == 0 {
		return nil, fmt.Errorf("%w: query has no patterns", ErrInvalidTerm)
	}
	if err := validateGroup(ns, b.where); err != nil {
		return nil, err
	}
	if !varPattern.MatchString(b.variable) {
		return nil, fmt.Errorf("%w: invalid select variable %q", ErrInvalidTerm, b.variable)
	}
	found := false
	for _, v := range b.where.Variables() {
		if v == b.variable {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: select variable ?%s does not appear in the patterns", ErrInvalidTerm, b.variable)
	}

	return &Query{
		Prefixes: prefixes,
		Distinct: b.distinct,
		Variable: b.variable,
		From:     Prefixed(GraphPrefix + ":"),
		Where:    b.where,
	}, nil
}

// Objects builds "SELECT DISTINCT ?value FROM data: WHERE { plugin: <predicate> ?value }"
func Objects(qc QueryContext, predicate string) (*Query, error) {
	return NewBuilder(qc).
		Select("value").
		Distinct().
		Where(Prefixed(SubjectPrefix+":"), Term(predicate), Var("value")).
		Build()
}

// UnionObjects builds a query for the objects of either predicate
func UnionObjects(qc QueryContext, variable, first, second string) (*Query, error) {
	subject := Prefixed(SubjectPrefix + ":")
	return NewBuilder(qc).
		Select(variable).
		Distinct().
		Union(
			[]TriplePattern{Pattern(subject, Term(first), Var(variable))},
			[]TriplePattern{Pattern(subject, Term(second), Var(variable))},
		).
		Build()
}

// ViaList builds a two-hop query: the entity linked from the subject by
// listPredicate whose indexPredicate equals index, then its predicate.
func ViaList(qc QueryContext, listPredicate, indexPredicate string, index int64, predicate string) (*Query, error) {
	return NewBuilder(qc).
		Select("value").
		Distinct().
		Where(Prefixed(SubjectPrefix+":"), Term(listPredicate), Var("entity")).
		Where(Var("entity"), Term(indexPredicate), Integer(index)).
		Where(Var("entity"), Term(predicate), Var("value")).
		Build()
}

func validateGroup(ns *rdf.Namespaces, g Group) error {
	for _, tp := range g.Patterns {
		if err := validatePattern(ns, tp); err != nil {
			return err
		}
	}
	if len(g.Union) == 1 {
		return fmt.Errorf("%w: UNION needs at least two branches", ErrInvalidTerm)
	}
	for _, branch := range g.Union {
		if len(branch.Patterns) == 0 && len(branch.Union) == 0 {
			return fmt.Errorf("%w: empty UNION branch", ErrInvalidTerm)
		}
		if err := validateGroup(ns, branch); err != nil {
			return err
		}
	}
	return nil
}

func validatePattern(ns *rdf.Namespaces, tp TriplePattern) error {
	if tp.Subject.Kind == NodeLiteral {
		return fmt.Errorf("%w: literal in subject position: %s", ErrInvalidTerm, tp)
	}
	if tp.Predicate.Kind == NodeLiteral {
		return fmt.Errorf("%w: literal in predicate position: %s", ErrInvalidTerm, tp)
	}
	for _, n := range tp.Nodes() {
		if err := validateNode(ns, n); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(ns *rdf.Namespaces, n Node) error {
	switch n.Kind {
	case NodeVar:
		if !varPattern.MatchString(n.Value) {
			return fmt.Errorf("%w: invalid variable %q", ErrInvalidTerm, n.Value)
		}
	case NodeIRI:
		return validateIRI(n.Value)
	case NodePrefixed:
		if n.Value == "" {
			return fmt.Errorf("%w: empty predicate", ErrInvalidTerm)
		}
		if !prefixPattern.MatchString(n.Value) {
			return fmt.Errorf("%w: malformed prefixed name %q", ErrInvalidTerm, n.Value)
		}
		if _, err := ns.Expand(n.Value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTerm, err)
		}
	case NodeLiteral:
		if n.Lang != "" && n.Datatype != "" {
			return fmt.Errorf("%w: literal has both language and datatype", ErrInvalidTerm)
		}
		if n.Lang != "" && !langPattern.MatchString(n.Lang) {
			return fmt.Errorf("%w: invalid language tag %q", ErrInvalidTerm, n.Lang)
		}
		if n.Datatype != "" {
			return validateIRI(n.Datatype)
		}
	default:
		return fmt.Errorf("%w: unknown node kind %d", ErrInvalidTerm, n.Kind)
	}
	return nil
}

func validateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty IRI", ErrInvalidTerm)
	}
	if strings.ContainsAny(iri, "<>\"{}|^`\\ \t\r\n") {
		return fmt.Errorf("%w: illegal character in IRI %q", ErrInvalidTerm, iri)
	}
	return nil
}
