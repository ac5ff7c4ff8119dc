// Package rdf provides the triple model shared by the bundle parser, the
// query evaluator and the storage engines.
package rdf

import (
	"fmt"
	"strings"
)

// TermKind identifies the kind of an RDF term
type TermKind int

const (
	// KindIRI is an absolute IRI reference
	KindIRI TermKind = iota
	// KindBlank is a blank node with a document-unique label
	KindBlank
	// KindLiteral is a literal with an optional language tag or datatype
	KindLiteral
)

// String returns the string representation of the term kind
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a single RDF node. Terms are plain values and safe to copy.
type Term struct {
	Kind     TermKind
	Value    string // IRI, blank node label, or literal lexical form
	Lang     string // language tag, literals only
	Datatype string // datatype IRI, literals only
}

// IRI returns an IRI term
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Blank returns a blank node term with the given label
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// Literal returns a plain literal
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// LangLiteral returns a language-tagged literal
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: strings.ToLower(lang)}
}

// TypedLiteral returns a literal with an explicit datatype
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// IsIRI reports whether the term is an IRI
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether the term is a blank node
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether the term is a literal
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }


// Equal reports whether two terms denote the same node.
//
// Literals compare by lexical form and language. A datatype mismatch only
// counts when both sides declare one, so the plain literal "1" matches
// "1"^^xsd:integer.
func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind || t.Value != o.Value {
		return false
	}
	if t.Kind != KindLiteral {
		return true
	}
	if t.Lang != o.Lang {
		return false
	}
	if t.Datatype != "" && o.Datatype != "" && t.Datatype != o.Datatype {
		return false
	}
	return true
}

// String renders the term in N-Triples form
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + EscapeString(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return t.Value
	}
}

// EscapeString escapes a literal lexical form for quoting
func EscapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Triple is a (subject, predicate, object) statement
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a triple
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// String renders the triple as an N-Triples line
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}
