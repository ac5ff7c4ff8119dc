// Package turtle reads Turtle documents into the triple model.
package turtle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	knakk "github.com/knakk/rdf"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

// placeholderBase is handed to the decoder in place of the document
// location. Relative references come back under it and are rebased onto
// the real base with rdf.ResolveIRI.
const placeholderBase = "http://lv2meta.invalid/base/"

// Document is the result of parsing one Turtle source
type Document struct {
	Base    string
	Triples []rdf.Triple
}

type decoder struct {
	base  string
	scope uuid.UUID
}

// Parse parses Turtle source. Relative IRIs resolve against base.
//
// Blank nodes are relabelled with name-based UUIDs derived from base, so
// triples from different documents never share a blank node while parsing
// the same document twice yields the same labels. Without a base every
// parse gets its own labels.
func Parse(source, base string) (*Document, error) {
	placeholder, err := knakk.NewIRI(placeholderBase)
	if err != nil {
		return nil, err
	}
	dec := knakk.NewTripleDecoder(strings.NewReader(source), knakk.Turtle)
	if err := dec.SetOption(knakk.Base, placeholder); err != nil {
		return nil, fmt.Errorf("failed to configure turtle decoder: %w", err)
	}

	d := &decoder{base: base, scope: blankScope(base)}
	triples := make([]rdf.Triple, 0)
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		triples = append(triples, rdf.NewTriple(d.term(t.Subj), d.term(t.Pred), d.term(t.Obj)))
	}

	return &Document{Base: base, Triples: triples}, nil
}

// ParseFile reads and parses a Turtle file using its file:// URI as base
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(string(data), rdf.FileURI(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func (d *decoder) term(t knakk.Term) rdf.Term {
	switch t.Type() {
	case knakk.TermIRI:
		return rdf.IRI(d.resolve(t.String()))
	case knakk.TermBlank:
		return d.blank(strings.TrimPrefix(t.String(), "_:"))
	}

	lit, ok := t.(knakk.Literal)
	if !ok {
		return rdf.Literal(t.String())
	}
	datatype := lit.DataType.String()
	switch {
	case lit.Lang() != "":
		return rdf.LangLiteral(lit.String(), lit.Lang())
	case datatype == "" || datatype == rdf.XSDString:
		return rdf.Literal(lit.String())
	default:
		return rdf.TypedLiteral(lit.String(), datatype)
	}
}

func (d *decoder) resolve(iri string) string {
	if rel, ok := strings.CutPrefix(iri, placeholderBase); ok {
		return rdf.ResolveIRI(d.base, rel)
	}
	return iri
}

// blank maps a document label to a label unique to this document
func (d *decoder) blank(label string) rdf.Term {
	return rdf.Blank(uuid.NewSHA1(d.scope, []byte("_:"+label)).String())
}

func blankScope(base string) uuid.UUID {
	if base == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(base))
}
