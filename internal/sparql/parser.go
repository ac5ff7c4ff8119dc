package sparql

import (
	"fmt"
	"strings"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

// Parser reads the query text produced by Query.String back into a Query
type Parser struct {
	tokens  []Token
	current int
	ns      *rdf.Namespaces
}

// Parse parses query text. Only the constructs emitted by Query.String are
// accepted: PREFIX declarations, a single-variable SELECT, FROM, and a
// group of triple patterns with nested UNION blocks.
func Parse(text string) (*Query, error) {
	tokens, err := NewLexer(text).ScanTokens()
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens, ns: &rdf.Namespaces{}}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if err := validateGroup(p.ns, q.Where); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseQuery() (*Query, error) {
	q := &Query{Prefixes: make([]rdf.Binding, 0)}

	for p.match(TOKEN_PREFIX) {
		name, err := p.consume(TOKEN_PNAME, "expected prefix name")
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(name.Literal, ":") || strings.Count(name.Literal, ":") != 1 {
			return nil, p.errorAt(name, fmt.Sprintf("invalid prefix declaration %q", name.Literal))
		}
		iri, err := p.consume(TOKEN_IRIREF, "expected IRI in prefix declaration")
		if err != nil {
			return nil, err
		}
		binding := rdf.Binding{Prefix: strings.TrimSuffix(name.Literal, ":"), Namespace: iri.Literal}
		q.Prefixes = append(q.Prefixes, binding)
		p.ns.Bind(binding.Prefix, binding.Namespace)
	}

	if _, err := p.consume(TOKEN_SELECT, "expected SELECT"); err != nil {
		return nil, err
	}
	q.Distinct = p.match(TOKEN_DISTINCT)
	v, err := p.consume(TOKEN_VAR, "expected a single select variable")
	if err != nil {
		return nil, err
	}
	q.Variable = v.Literal

	if _, err := p.consume(TOKEN_FROM, "expected FROM"); err != nil {
		return nil, err
	}
	from := p.advance()
	switch from.Type {
	case TOKEN_IRIREF:
		q.From = IRIRef(from.Literal)
	case TOKEN_PNAME:
		q.From = Prefixed(from.Literal)
	default:
		return nil, p.errorAt(from, fmt.Sprintf("expected graph IRI after FROM, found %s", from.Type))
	}
	if _, err := q.GraphIRI(); err != nil {
		return nil, p.errorAt(from, err.Error())
	}

	p.match(TOKEN_WHERE)
	if _, err := p.consume(TOKEN_LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	where, err := p.group()
	if err != nil {
		return nil, err
	}
	q.Where = where

	if !p.check(TOKEN_EOF) {
		tok := p.peek()
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected %s after query", tok.Type))
	}
	return q, nil
}

// group parses the body of a group; the opening brace is consumed
func (p *Parser) group() (Group, error) {
	g := Group{Patterns: make([]TriplePattern, 0)}
	for !p.match(TOKEN_RBRACE) {
		if p.check(TOKEN_EOF) {
			return Group{}, p.errorAt(p.peek(), "expected '}'")
		}

		if p.match(TOKEN_LBRACE) {
			if len(g.Union) > 0 {
				return Group{}, p.errorAt(p.peek(), "only one UNION block per group is supported")
			}
			branches, err := p.unionBlock()
			if err != nil {
				return Group{}, err
			}
			g.Union = branches
			continue
		}

		tp, err := p.triplePattern()
		if err != nil {
			return Group{}, err
		}
		g.Patterns = append(g.Patterns, tp)
		p.match(TOKEN_DOT)
	}
	return g, nil
}

func (p *Parser) unionBlock() ([]Group, error) {
	first, err := p.group()
	if err != nil {
		return nil, err
	}
	branches := []Group{first}
	for p.match(TOKEN_UNION) {
		if _, err := p.consume(TOKEN_LBRACE, "expected '{' after UNION"); err != nil {
			return nil, err
		}
		next, err := p.group()
		if err != nil {
			return nil, err
		}
		branches = append(branches, next)
	}
	// a nested group without UNION yields one branch, rejected by validateGroup
	return branches, nil
}

func (p *Parser) triplePattern() (TriplePattern, error) {
	s, err := p.node(false)
	if err != nil {
		return TriplePattern{}, err
	}
	pred, err := p.node(true)
	if err != nil {
		return TriplePattern{}, err
	}
	o, err := p.node(false)
	if err != nil {
		return TriplePattern{}, err
	}
	return Pattern(s, pred, o), nil
}

func (p *Parser) node(predicate bool) (Node, error) {
	tok := p.advance()
	switch tok.Type {
	case TOKEN_VAR:
		return Var(tok.Literal), nil
	case TOKEN_IRIREF:
		return IRIRef(tok.Literal), nil
	case TOKEN_PNAME:
		return Prefixed(tok.Literal), nil
	case TOKEN_A:
		if !predicate {
			return Node{}, p.errorAt(tok, "'a' is only allowed in predicate position")
		}
		return IRIRef(rdf.RDFType), nil
	case TOKEN_INTEGER:
		return Node{Kind: NodeLiteral, Value: tok.Literal, Datatype: rdf.XSDInteger}, nil
	case TOKEN_STRING:
		n := Literal(tok.Literal)
		if lang, ok := p.matchToken(TOKEN_LANGTAG); ok {
			n.Lang = lang.Literal
		} else if p.match(TOKEN_DOUBLE_CARET) {
			dt := p.advance()
			switch dt.Type {
			case TOKEN_IRIREF:
				n.Datatype = dt.Literal
			case TOKEN_PNAME:
				iri, err := p.ns.Expand(dt.Literal)
				if err != nil {
					return Node{}, p.errorAt(dt, err.Error())
				}
				n.Datatype = iri
			default:
				return Node{}, p.errorAt(dt, "expected datatype IRI after '^^'")
			}
		}
		return n, nil
	default:
		return Node{}, p.errorAt(tok, fmt.Sprintf("expected term, found %s", tok.Type))
	}
}

// Helper methods

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if tok.Type != TOKEN_EOF {
		p.current++
	}
	return tok
}

func (p *Parser) match(t TokenType) bool {
	_, ok := p.matchToken(t)
	return ok
}

func (p *Parser) matchToken(t TokenType) (Token, bool) {
	if !p.check(t) {
		return Token{}, false
	}
	return p.advance(), true
}

func (p *Parser) consume(t TokenType, message string) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return Token{}, p.errorAt(tok, fmt.Sprintf("%s, found %s", message, tok.Type))
}

func (p *Parser) errorAt(tok Token, message string) error {
	return &SyntaxError{Message: message, Line: tok.Line, Column: tok.Column}
}
