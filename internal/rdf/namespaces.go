package rdf

import (
	"fmt"
	"strings"
)

// Well-known namespace IRIs
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// Frequently used IRIs
const (
	RDFType     = RDFNamespace + "type"
	RDFSSeeAlso = RDFSNamespace + "seeAlso"
	XSDString   = XSDNamespace + "string"
	XSDInteger  = XSDNamespace + "integer"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDBoolean  = XSDNamespace + "boolean"
)

// Binding associates a prefix with a namespace IRI
type Binding struct {
	Prefix    string
	Namespace string
}

// Namespaces is an ordered prefix table. The zero value is ready to use.
type Namespaces struct {
	bindings []Binding
	index    map[string]int
}

// NewNamespaces creates a table holding the given bindings in order
func NewNamespaces(bindings ...Binding) *Namespaces {
	ns := &Namespaces{}
	for _, b := range bindings {
		ns.Bind(b.Prefix, b.Namespace)
	}
	return ns
}

// Bind adds or replaces a prefix. Replacing keeps the original position.
func (n *Namespaces) Bind(prefix, namespace string) {
	if n.index == nil {
		n.index = make(map[string]int)
	}
	if i, ok := n.index[prefix]; ok {
		n.bindings[i].Namespace = namespace
		return
	}
	n.index[prefix] = len(n.bindings)
	n.bindings = append(n.bindings, Binding{Prefix: prefix, Namespace: namespace})
}

// Lookup returns the namespace bound to prefix
func (n *Namespaces) Lookup(prefix string) (string, bool) {
	if n == nil || n.index == nil {
		return "", false
	}
	i, ok := n.index[prefix]
	if !ok {
		return "", false
	}
	return n.bindings[i].Namespace, true
}

// Expand resolves a prefixed name such as "lv2:port" to an absolute IRI
func (n *Namespaces) Expand(name string) (string, error) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", fmt.Errorf("not a prefixed name: %q", name)
	}
	ns, found := n.Lookup(prefix)
	if !found {
		return "", fmt.Errorf("undefined prefix %q in %q", prefix, name)
	}
	return ns + local, nil
}

// Compact returns the shortest prefixed form of iri, or iri itself when no
// binding matches
func (n *Namespaces) Compact(iri string) string {
	if n == nil {
		return iri
	}
	best := -1
	for i, b := range n.bindings {
		if b.Namespace == "" || !strings.HasPrefix(iri, b.Namespace) {
			continue
		}
		if best < 0 || len(b.Namespace) > len(n.bindings[best].Namespace) {
			best = i
		}
	}
	if best < 0 {
		return iri
	}
	b := n.bindings[best]
	return b.Prefix + ":" + strings.TrimPrefix(iri, b.Namespace)
}

// Bindings returns a copy of the bindings in declaration order
func (n *Namespaces) Bindings() []Binding {
	if n == nil {
		return nil
	}
	out := make([]Binding, len(n.bindings))
	copy(out, n.bindings)
	return out
}

// Clone returns an independent copy of the table
func (n *Namespaces) Clone() *Namespaces {
	return NewNamespaces(n.Bindings()...)
}
