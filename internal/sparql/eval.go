package sparql

import (
	"context"

	"github.com/lv2meta/lv2meta/internal/rdf"
)

// Solution maps variable names to bound terms
type Solution map[string]rdf.Term

func (s Solution) clone() Solution {
	out := make(Solution, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Evaluate runs q against g and returns the terms bound to the selected
// variable. Patterns are joined left to right and results keep the order
// in which they were first produced. With Distinct, repeated terms are
// dropped; solutions that leave the variable unbound are skipped.
func Evaluate(ctx context.Context, q *Query, g *rdf.Graph) ([]rdf.Term, error) {
	ns := q.Namespaces()
	solutions, err := evalGroup(ctx, q, ns, g, q.Where, []Solution{{}})
	if err != nil {
		return nil, err
	}

	out := make([]rdf.Term, 0, len(solutions))
	seen := make(map[string]struct{})
	for _, sol := range solutions {
		t, ok := sol[q.Variable]
		if !ok {
			continue
		}
		if q.Distinct {
			key := t.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, t)
	}
	return out, nil
}

func evalGroup(ctx context.Context, q *Query, ns *rdf.Namespaces, g *rdf.Graph, group Group, input []Solution) ([]Solution, error) {
	solutions := input
	for _, tp := range group.Patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := evalPattern(q, ns, g, tp, solutions)
		if err != nil {
			return nil, err
		}
		solutions = next
		if len(solutions) == 0 {
			return solutions, nil
		}
	}

	if len(group.Union) == 0 {
		return solutions, nil
	}
	combined := make([]Solution, 0)
	for _, branch := range group.Union {
		out, err := evalGroup(ctx, q, ns, g, branch, solutions)
		if err != nil {
			return nil, err
		}
		combined = append(combined, out...)
	}
	return combined, nil
}

func evalPattern(q *Query, ns *rdf.Namespaces, g *rdf.Graph, tp TriplePattern, input []Solution) ([]Solution, error) {
	nodes := tp.Nodes()
	out := make([]Solution, 0)

	for _, sol := range input {
		var bound [3]*rdf.Term
		for i, n := range nodes {
			if n.IsVar() {
				if t, ok := sol[n.Value]; ok {
					t := t
					bound[i] = &t
				}
				continue
			}
			t, err := q.ResolveNode(ns, n)
			if err != nil {
				return nil, err
			}
			bound[i] = &t
		}

		for _, tr := range g.Match(bound[0], bound[1], bound[2]) {
			values := [3]rdf.Term{tr.Subject, tr.Predicate, tr.Object}
			ext := sol.clone()
			consistent := true
			for i, n := range nodes {
				if !n.IsVar() {
					continue
				}
				if prev, ok := ext[n.Value]; ok && !prev.Equal(values[i]) {
					consistent = false
					break
				}
				ext[n.Value] = values[i]
			}
			if consistent {
				out = append(out, ext)
			}
		}
	}
	return out, nil
}
