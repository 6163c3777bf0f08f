// Copyright 2026, the Tokentile contributors.

package normalize

import (
	"gonum.org/v1/gonum/graph/simple"
)

// depKind labels a dependency edge.
type depKind int

const (
	// varFlow: the earlier statement writes a variable the later
	// one reads or overwrites.
	varFlow depKind = iota

	// varReverseFlow: the earlier statement reads a variable the
	// later one overwrites.
	varReverseFlow

	// orderDep: control dependence; constrains order but does not
	// propagate the keep flag.
	orderDep
)

type edgeKey struct {
	from, to int64
}

// depGraph is the statement dependency graph.  Edges always point from
// the earlier statement to the later one; kinds carries the set of
// dependency labels per edge.
type depGraph struct {
	g     *simple.DirectedGraph
	kinds map[edgeKey]map[depKind]bool
	stmts []*Statement
}

func buildGraph(stmts []*Statement) *depGraph {
	dg := &depGraph{
		g:     simple.NewDirectedGraph(),
		kinds: make(map[edgeKey]map[depKind]bool),
		stmts: stmts,
	}
	for _, s := range stmts {
		dg.g.AddNode(s)
	}

	for i, a := range stmts {
		for _, b := range stmts[i+1:] {
			if intersects(a.Writes, b.Reads) || intersects(a.Writes, b.Writes) {
				dg.addEdge(a, b, varFlow)
			}
			if intersects(a.Reads, b.Writes) {
				dg.addEdge(a, b, varReverseFlow)
			}
			if a.Control || b.Control {
				dg.addEdge(a, b, orderDep)
			}
		}
	}
	return dg
}

func (dg *depGraph) addEdge(a, b *Statement, k depKind) {
	key := edgeKey{a.id, b.id}
	if dg.kinds[key] == nil {
		dg.kinds[key] = make(map[depKind]bool)
		dg.g.SetEdge(dg.g.NewEdge(a, b))
	}
	dg.kinds[key][k] = true
}

// spreadKeep propagates the keep flag to fixpoint: keeping a statement
// keeps the earlier statements it depends on through variable flow,
// and the earlier readers of variables it overwrites.
func (dg *depGraph) spreadKeep() {
	var queue []*Statement
	for _, s := range dg.stmts {
		if s.Keep {
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		preds := dg.g.To(c.id)
		for preds.Next() {
			p := preds.Node().(*Statement)
			ks := dg.kinds[edgeKey{p.id, c.id}]
			if (ks[varFlow] || ks[varReverseFlow]) && !p.Keep {
				p.Keep = true
				queue = append(queue, p)
			}
		}
	}
}

// prune removes statements that are not kept.  Ordering among the
// surviving statements is constrained only by their direct mutual
// dependencies, which keeps the linearization independent of removed
// statements.
func (dg *depGraph) prune() {
	var kept []*Statement
	for _, s := range dg.stmts {
		if !s.Keep {
			dg.g.RemoveNode(s.id)
			continue
		}
		kept = append(kept, s)
	}
	dg.stmts = kept
}
